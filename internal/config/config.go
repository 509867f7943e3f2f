package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	BackendMongo = "mongo"
	BackendFile  = "file"

	DefaultDocumentKey = "bucket-list.json"
)

// Config holds the document endpoint settings.
type Config struct {
	Port            string
	StorageBackend  string
	MongoURI        string
	MongoDatabase   string
	DataDir         string
	DocumentKey     string
	BackupSchedule  string
	BackupRetention int
	LogLevel        string
}

// ClientConfig holds the settings of the bucket client.
type ClientConfig struct {
	APIURL   string
	Timeout  time.Duration
	LogLevel string
	LogFile  string
}

// LoadConfig reads the .env file (when present) and the environment.
func LoadConfig() *Config {
	loadDotEnv()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		StorageBackend:  strings.ToLower(getEnv("STORAGE_BACKEND", BackendMongo)),
		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "bucket_list"),
		DataDir:         getEnv("DATA_DIR", "./data"),
		DocumentKey:     getEnv("DOCUMENT_KEY", DefaultDocumentKey),
		BackupSchedule:  os.Getenv("BACKUP_SCHEDULE"),
		BackupRetention: getEnvInt("BACKUP_RETENTION", 7),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// LoadClientConfig reads the client settings the same way LoadConfig does.
func LoadClientConfig() *ClientConfig {
	loadDotEnv()

	return &ClientConfig{
		APIURL:   getEnv("BUCKET_API_URL", "http://localhost:8080/api/bucket"),
		Timeout:  getEnvDuration("BUCKET_TIMEOUT", 15*time.Second),
		LogLevel: getEnv("LOG_LEVEL", "warn"),
		LogFile:  os.Getenv("BUCKET_LOG_FILE"),
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMongo, BackendFile:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want %s or %s)", c.StorageBackend, BackendMongo, BackendFile)
	}
	if c.BackupRetention < 0 {
		return fmt.Errorf("BACKUP_RETENTION must not be negative, got %d", c.BackupRetention)
	}
	return nil
}

// StorageCredentialMissing reports whether the selected backend lacks the
// credential it needs to reach storage.
func (c *Config) StorageCredentialMissing() bool {
	return c.StorageBackend == BackendMongo && strings.TrimSpace(c.MongoURI) == ""
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("Failed to load .env file")
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithField("key", key).Warn("Invalid integer in environment, using default")
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		logrus.WithField("key", key).Warn("Invalid duration in environment, using default")
		return fallback
	}
	return d
}
