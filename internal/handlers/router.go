package handlers

import (
	"net/http"

	"github.com/Dias221467/bucket-list/internal/services"
	"github.com/Dias221467/bucket-list/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// NewRouter wires the document routes, health and metrics endpoints behind
// request logging and a permissive CORS policy.
func NewRouter(service *services.DocumentService) http.Handler {
	bucketHandler := NewBucketHandler(service)

	router := mux.NewRouter()
	router.MethodNotAllowedHandler = http.HandlerFunc(MethodNotAllowedHandler)

	router.HandleFunc("/api/bucket", bucketHandler.GetDocumentHandler).Methods("GET")
	router.HandleFunc("/api/bucket", bucketHandler.ReplaceDocumentHandler).Methods("POST")
	router.HandleFunc("/api/bucket", bucketHandler.OptionsHandler).Methods("OPTIONS")

	router.HandleFunc("/healthz", HealthHandler).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:       []string{"Content-Type"},
		OptionsSuccessStatus: http.StatusOK,
	})

	// Wrapping the whole router also logs and counts 404 and 405 answers.
	return c.Handler(middleware.LoggingMiddleware(router))
}
