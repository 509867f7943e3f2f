package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrMalformedDocument is returned when a payload is not a JSON array.
	ErrMalformedDocument = errors.New("document is not a JSON array")
	// ErrInvalidDocument is returned by ParseDocumentStrict when any element is invalid.
	ErrInvalidDocument = errors.New("document contains invalid items")
)

// GoalItem is a single bucket-list entry.
type GoalItem struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// Completed reports whether the item carries a completion time.
func (g GoalItem) Completed() bool {
	return g.CompletedAt != nil
}

// Validate checks the fields every stored item must carry.
func (g GoalItem) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("item id is required")
	}
	if strings.TrimSpace(g.Text) == "" {
		return fmt.Errorf("item %s: text is required", g.ID)
	}
	if g.CreatedAt.IsZero() {
		return fmt.Errorf("item %s: createdAt is required", g.ID)
	}
	if g.CompletedAt != nil && g.CompletedAt.IsZero() {
		return fmt.Errorf("item %s: completedAt must be null or a timestamp", g.ID)
	}
	return nil
}

// EncodeDocument serializes the whole collection. A nil slice encodes as [].
func EncodeDocument(items []GoalItem) ([]byte, error) {
	if items == nil {
		items = []GoalItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses a stored document leniently: a payload that is not
// an array fails with ErrMalformedDocument, while individual elements that
// fail validation or repeat an id are dropped and counted.
func DecodeDocument(data []byte) ([]GoalItem, int, error) {
	raw, err := splitArray(data)
	if err != nil {
		return nil, 0, err
	}

	items := make([]GoalItem, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	dropped := 0
	for _, elem := range raw {
		var item GoalItem
		if err := json.Unmarshal(elem, &item); err != nil {
			dropped++
			continue
		}
		if err := item.Validate(); err != nil {
			dropped++
			continue
		}
		if _, dup := seen[item.ID]; dup {
			dropped++
			continue
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	return items, dropped, nil
}

// ParseDocumentStrict parses a document and rejects it as a whole when any
// element is invalid.
func ParseDocumentStrict(data []byte) ([]GoalItem, error) {
	raw, err := splitArray(data)
	if err != nil {
		return nil, err
	}

	items := make([]GoalItem, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for i, elem := range raw {
		var item GoalItem
		if err := json.Unmarshal(elem, &item); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrInvalidDocument, i, err)
		}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrInvalidDocument, i, err)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidDocument, item.ID)
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	return items, nil
}

func splitArray(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrMalformedDocument
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return raw, nil
}
