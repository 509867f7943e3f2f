package bucket

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Dias221467/bucket-list/internal/models"
)

// FilterType selects which items a filtered listing shows.
type FilterType string

const (
	FilterAll       FilterType = "all"
	FilterActive    FilterType = "active"
	FilterCompleted FilterType = "completed"
)

// ParseFilter maps a user-supplied name to a FilterType.
func ParseFilter(s string) (FilterType, error) {
	switch FilterType(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted, "done":
		return FilterCompleted, nil
	}
	return "", fmt.Errorf("unknown filter %q (want all, active or completed)", s)
}

// Next cycles all -> active -> completed -> all.
func (f FilterType) Next() FilterType {
	switch f {
	case FilterAll:
		return FilterActive
	case FilterActive:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Views is the presentation-ready derivation of the collection.
type Views struct {
	Active    []models.GoalItem
	Completed []models.GoalItem
	Progress  int
}

// Total is the size of the collection the views were derived from.
func (v Views) Total() int {
	return len(v.Active) + len(v.Completed)
}

// Views derives the active and completed listings and the progress
// percentage from the current collection. Nothing is cached.
func (s *Store) Views() Views {
	return DeriveViews(s.Items())
}

// Filter returns the items selected by f in display order.
func (s *Store) Filter(f FilterType) []models.GoalItem {
	v := s.Views()
	switch f {
	case FilterActive:
		return v.Active
	case FilterCompleted:
		return v.Completed
	default:
		out := make([]models.GoalItem, 0, v.Total())
		out = append(out, v.Active...)
		return append(out, v.Completed...)
	}
}

// DeriveViews partitions items into active (newest created first) and
// completed (newest completion first). Progress is rounded half away from
// zero; an empty collection has progress 0.
func DeriveViews(items []models.GoalItem) Views {
	v := Views{
		Active:    []models.GoalItem{},
		Completed: []models.GoalItem{},
	}
	for _, item := range items {
		if item.CompletedAt == nil {
			v.Active = append(v.Active, item)
		} else {
			v.Completed = append(v.Completed, item)
		}
	}

	sort.SliceStable(v.Active, func(i, j int) bool {
		return v.Active[i].CreatedAt.After(v.Active[j].CreatedAt)
	})
	sort.SliceStable(v.Completed, func(i, j int) bool {
		return v.Completed[i].CompletedAt.After(*v.Completed[j].CompletedAt)
	})

	v.Progress = Progress(len(v.Completed), len(items))
	return v
}

// Progress returns round(100*done/total), or 0 when total is 0.
func Progress(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}
