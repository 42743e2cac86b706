package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weatherwatch/backend/services/weather-service/internal/models"
)

// ErrStoreUnavailable marks failures to reach or commit to the backing store.
var ErrStoreUnavailable = errors.New("record store unavailable")

// StoreError wraps a backend failure for a named operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreUnavailable, e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the backend cause to errors.Is/As.
func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

func unavailable(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// Direction orders a sort key.
type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

// SortKey is one ordering criterion.
type SortKey struct {
	Field     models.Field
	Direction Direction
}

// Filter narrows a query. Zero values match everything; the time range is [From, To).
type Filter struct {
	City string
	From time.Time
	To   time.Time
}

// FindOptions describes a find/findOne call. Limit 0 means no limit.
type FindOptions struct {
	Filter Filter
	Fields []models.Field
	Sort   []SortKey
	Skip   int
	Limit  int
}

// GroupOptions groups rows by a text field and counts them.
type GroupOptions struct {
	Filter Filter
	By     models.Field
	// CountOrder sorts groups by count; 0 keeps the store's grouping order.
	CountOrder Direction
}

// GroupCount is one aggregation row.
type GroupCount struct {
	Key   string
	Count int64
}

// WeatherLogStore is the record store contract the services depend on.
type WeatherLogStore interface {
	Insert(ctx context.Context, log *models.WeatherLog) error
	Find(ctx context.Context, opts FindOptions) ([]models.WeatherLog, error)
	FindOne(ctx context.Context, opts FindOptions) (*models.WeatherLog, error)
	Aggregate(ctx context.Context, opts GroupOptions) ([]GroupCount, error)
}

// Validate checks that options reference known fields.
func (o FindOptions) Validate() error {
	for _, f := range o.Fields {
		if !f.Valid() {
			return fmt.Errorf("repository: unknown projection field %q", f)
		}
	}
	for _, k := range o.Sort {
		if !k.Field.Valid() {
			return fmt.Errorf("repository: unknown sort field %q", k.Field)
		}
		if k.Direction != Ascending && k.Direction != Descending {
			return fmt.Errorf("repository: invalid sort direction %d", k.Direction)
		}
	}
	if o.Skip < 0 || o.Limit < 0 {
		return errors.New("repository: skip and limit must not be negative")
	}
	return nil
}

// Validate checks the grouping key.
func (o GroupOptions) Validate() error {
	switch o.By {
	case models.FieldCity, models.FieldConditionDescription:
		return nil
	}
	return fmt.Errorf("repository: cannot group by %q", o.By)
}

func (f Filter) match(log *models.WeatherLog) bool {
	if f.City != "" && log.City != f.City {
		return false
	}
	if !f.From.IsZero() && log.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !log.Timestamp.Before(f.To) {
		return false
	}
	return true
}
