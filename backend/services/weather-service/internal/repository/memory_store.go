package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"weatherwatch/backend/services/weather-service/internal/models"
)

// MemoryStore keeps weather logs in process. It backs tests and storage.driver=memory.
type MemoryStore struct {
	mu    sync.RWMutex
	logs  []models.WeatherLog
	clock clockwork.Clock
}

// NewMemoryStore returns an empty store using clock for createdAt/updatedAt.
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{clock: clock}
}

// Insert appends a copy of log and fills its store-assigned fields.
func (s *MemoryStore) Insert(ctx context.Context, log *models.WeatherLog) error {
	if err := ctx.Err(); err != nil {
		return unavailable("insert", err)
	}
	now := s.clock.Now().UTC()
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	log.CreatedAt = now
	log.UpdatedAt = now

	s.mu.Lock()
	s.logs = append(s.logs, cloneLog(*log))
	s.mu.Unlock()
	return nil
}

// Find returns matching logs, ordered and paginated. Ties keep insertion order.
func (s *MemoryStore) Find(ctx context.Context, opts FindOptions) ([]models.WeatherLog, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, unavailable("find", err)
	}

	s.mu.RLock()
	matched := make([]models.WeatherLog, 0, len(s.logs))
	for i := range s.logs {
		if opts.Filter.match(&s.logs[i]) {
			matched = append(matched, cloneLog(s.logs[i]))
		}
	}
	s.mu.RUnlock()

	if len(opts.Sort) > 0 {
		slices.SortStableFunc(matched, func(a, b models.WeatherLog) int {
			return compareLogs(&a, &b, opts.Sort)
		})
	}

	if opts.Skip >= len(matched) {
		return []models.WeatherLog{}, nil
	}
	matched = matched[opts.Skip:]
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}

	out := make([]models.WeatherLog, len(matched))
	for i := range matched {
		out[i] = matched[i].Project(opts.Fields)
	}
	return out, nil
}

// FindOne returns the first log Find would return, or nil when nothing matches.
func (s *MemoryStore) FindOne(ctx context.Context, opts FindOptions) (*models.WeatherLog, error) {
	opts.Limit = 1
	logs, err := s.Find(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}

// Aggregate counts logs per distinct value of opts.By. Groups appear in first-seen order
// before the optional count ordering, which is stable.
func (s *MemoryStore) Aggregate(ctx context.Context, opts GroupOptions) ([]GroupCount, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, unavailable("aggregate", err)
	}

	s.mu.RLock()
	index := make(map[string]int)
	groups := []GroupCount{}
	for i := range s.logs {
		log := &s.logs[i]
		if !opts.Filter.match(log) {
			continue
		}
		key, _ := log.Text(opts.By)
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, GroupCount{Key: key})
		}
		groups[pos].Count++
	}
	s.mu.RUnlock()

	if opts.CountOrder != 0 {
		slices.SortStableFunc(groups, func(a, b GroupCount) int {
			return cmp.Compare(a.Count, b.Count) * int(opts.CountOrder)
		})
	}
	return groups, nil
}

// Len returns the number of stored logs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs)
}

func compareLogs(a, b *models.WeatherLog, keys []SortKey) int {
	for _, k := range keys {
		var c int
		switch {
		case k.Field == models.FieldTimestamp:
			c = a.Timestamp.Compare(b.Timestamp)
		case k.Field == models.FieldCreatedAt:
			c = a.CreatedAt.Compare(b.CreatedAt)
		case k.Field == models.FieldUpdatedAt:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		case k.Field.Numeric():
			c = compareOptional(a, b, k.Field)
		default:
			at, _ := a.Text(k.Field)
			bt, _ := b.Text(k.Field)
			c = cmp.Compare(at, bt)
		}
		if c != 0 {
			return c * int(k.Direction)
		}
	}
	return 0
}

// compareOptional treats an absent value as larger than any present one, the way
// PostgreSQL orders NULLs by default.
func compareOptional(a, b *models.WeatherLog, f models.Field) int {
	av, aok := a.Number(f)
	bv, bok := b.Number(f)
	switch {
	case aok && bok:
		return cmp.Compare(av, bv)
	case aok:
		return -1
	case bok:
		return 1
	}
	return 0
}

func cloneLog(l models.WeatherLog) models.WeatherLog {
	l.RainProbabilityPercent = cloneFloat(l.RainProbabilityPercent)
	l.CloudinessPercent = cloneFloat(l.CloudinessPercent)
	l.RainVolume3hMM = cloneFloat(l.RainVolume3hMM)
	l.WindGustMS = cloneFloat(l.WindGustMS)
	return l
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
