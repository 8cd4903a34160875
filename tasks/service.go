package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/DmitryDemura/taskforge/cache"
)

// DeletedMessage is the confirmation returned by Remove.
const DeletedMessage = "Task deleted successfully"

// Result is the paginated envelope for list queries. It is also the cache
// wire format for tasks:* entries: JSON with ISO-8601 dates, which
// json.Unmarshal reconstructs into time.Time values on read.
type Result struct {
	Tasks      []Task `json:"tasks"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}

// Service orchestrates task queries and mutations: reads go cache-first and
// fall through to the store, mutations write the store and then invalidate
// the affected entity key plus every list key. Consistency is cache-aside
// with bounded staleness; nothing here is transactional across the store and
// the cache.
type Service struct {
	store     Store
	cache     cache.Store
	log       *zap.Logger
	listTTL   time.Duration
	entityTTL time.Duration
	sf        singleflight.Group
}

// NewService wires the orchestrator with the default TTLs (300s lists,
// 600s entities).
func NewService(store Store, kv cache.Store, log *zap.Logger) *Service {
	return NewServiceTTL(store, kv, log, cache.DefaultListTTL, cache.DefaultEntityTTL)
}

// NewServiceTTL wires the orchestrator with explicit TTLs for the two key
// families.
func NewServiceTTL(store Store, kv cache.Store, log *zap.Logger, listTTL, entityTTL time.Duration) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:     store,
		cache:     kv,
		log:       log,
		listTTL:   listTTL,
		entityTTL: entityTTL,
	}
}

// FindAll resolves a list query cache-first. The cache key covers the whole
// query, pagination included, so distinct pages are distinct entries.
// Concurrent identical misses are collapsed through singleflight.
func (s *Service) FindAll(ctx context.Context, query ListQuery) (Result, error) {
	page := query.Pagination()

	key, err := cache.ListKey(query)
	if err != nil {
		// Cannot derive a stable key; serve the query uncached.
		s.log.Warn("list cache key derivation failed", zap.Error(err))
		return s.queryList(ctx, query, page)
	}

	if payload, ok := s.cacheGet(ctx, key); ok {
		var result Result
		if err := json.Unmarshal([]byte(payload), &result); err == nil {
			return result, nil
		}
		s.log.Warn("dropping corrupt cached list entry", zap.String("key", key), zap.Error(err))
	}

	value, err, _ := s.sf.Do(key, func() (any, error) {
		result, err := s.queryList(ctx, query, page)
		if err != nil {
			return nil, err
		}
		s.cacheSet(ctx, key, result, s.listTTL)
		return result, nil
	})
	if err != nil {
		return Result{}, err
	}
	return value.(Result), nil
}

// FindOne resolves a single task cache-first under task:<id>.
func (s *Service) FindOne(ctx context.Context, id int64) (Task, error) {
	if id < 1 {
		return Task{}, fmt.Errorf("invalid task id %d: %w", id, ErrNotFound)
	}

	key := cache.EntityKey(id)
	if payload, ok := s.cacheGet(ctx, key); ok {
		var task Task
		if err := json.Unmarshal([]byte(payload), &task); err == nil {
			return task, nil
		} else {
			s.log.Warn("dropping corrupt cached task entry", zap.String("key", key), zap.Error(err))
		}
	}

	task, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Task{}, err
	}

	s.cacheSet(ctx, key, task, s.entityTTL)
	return task, nil
}

// Create validates and persists a new task, then invalidates every cached
// list. No entity key can exist for a fresh id, so none is touched.
func (s *Service) Create(ctx context.Context, input CreateTask) (Task, error) {
	if err := input.Validate(); err != nil {
		return Task{}, err
	}

	status := input.Status
	if status == "" {
		status = StatusTodo
	}

	due, _, err := resolveDueDate(input.DueDate)
	if err != nil {
		return Task{}, err
	}

	task, err := s.store.Create(ctx, Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		DueDate:     due,
	})
	if err != nil {
		return Task{}, err
	}

	s.invalidateLists(ctx)
	return task, nil
}

// Update applies a partial patch: omitted fields keep their values, an
// explicit empty due date clears it. On success the entity key and all list
// keys are invalidated.
func (s *Service) Update(ctx context.Context, id int64, input UpdateTask) (Task, error) {
	if id < 1 {
		return Task{}, fmt.Errorf("invalid task id %d: %w", id, ErrNotFound)
	}
	if err := input.Validate(); err != nil {
		return Task{}, err
	}

	patch := UpdatePatch{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
	}
	if input.DueDate != nil {
		due, clear, err := resolveDueDate(input.DueDate)
		if err != nil {
			return Task{}, err
		}
		patch.DueDate = due
		patch.ClearDueDate = clear
	}

	task, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return Task{}, err
	}

	s.cacheDelete(ctx, cache.EntityKey(id))
	s.invalidateLists(ctx)
	return task, nil
}

// Remove deletes the task, invalidates its entity key and all list keys,
// and returns a confirmation message.
func (s *Service) Remove(ctx context.Context, id int64) (string, error) {
	if id < 1 {
		return "", fmt.Errorf("invalid task id %d: %w", id, ErrNotFound)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return "", err
	}

	s.cacheDelete(ctx, cache.EntityKey(id))
	s.invalidateLists(ctx)
	return DeletedMessage, nil
}

// queryList runs the filtered query and the unpaginated count concurrently,
// then assembles the envelope.
func (s *Service) queryList(ctx context.Context, query ListQuery, page Pagination) (Result, error) {
	filter := query.Filter()
	order := query.Order()

	var (
		items []Task
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.store.FindMany(gctx, filter, page.Skip, page.Take, order)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	if items == nil {
		items = []Task{}
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + page.Limit - 1) / page.Limit
	}

	return Result{
		Tasks:      items,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: totalPages,
	}, nil
}

// invalidateLists sweeps every tasks:* key. Coarse by design: list
// membership depends on arbitrary filter predicates that cannot be cheaply
// diffed, so all list snapshots go at once.
func (s *Service) invalidateLists(ctx context.Context) {
	keys, err := s.cache.ScanKeys(ctx, cache.ListKeyPattern)
	if err != nil {
		s.log.Debug("list cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if _, err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Debug("list cache invalidation failed", zap.Error(err))
	}
}

// cacheGet reads through the cache; any failure degrades to a miss and is
// never surfaced to the caller.
func (s *Service) cacheGet(ctx context.Context, key string) (string, bool) {
	value, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Debug("cache read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return value, ok
}

// cacheSet populates the cache; failures are logged and swallowed.
func (s *Service) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		s.log.Warn("cache payload marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.SetTTL(ctx, key, string(payload), ttl); err != nil {
		s.log.Debug("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) cacheDelete(ctx context.Context, key string) {
	if _, err := s.cache.Delete(ctx, key); err != nil {
		s.log.Debug("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

// resolveDueDate maps a due-date payload string to its patch meaning:
// blank clears, anything else must parse.
func resolveDueDate(s *string) (*time.Time, bool, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, s != nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, false, err
	}
	return &t, false, nil
}
