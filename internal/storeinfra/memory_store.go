package storeinfra

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DmitryDemura/taskforge/tasks"
)

// MemoryStore keeps all tasks in process memory with a monotonic id counter.
// It backs tests and cache-less dev setups; nothing survives a restart. The
// store is an explicit injected object, constructed at process start and
// torn down with Close, so tests get isolation from fresh instances.
type MemoryStore struct {
	mu     sync.RWMutex
	tasks  map[int64]tasks.Task
	nextID int64
}

// NewMemoryStore returns an empty store with ids starting at 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:  make(map[int64]tasks.Task),
		nextID: 1,
	}
}

// Create assigns the next id and both timestamps.
func (m *MemoryStore) Create(ctx context.Context, task tasks.Task) (tasks.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	task.ID = m.nextID
	m.nextID++
	task.CreatedAt = now
	task.UpdatedAt = now
	m.tasks[task.ID] = task
	return task, nil
}

// FindMany returns the filtered, sorted window.
func (m *MemoryStore) FindMany(ctx context.Context, filter tasks.Filter, skip, take int, order tasks.Order) ([]tasks.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []tasks.Task
	for _, task := range m.tasks {
		if matches(task, filter) {
			matched = append(matched, task)
		}
	}
	sortTasks(matched, order)

	if skip >= len(matched) {
		return nil, nil
	}
	matched = matched[skip:]
	if take < len(matched) {
		matched = matched[:take]
	}
	return matched, nil
}

// Count returns how many tasks match the filter.
func (m *MemoryStore) Count(ctx context.Context, filter tasks.Filter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, task := range m.tasks {
		if matches(task, filter) {
			count++
		}
	}
	return count, nil
}

// FindByID returns the task or a wrapped tasks.ErrNotFound.
func (m *MemoryStore) FindByID(ctx context.Context, id int64) (tasks.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	task, ok := m.tasks[id]
	if !ok {
		return tasks.Task{}, notFound(id)
	}
	return task, nil
}

// Update merges the patch into the stored row and refreshes UpdatedAt.
func (m *MemoryStore) Update(ctx context.Context, id int64, patch tasks.UpdatePatch) (tasks.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return tasks.Task{}, notFound(id)
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.ClearDueDate {
		task.DueDate = nil
	} else if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}

	task.UpdatedAt = time.Now()
	if !task.UpdatedAt.After(m.tasks[id].UpdatedAt) {
		// Clock granularity can be coarser than two back-to-back updates.
		task.UpdatedAt = m.tasks[id].UpdatedAt.Add(time.Nanosecond)
	}
	m.tasks[id] = task
	return task, nil
}

// Delete removes the row or reports a wrapped tasks.ErrNotFound.
func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return notFound(id)
	}
	delete(m.tasks, id)
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

func notFound(id int64) error {
	return fmt.Errorf("task %d: %w", id, tasks.ErrNotFound)
}

func matches(task tasks.Task, filter tasks.Filter) bool {
	if filter.Status != "" && task.Status != filter.Status {
		return false
	}
	if filter.DueFrom != nil || filter.DueTo != nil {
		if task.DueDate == nil {
			return false
		}
		if filter.DueFrom != nil && task.DueDate.Before(*filter.DueFrom) {
			return false
		}
		if filter.DueTo != nil && !task.DueDate.Before(*filter.DueTo) {
			return false
		}
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		title := strings.ToLower(task.Title)
		var description string
		if task.Description != nil {
			description = strings.ToLower(*task.Description)
		}
		if !strings.Contains(title, needle) && !strings.Contains(description, needle) {
			return false
		}
	} else if filter.Title != "" {
		if !strings.Contains(strings.ToLower(task.Title), strings.ToLower(filter.Title)) {
			return false
		}
	}
	return true
}

// sortTasks orders in place by the resolved sort, ids breaking ties. Nil due
// dates sort like SQL NULLs under sqlite: first ascending, last descending.
func sortTasks(items []tasks.Task, order tasks.Order) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if order.Desc {
			a, b = b, a
		}

		switch order.Field {
		case "id":
			return a.ID < b.ID
		case "title":
			if a.Title != b.Title {
				return a.Title < b.Title
			}
		case "status":
			if a.Status != b.Status {
				return a.Status < b.Status
			}
		case "createdAt":
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case "updatedAt":
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}
		default: // dueDate
			switch {
			case a.DueDate == nil && b.DueDate == nil:
			case a.DueDate == nil:
				return true
			case b.DueDate == nil:
				return false
			case !a.DueDate.Equal(*b.DueDate):
				return a.DueDate.Before(*b.DueDate)
			}
		}
		return a.ID < b.ID
	})
}
