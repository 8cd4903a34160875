package storeinfra

import (
	"context"
	"time"

	"github.com/DmitryDemura/taskforge/tasks"
)

// Seed inserts a handful of demo tasks so a fresh environment has something
// to list. It is a no-op when the store already holds data.
func Seed(ctx context.Context, store tasks.Store) error {
	count, err := store.Count(ctx, tasks.Filter{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	due := time.Now().AddDate(0, 0, 3)
	demo := []tasks.Task{
		{
			Title:       "Plan project structure",
			Description: strPtr("Define modules and shared conventions"),
			Status:      tasks.StatusTodo,
		},
		{
			Title:       "Implement Tasks API",
			Description: strPtr("CRUD with cache-aside reads"),
			Status:      tasks.StatusInProgress,
		},
		{
			Title:       "Wire up Frontend",
			Description: strPtr("Hook the UI up to the paginated API"),
			Status:      tasks.StatusDone,
			DueDate:     &due,
		},
	}

	for _, task := range demo {
		if _, err := store.Create(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

func strPtr(s string) *string {
	return &s
}
