package storeinfra

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"

	"github.com/DmitryDemura/taskforge/tasks"
)

// sortColumns maps allow-listed wire sort fields to their columns. Unknown
// fields never reach the store (the query layer already normalized them),
// but the lookup still falls back to due_date defensively against drift.
var sortColumns = map[string]string{
	"id":        "id",
	"title":     "title",
	"status":    "status",
	"dueDate":   "due_date",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// BunStore persists tasks through bun. The service layer owns caching; this
// type only translates Filter/Order into SQL.
type BunStore struct {
	db *bun.DB
}

// NewBunStore wraps an existing bun handle.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// OpenSQLite opens a sqlite-backed store. In-memory DSNs are pinned to a
// single connection so every query sees the same database.
func OpenSQLite(dsn string) (*BunStore, error) {
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if strings.Contains(dsn, ":memory:") {
		sqldb.SetMaxOpenConns(1)
	}
	return NewBunStore(bun.NewDB(sqldb, sqlitedialect.New())), nil
}

// DB exposes the underlying handle for schema management.
func (s *BunStore) DB() *bun.DB {
	return s.db
}

// ResetModel drops and recreates the tasks table. Dev and test setups only.
func (s *BunStore) ResetModel(ctx context.Context) error {
	return s.db.ResetModel(ctx, (*tasks.Task)(nil))
}

// EnsureSchema creates the tasks table when it does not exist yet, leaving
// existing data alone.
func (s *BunStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*tasks.Task)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// Create inserts the task and reads back its assigned id.
func (s *BunStore) Create(ctx context.Context, task tasks.Task) (tasks.Task, error) {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if _, err := s.db.NewInsert().Model(&task).Exec(ctx); err != nil {
		return tasks.Task{}, err
	}
	return task, nil
}

// FindMany runs the filtered, sorted, windowed select.
func (s *BunStore) FindMany(ctx context.Context, filter tasks.Filter, skip, take int, order tasks.Order) ([]tasks.Task, error) {
	var items []tasks.Task

	q := applyFilter(s.db.NewSelect().Model(&items), filter)

	column, ok := sortColumns[order.Field]
	if !ok {
		column = "due_date"
	}
	direction := "ASC"
	if order.Desc {
		direction = "DESC"
	}
	q = q.OrderExpr("? ?", bun.Ident(column), bun.Safe(direction)).OrderExpr("id ASC")

	if err := q.Offset(skip).Limit(take).Scan(ctx); err != nil {
		return nil, err
	}
	return items, nil
}

// Count returns the unpaginated match count.
func (s *BunStore) Count(ctx context.Context, filter tasks.Filter) (int, error) {
	return applyFilter(s.db.NewSelect().Model((*tasks.Task)(nil)), filter).Count(ctx)
}

// FindByID returns the task or a wrapped tasks.ErrNotFound.
func (s *BunStore) FindByID(ctx context.Context, id int64) (tasks.Task, error) {
	var task tasks.Task
	err := s.db.NewSelect().Model(&task).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return tasks.Task{}, notFound(id)
	}
	if err != nil {
		return tasks.Task{}, err
	}
	return task, nil
}

// Update applies only the patched columns and refreshes updated_at.
func (s *BunStore) Update(ctx context.Context, id int64, patch tasks.UpdatePatch) (tasks.Task, error) {
	q := s.db.NewUpdate().
		Model((*tasks.Task)(nil)).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id)

	if patch.Title != nil {
		q = q.Set("title = ?", *patch.Title)
	}
	if patch.Description != nil {
		q = q.Set("description = ?", *patch.Description)
	}
	if patch.Status != nil {
		q = q.Set("status = ?", string(*patch.Status))
	}
	if patch.ClearDueDate {
		q = q.Set("due_date = NULL")
	} else if patch.DueDate != nil {
		q = q.Set("due_date = ?", *patch.DueDate)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return tasks.Task{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return tasks.Task{}, err
	}
	if affected == 0 {
		return tasks.Task{}, notFound(id)
	}

	return s.FindByID(ctx, id)
}

// Delete removes the row or reports a wrapped tasks.ErrNotFound.
func (s *BunStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().
		Model((*tasks.Task)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound(id)
	}
	return nil
}

// Close releases the database handle.
func (s *BunStore) Close() error {
	return s.db.Close()
}

func applyFilter(q *bun.SelectQuery, filter tasks.Filter) *bun.SelectQuery {
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.DueFrom != nil {
		q = q.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		q = q.Where("due_date < ?", *filter.DueTo)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?)", pattern, pattern)
	} else if filter.Title != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(filter.Title)+"%")
	}
	return q
}
