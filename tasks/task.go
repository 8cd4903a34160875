package tasks

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when the requested task id has no corresponding
// entity. Lookups, updates and deletes all wrap it with the offending id.
var ErrNotFound = errors.New("task not found")

// Status is the task lifecycle state.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the three known states.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is the sole domain entity. IDs are store-assigned and immutable;
// UpdatedAt is refreshed on every mutation. Date fields serialize as
// ISO-8601 strings on the cache wire and reconstruct through json.Unmarshal.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          int64      `bun:"id,pk,autoincrement" json:"id"`
	Title       string     `bun:"title,notnull" json:"title"`
	Description *string    `bun:"description" json:"description"`
	Status      Status     `bun:"status,notnull" json:"status"`
	DueDate     *time.Time `bun:"due_date" json:"dueDate"`
	CreatedAt   time.Time  `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull" json:"updatedAt"`
}

// CreateTask is the payload for creating a task. DueDate arrives as an
// ISO-8601 string (date or timestamp); the service parses it.
type CreateTask struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Status      Status  `json:"status,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

// Validate checks the entity invariants: non-empty title up to 255 chars,
// known status (empty defaults to todo later), parseable due date.
func (c CreateTask) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&c.Status, validation.In(StatusTodo, StatusInProgress, StatusDone)),
		validation.Field(&c.DueDate, validation.By(dateStringRule)),
	)
}

// UpdateTask is a partial update payload. Nil fields leave the current value
// untouched. DueDate is tri-state: nil leaves it alone, an empty string
// clears it, anything else must parse as a date.
type UpdateTask struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

// Validate checks only the fields present in the payload.
func (u UpdateTask) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Title, validation.Length(1, 255), validation.By(presentTitleRule)),
		validation.Field(&u.Status, validation.By(statusRule)),
		validation.Field(&u.DueDate, validation.By(dateStringRule)),
	)
}

func presentTitleRule(value any) error {
	title, ok := value.(*string)
	if !ok || title == nil {
		return nil
	}
	if strings.TrimSpace(*title) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

func statusRule(value any) error {
	status, ok := value.(*Status)
	if !ok || status == nil {
		return nil
	}
	if !status.Valid() {
		return fmt.Errorf("must be one of %s, %s, %s", StatusTodo, StatusInProgress, StatusDone)
	}
	return nil
}

// dateStringRule accepts nil and the empty string: absent means "no due
// date" on create and "leave untouched slot empty" on update, where the
// empty string is the explicit clear marker.
func dateStringRule(value any) error {
	s, ok := value.(*string)
	if !ok || s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	if _, err := ParseDate(*s); err != nil {
		return err
	}
	return nil
}

// ParseDate accepts an ISO-8601 timestamp or a bare yyyy-mm-dd day.
// Bare days are anchored to the local day boundary, matching how due-date
// range filters compare.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
