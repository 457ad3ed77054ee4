package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDueDate(t *testing.T) {
	assert.Nil(t, parseDueDate(""))
	assert.Nil(t, parseDueDate("next tuesday"))

	got := parseDueDate("2026-09-01T14:30")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC), got.UTC())

	got = parseDueDate("2026-09-01T14:30:00Z")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC), got.UTC())
}

func TestTodoCreateListDelete(t *testing.T) {
	ctx, f := newFixture(t)
	svc := &TodoService{Todos: f.todos}

	later, err := svc.CreateTodo(ctx, "alice", "water plants", "", "OPEN", "2026-09-02T09:00")
	require.NoError(t, err)
	sooner, err := svc.CreateTodo(ctx, "alice", "pay rent", "transfer before noon", "OPEN", "2026-09-01T09:00")
	require.NoError(t, err)
	_, err = svc.CreateTodo(ctx, "bob", "unrelated", "", "OPEN", "")
	require.NoError(t, err)

	todos, err := svc.ListByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, todos, 2)
	// listed in due date order
	assert.Equal(t, sooner.ID, todos[0].ID)
	assert.Equal(t, later.ID, todos[1].ID)

	require.NoError(t, svc.DeleteTodo(ctx, sooner.ID))
	todos, err = svc.ListByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, later.ID, todos[0].ID)
}

func TestTodoCreateWithoutDueDate(t *testing.T) {
	ctx, f := newFixture(t)
	svc := &TodoService{Todos: f.todos}

	todo, err := svc.CreateTodo(ctx, "alice", "someday", "no deadline", "OPEN", "")
	require.NoError(t, err)
	assert.Nil(t, todo.DueDate)
}
