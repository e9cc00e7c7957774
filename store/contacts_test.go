package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactCreate(t *testing.T) {
	contacts := NewContactStore(newTestDB(t))

	msg, err := contacts.Create(context.Background(), "Ann", "ann@example.com", "Where is my order?")
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestContactCreateRejectsEmptyFields(t *testing.T) {
	contacts := NewContactStore(newTestDB(t))
	ctx := context.Background()

	_, err := contacts.Create(ctx, "", "ann@example.com", "hi")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = contacts.Create(ctx, "Ann", "", "hi")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = contacts.Create(ctx, "Ann", "ann@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
