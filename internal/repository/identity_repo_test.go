package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rvworks/servicedesk/internal/config"
	"github.com/rvworks/servicedesk/internal/db"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{}
	cfg.DB.DSN = filepath.Join(t.TempDir(), "servicedesk.db")
	cfg.DB.MaxOpenConns = 1
	cfg.DB.MaxIdleConns = 1
	cfg.DB.ConnMaxLifetime = time.Minute

	database, err := db.New(cfg, zerolog.Nop())
	require.NoError(t, err)
	return database
}

func TestIdentityStoreCreateAndLookup(t *testing.T) {
	store := NewIdentityStore(newTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, "amy@example.com", "hash-a")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	stored, err := store.GetByEmail(ctx, "amy@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, stored.ID)
	assert.Equal(t, "hash-a", stored.PasswordHash)

	_, err = store.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestIdentityStoreDuplicateEmail(t *testing.T) {
	store := NewIdentityStore(newTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, "amy@example.com", "hash-a")
	require.NoError(t, err)

	_, err = store.Create(ctx, "amy@example.com", "hash-b")
	require.ErrorIs(t, err, ErrDuplicate)

	stored, err := store.GetByEmail(ctx, "amy@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, stored.ID)
	assert.Equal(t, "hash-a", stored.PasswordHash)
}
