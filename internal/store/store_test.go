package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oomslab/ooms-core/internal/common/config"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Type:   "sqlite",
		DBName: filepath.Join(t.TempDir(), "ooms.db"),
	}
	s, err := New(zap.NewNop(), cfg, opts...)
	require.NoError(t, err)
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func addTestStaff(t *testing.T, s *Store, name string) *User {
	t.Helper()
	user, err := s.AddStaff(context.Background(), name, nil)
	require.NoError(t, err)
	return user
}

func TestNewRejectsUnknownDatabaseType(t *testing.T) {
	_, err := New(zap.NewNop(), &config.DatabaseConfig{Type: "oracle"})
	assert.Error(t, err)
}

func TestInitIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Init(context.Background()))

	items, err := s.ListItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestWeekEnd(t *testing.T) {
	end, err := weekEnd("2026-08-24")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30", end)

	_, err = weekEnd("24/08/2026")
	assert.Error(t, err)
}

func TestMonthRange(t *testing.T) {
	start, end := monthRange(2026, 2)
	assert.Equal(t, "2026-02-01", start)
	assert.Equal(t, "2026-02-28", end)

	start, end = monthRange(2024, 2)
	assert.Equal(t, "2024-02-01", start)
	assert.Equal(t, "2024-02-29", end)

	start, end, err := monthRangeFromKey("2026-12")
	require.NoError(t, err)
	assert.Equal(t, "2026-12-01", start)
	assert.Equal(t, "2026-12-31", end)

	_, _, err = monthRangeFromKey("december")
	assert.Error(t, err)
}
