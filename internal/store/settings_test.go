package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsMerge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSettings(ctx, Settings{"facility_name": "Hikari Care Home"}))
	require.NoError(t, s.SaveSettings(ctx, Settings{"billing_contact": "office"}))

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, Settings{
		"facility_name":   "Hikari Care Home",
		"billing_contact": "office",
	}, settings)

	// Saving a key again overwrites only that key.
	require.NoError(t, s.SaveSettings(ctx, Settings{"facility_name": "Hikari Annex"}))
	settings, err = s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hikari Annex", settings["facility_name"])
	assert.Equal(t, "office", settings["billing_contact"])
}

func TestGetSettingUnsetKey(t *testing.T) {
	s := newTestStore(t)

	value, err := s.GetSetting(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestSaveSettingsEmptyMapIsNoOp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSettings(ctx, nil))

	page, err := s.QueryAuditLog(ctx, AuditFilter{Action: ActionSettingsUpdate})
	require.NoError(t, err)
	assert.Empty(t, page.Logs)
}

func TestSaveSettingsAuditsKeysNotValues(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSettings(ctx, Settings{SettingAdminPassword: "topsecret"}))

	page, err := s.QueryAuditLog(ctx, AuditFilter{Action: ActionSettingsUpdate})
	require.NoError(t, err)
	require.Len(t, page.Logs, 1)
	assert.Contains(t, page.Logs[0].Details, SettingAdminPassword)
	assert.NotContains(t, page.Logs[0].Details, "topsecret")
}
