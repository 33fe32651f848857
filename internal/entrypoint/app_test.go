package entrypoint

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookoutlet/internal/config"
	"github.com/mrlokans/bookoutlet/internal/services"
)

func TestNewApp(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Database = config.Database{Type: config.DatabaseTypeSQLite, Path: filepath.Join(t.TempDir(), "app.db")}
	cfg.Export.Dir = "/tmp/exports"
	cfg.AdminLog.RetentionDays = 30

	app, err := NewApp(cfg)
	require.NoError(t, err)
	defer app.Close()

	country, err := app.Catalog.SaveCountry(nil, 0, services.CountryInput{Name: "Germany", Code: "DE"})
	require.NoError(t, err)
	assert.NotZero(t, country.ID)

	deps := app.TaskDependencies()
	assert.Equal(t, "/tmp/exports", deps.ExportDir)
	assert.Equal(t, 30, deps.AdminLogRetention)
	assert.NotNil(t, deps.Books)
	assert.NotNil(t, deps.Exporter)
	assert.NotNil(t, deps.AdminLog)

	sm, err := newSessionManager(app)
	require.NoError(t, err)
	assert.NotNil(t, sm)
}

func TestNewApp_InvalidDatabase(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Database = config.Database{Type: config.DatabaseTypePostgres}

	_, err := NewApp(cfg)
	assert.Error(t, err)
}
