package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"finance-predictor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5, cfg.PolygonRatePerMinute)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
}

func TestLoadEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("STORE_DRIVER=memory\nHTTP_ADDR=:9000\n"), 0o600))

	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("STORE_DRIVER", "")
	os.Unsetenv("STORE_DRIVER")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	_, err := Load("")
	assert.ErrorContains(t, err, "STORE_DRIVER")
}

func TestAllowedOrigins(t *testing.T) {
	cfg := Config{CORSOrigins: "http://a.test, ,http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())
}

func TestParseSeed(t *testing.T) {
	seed, err := ParseSeed([]byte(`
categories:
  - name: Transport
    rules:
      - keyword: UBER
      - keyword: PKP
        field: counterparty
  - name: Food
    description: Groceries and restaurants
`))
	require.NoError(t, err)
	require.Len(t, seed.Categories, 2)

	ft, err := seed.Categories[0].Rules[0].FieldType()
	require.NoError(t, err)
	assert.Equal(t, models.FieldTitle, ft)

	ft, err = seed.Categories[0].Rules[1].FieldType()
	require.NoError(t, err)
	assert.Equal(t, models.FieldCounterparty, ft)
}

func TestParseSeedRejectsBlankKeyword(t *testing.T) {
	_, err := ParseSeed([]byte("categories:\n  - name: Food\n    rules:\n      - keyword: ' '\n"))
	assert.ErrorContains(t, err, "keyword is required")
}

func TestBundledSeedFileIsValid(t *testing.T) {
	seed, err := LoadSeedFromPath("../../data/seed.yaml")
	require.NoError(t, err)
	require.Len(t, seed.Categories, 5)
	assert.Equal(t, "Transportation", seed.Categories[0].Name)

	field, err := seed.Categories[0].Rules[2].FieldType()
	require.NoError(t, err)
	assert.Equal(t, models.FieldCounterparty, field)
}
