package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.20, cfg.VATRate, 1e-9)
	assert.Equal(t, 30, cfg.OfferValidityDays)
	assert.Equal(t, ';', cfg.Delimiter())
	assert.Equal(t, []string{"ALPESPACE - FRANCIN", "47 voie Saint-Exupéry", "73800 Porte-de-Savoie", "France"}, cfg.CompanyAddress)
	assert.Equal(t, 993, cfg.IMAPPort)
	assert.True(t, cfg.IMAPSecure)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VAT_RATE", "0.055")
	t.Setenv("CATALOGUE_DELIMITER", ",")
	t.Setenv("OFFER_VALIDITY_DAYS", "60")

	cfg, err := Load()
	require.NoError(t, err)
	assert.InDelta(t, 0.055, cfg.VATRate, 1e-9)
	assert.Equal(t, ',', cfg.Delimiter())
	assert.Equal(t, 60, cfg.OfferValidityDays)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deviseur.yaml"), []byte("COMPANY_NAME: Atelier Test\nHTTP_ADDR: 127.0.0.1:9999\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Atelier Test", cfg.CompanyName)
	assert.Equal(t, "127.0.0.1:9999", cfg.HTTPAddr)
}

func TestRequire(t *testing.T) {
	var cfg Config
	assert.Error(t, cfg.Require("IMAP_HOST", " "))
	assert.NoError(t, cfg.Require("IMAP_HOST", "imap.example.test"))
}
