package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfm-segmentation/pkg/models"
)

func TestLoad_DefaultsWithOverrides(t *testing.T) {
	cfg, err := Load("", map[string]string{"source.path": "retail.csv"})
	require.NoError(t, err)

	assert.Equal(t, "rfm", cfg.Mode)
	assert.Equal(t, "United Kingdom", cfg.Country)
	assert.True(t, cfg.AsOf.IsZero())
	assert.Equal(t, "csv", cfg.Source.Kind)
	assert.Equal(t, "retail.csv", cfg.Source.Path)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.Equal(t, 120, cfg.Output.Width)
	assert.Equal(t, 5, cfg.Cluster.K)
}

func TestLoad_EnvThenFlags(t *testing.T) {
	t.Setenv("RFM_COUNTRY", "France")
	t.Setenv("RFM_AS_OF", "2011-12-10")
	t.Setenv("RFM_SOURCE_KIND", "sql")
	t.Setenv("RFM_SOURCE_DSN", "mysql://u:p@db:3306/retail")
	t.Setenv("RFM_OUTPUT_FORMAT", "csv")

	cfg, err := Load("", map[string]string{"output.format": "json"})
	require.NoError(t, err)

	assert.Equal(t, "France", cfg.Country)
	assert.Equal(t, time.Date(2011, 12, 10, 0, 0, 0, 0, time.UTC), cfg.AsOf)
	assert.Equal(t, "sql", cfg.Source.Kind)
	assert.Equal(t, "mysql://u:p@db:3306/retail", cfg.Source.DSN)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rfm.yaml")
	content := `
mode: cluster
cluster:
  offers: offers.csv
  responses: responses.csv
  k: 3
  seed: 42
output:
  locale: fr
  limit: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "cluster", cfg.Mode)
	assert.Equal(t, 3, cfg.Cluster.K)
	assert.EqualValues(t, 42, cfg.Cluster.Seed)
	assert.Equal(t, "fr", cfg.Output.Locale)
	assert.Equal(t, 5, cfg.Output.Limit)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_InvalidAsOf(t *testing.T) {
	_, err := Load("", map[string]string{"source.path": "x.csv", "as_of": "10/12/2011"})
	assert.ErrorIs(t, err, models.ErrInvalidDate)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name      string
		overrides map[string]string
		wantErr   error
	}{
		{"csv without path", map[string]string{}, nil},
		{"unknown source", map[string]string{"source.kind": "xlsx"}, models.ErrUnknownSource},
		{"sql without dsn", map[string]string{"source.kind": "sql"}, nil},
		{"bad format", map[string]string{"source.path": "a.csv", "output.format": "xml"}, nil},
		{"bad mode", map[string]string{"mode": "kmeans"}, nil},
		{"cluster zero k", map[string]string{"mode": "cluster", "cluster.offers": "o", "cluster.responses": "r", "cluster.k": "0"}, models.ErrInvalidK},
		{"cluster without files", map[string]string{"mode": "cluster"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load("", tc.overrides)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}
