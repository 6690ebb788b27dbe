package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Configuration
		wantErr bool
		check   func(t *testing.T, c Configuration)
	}{
		{
			name:    "mongo without uri",
			cfg:     Configuration{StorageDriver: "mongo"},
			wantErr: true,
		},
		{
			name:    "unknown driver",
			cfg:     Configuration{StorageDriver: "redis"},
			wantErr: true,
		},
		{
			name: "memory driver normalised and defaults applied",
			cfg:  Configuration{StorageDriver: " Memory ", MaxPageSize: 5},
			check: func(t *testing.T, c Configuration) {
				assert.Equal(t, "memory", c.StorageDriver)
				assert.Equal(t, 10, c.DefaultPageSize)
				assert.Equal(t, 10, c.MaxPageSize)
				assert.Equal(t, 5000, c.UploadBatchSize)
			},
		},
		{
			name: "mongo with uri",
			cfg:  Configuration{StorageDriver: "mongo", MongoDB_ConnectionURI: "mongodb://localhost", DefaultPageSize: 20, MaxPageSize: 100, UploadBatchSize: 50},
			check: func(t *testing.T, c Configuration) {
				assert.Equal(t, 20, c.DefaultPageSize)
				assert.Equal(t, 100, c.MaxPageSize)
				assert.Equal(t, 50, c.UploadBatchSize)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestNewConfig_FromEnv(t *testing.T) {
	t.Setenv("GO_ENV", "config-test-missing")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SALES_NUMERIC_FIELDS", "storeId,Customer ID")
	t.Setenv("FACET_CACHE_TTL_SECONDS", "30")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, "8080", cfg.Address)
	assert.Equal(t, "sales", cfg.MongoDB_ColName_Sales)
	assert.Equal(t, []string{"storeId", "Customer ID"}, cfg.NumericFields)
	assert.Equal(t, 30, cfg.FacetCacheTTL)
	assert.Equal(t, "UTC", cfg.DateTimezone)
}
