package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StorageDriverPostgres, cfg.App.StorageDriver)
	assert.Equal(t, "atomic", cfg.Inventory.StockGuard)
	assert.Equal(t, "best_effort", cfg.Inventory.LedgerMode)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.True(t, cfg.DB.AutoMigrate)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "memory")
	v.Set("INVENTORY_STOCK_GUARD", "unguarded")
	v.Set("INVENTORY_LEDGER_MODE", "transactional")
	v.Set("HTTP_PORT", "9090")
	v.Set("DB_PORT", "no-es-numero")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.App.StorageDriver)
	assert.Equal(t, "unguarded", cfg.Inventory.StockGuard)
	assert.Equal(t, "transactional", cfg.Inventory.LedgerMode)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 5432, cfg.DB.Port, "un puerto inválido cae al valor por defecto")
}

func TestFromViper_RechazaValoresInvalidos(t *testing.T) {
	cases := map[string]string{
		"STORAGE_DRIVER":        "mongo",
		"INVENTORY_STOCK_GUARD": "optimistic",
		"INVENTORY_LEDGER_MODE": "async",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			v := viper.New()
			v.Set(key, value)
			_, err := fromViper(v)
			assert.Error(t, err)
		})
	}
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "pos", Password: "p@ss:word", DBName: "pos", SSLMode: "disable"}
	assert.Equal(t, "postgres://pos:p%40ss%3Aword@db:5432/pos?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://other"
	assert.Equal(t, "postgres://other", c.ConnectionString())
}
