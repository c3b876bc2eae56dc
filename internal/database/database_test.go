package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/daytrade-predictor/internal/config"
)

func TestConnString(t *testing.T) {
	got := ConnString(&config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "trader",
		Password: "pw",
		Name:     "daytrade",
		SSLMode:  "require",
	})
	assert.Equal(t, "host=db.internal port=5433 user=trader password=pw dbname=daytrade sslmode=require", got)
}

func TestSchemaIsIdempotent(t *testing.T) {
	db := SetupTestDB(t)
	require.NoError(t, EnsureSchema(context.Background(), db))
	require.NoError(t, db.HealthCheck(context.Background()))
}
