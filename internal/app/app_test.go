package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/config"
)

func TestOpenMemoryStores(t *testing.T) {
	b, err := OpenStores(context.Background(), config.Config{StoreDriver: config.DriverMemory}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, b.DB)
	assert.NotNil(t, b.Stores.Fridges)
	assert.NotNil(t, b.Stores.Tokens)
	assert.NoError(t, b.Close())
}

func TestServiceConfig(t *testing.T) {
	sc := ServiceConfig(config.Config{
		JWTSecret:       "s",
		InviteTTL:       48 * time.Hour,
		InviteRetention: time.Hour,
		Location:        time.UTC,
	})
	assert.Equal(t, "s", sc.JWTSecret)
	assert.Equal(t, 48*time.Hour, sc.InviteTTL)
	assert.Equal(t, time.Hour, sc.InviteRetention)
}
