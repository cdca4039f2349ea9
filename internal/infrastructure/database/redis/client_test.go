package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"

	"github.com/ashishbaghudana/relna/internal/infrastructure/monitoring/logging"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, "relna:", cfg.KeyPrefix)
	assert.Equal(t, 24*time.Hour, cfg.DefaultTTL)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{Addr: "redis.internal:6380", KeyPrefix: "x:", DefaultTTL: time.Minute}
	applyDefaults(cfg)

	assert.Equal(t, "redis.internal:6380", cfg.Addr)
	assert.Equal(t, "x:", cfg.KeyPrefix)
	assert.Equal(t, time.Minute, cfg.DefaultTTL)
}

func TestPingAfterCloseReturnsClientClosed(t *testing.T) {
	db, _ := redismock.NewClientMock()
	c := &Client{rdb: db, config: &Config{}, logger: logging.NewNopLogger()}

	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.Ping(context.Background()), ErrClientClosed)
}
