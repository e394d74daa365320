//go:build !integration

package redis

import (
	"context"
	"testing"
	"time"

	"storeOptimizer/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	opts := Options(config.RedisConfig{
		RedisHost:     "cache.internal",
		RedisPort:     "6380",
		RedisPassword: "pw",
		RedisDB:       3,
	})

	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 3, opts.DB)
	assert.Less(t, opts.ReadTimeout, time.Second)
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	// port 1 on loopback refuses immediately
	client, err := Connect(ctx, config.RedisConfig{RedisHost: "127.0.0.1", RedisPort: "1"})
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
