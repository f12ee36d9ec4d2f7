package redis

import (
	"context"
	"testing"

	"planetinfo-server/internal/shared/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_FromURL(t *testing.T) {
	opts, err := options(config.RedisConfig{URL: "redis://:secret@cache:6380/3", Host: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = options(config.RedisConfig{URL: "http://cache"})
	assert.Error(t, err)
}

func TestOptions_FromHost(t *testing.T) {
	opts, err := options(config.RedisConfig{Host: "localhost", Port: "6379", DB: 2})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
}

func TestConnect_Disabled(t *testing.T) {
	prev := config.GlobalConfig
	t.Cleanup(func() { config.GlobalConfig = prev })
	config.GlobalConfig = &config.Config{}

	client, err := Connect(context.Background())
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.NoError(t, client.Close())
}
