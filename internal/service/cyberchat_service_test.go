package service

import (
	"context"
	"testing"

	"iwala99_backend/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveProviderDefaultsToGateway(t *testing.T) {
	svc := &CyberChatService{Cfg: &config.AIConfig{
		Gateway:  config.AIProviderConfig{BaseURL: "https://gw.example.com/v1", Model: "gpt-4o-mini"},
		Blackbox: config.AIProviderConfig{BaseURL: "https://bb.example.com/v1", Model: "blackboxai"},
	}}

	name, cfg := svc.resolveProvider("")
	assert.Equal(t, ProviderGateway, name)
	assert.Equal(t, "https://gw.example.com/v1", cfg.BaseURL)

	name, _ = svc.resolveProvider("something-else")
	assert.Equal(t, ProviderGateway, name)

	name, cfg = svc.resolveProvider(ProviderBlackbox)
	assert.Equal(t, ProviderBlackbox, name)
	assert.Equal(t, "https://bb.example.com/v1", cfg.BaseURL)
}

func TestAllowSlidingWindowCapsRequests(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	svc := NewCyberChatService(&config.AIConfig{ChatRequestsPerMinute: 3}, rdb)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := svc.Allow(ctx, 42)
		require.NoError(t, err)
		assert.True(t, ok, "request %d should pass", i+1)
	}

	ok, err := svc.Allow(ctx, 42)
	require.NoError(t, err)
	assert.False(t, ok, "request over the window limit should be denied")

	// Windows are per user.
	ok, err = svc.Allow(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResolveProviderUnconfiguredBlackboxFallsBack(t *testing.T) {
	svc := &CyberChatService{Cfg: &config.AIConfig{
		Gateway: config.AIProviderConfig{BaseURL: "https://gw.example.com/v1"},
	}}

	name, cfg := svc.resolveProvider(ProviderBlackbox)
	assert.Equal(t, ProviderGateway, name)
	assert.Equal(t, "https://gw.example.com/v1", cfg.BaseURL)
}
