package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/creasty/defaults"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haierkeys/note-feed-service/internal/dao"
	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/internal/service"
	"github.com/haierkeys/note-feed-service/pkg/timeline"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig_DefaultsAndExplicitZeros(t *testing.T) {
	path := writeConfig(t, `
tracer:
  enabled: false
snowflake:
  instance: 0
timeline:
  max-limit: 50
`)
	cfg, real, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, real)

	assert.False(t, cfg.Tracer.Enabled)
	assert.Equal(t, int64(0), cfg.SnowflakeInstance())
	assert.Equal(t, 50, cfg.Timeline.MaxLimit)
	assert.Equal(t, 20, cfg.Timeline.DefaultLimit)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, 64, cfg.Fanout.Concurrency)
	assert.Equal(t, 30*24*time.Hour, cfg.GetTokenExpiry())

	epoch, err := cfg.SnowflakeEpoch()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), epoch)
}

func TestLoadConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown cache", "cache:\n  type: memcached\n"},
		{"redis without addrs", "cache:\n  type: redis\n"},
		{"instance too large", "snowflake:\n  instance: 1024\n"},
		{"bad epoch", "snowflake:\n  epoch: yesterday\n"},
		{"negative max length", "timeline:\n  max-length: -1\n"},
		{"default over max", "timeline:\n  default-limit: 200\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	cfg, _, err := LoadConfig(writeConfig(t, "list:\n  max-members: 7\n"))
	require.NoError(t, err)

	cfg.File = filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.Save())

	again, _, err := LoadConfig(cfg.File)
	require.NoError(t, err)
	assert.Equal(t, 7, again.List.MaxMembers)
}

func newTestConfig(t *testing.T) *AppConfig {
	t.Helper()
	cfg := &AppConfig{}
	require.NoError(t, defaults.Set(cfg))
	cfg.Database.Path = filepath.Join(t.TempDir(), "feed.sqlite3")
	cfg.Snowflake.Instance = 3
	return cfg
}

func newTestApp(t *testing.T, cfg *AppConfig, opts ...Option) *App {
	t.Helper()
	db, err := dao.NewDBEngineWithConfig(cfg.GetDatabaseConfig(), nil)
	require.NoError(t, err)

	opts = append([]Option{WithRegistry(prometheus.NewRegistry())}, opts...)
	a, err := NewApp(cfg, zap.NewNop(), db, opts...)
	require.NoError(t, err)
	return a
}

func TestNewApp_RequiresDependencies(t *testing.T) {
	_, err := NewApp(nil, zap.NewNop(), nil)
	assert.Error(t, err)
	_, err = NewApp(&AppConfig{}, nil, nil)
	assert.Error(t, err)
	_, err = NewApp(&AppConfig{}, zap.NewNop(), nil)
	assert.Error(t, err)
}

func TestNewApp_WiresPublishToHome(t *testing.T) {
	cfg := newTestConfig(t)
	a := newTestApp(t, cfg)
	ctx := context.Background()

	assert.Equal(t, int64(3), a.Generator.Instance())
	require.NoError(t, a.FollowService.Follow(ctx, 2, 1))

	note, err := a.NoteService.Create(ctx, 1, &service.NoteCreateParams{Content: "hi"})
	require.NoError(t, err)

	ids, err := a.Cache.Read(ctx, timeline.HomeKey(2))
	require.NoError(t, err)
	assert.Equal(t, []int64{note.ID}, ids)

	feed, err := a.TimelineService.FetchHome(ctx, 2, service.Filter{})
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, domain.VisibilityPublic, feed[0].Visibility)

	require.NoError(t, a.Shutdown(context.Background()))
	assert.True(t, a.IsShuttingDown())
	// 重复关闭为空操作
	assert.NoError(t, a.Shutdown(context.Background()))
}

func TestNewApp_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := newTestConfig(t)
	cfg.Cache.Type = "redis"
	cfg.Cache.Redis.Addrs = []string{mr.Addr()}
	a := newTestApp(t, cfg)
	ctx := context.Background()

	dbErr, cacheErr := a.Ping(ctx)
	assert.NoError(t, dbErr)
	assert.NoError(t, cacheErr)

	require.NoError(t, a.Cache.Append(ctx, timeline.HomeKey(5), 42))
	assert.True(t, mr.Exists("timeline:home:5"))
	assert.Equal(t, []string{"timeline:home:5"}, mr.Keys())

	require.NoError(t, a.Shutdown(ctx))
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Cache.Type = "redis"
	cfg.Cache.Redis.Addrs = []string{"127.0.0.1:1"}
	cfg.Cache.Redis.DialTimeout = "100ms"

	db, err := dao.NewDBEngineWithConfig(cfg.GetDatabaseConfig(), nil)
	require.NoError(t, err)
	_, err = NewApp(cfg, zap.NewNop(), db, WithRegistry(prometheus.NewRegistry()))
	assert.Error(t, err)
}

func TestNewApp_WithCacheOverride(t *testing.T) {
	cache := timeline.NewMemoryCache()
	cfg := newTestConfig(t)
	cfg.Cache.Type = "redis"
	cfg.Cache.Redis.Addrs = []string{"127.0.0.1:1"}

	a := newTestApp(t, cfg, WithCache(cache))
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	assert.Same(t, cache, a.Cache)
}
