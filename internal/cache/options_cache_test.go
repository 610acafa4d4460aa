package cache

import (
	"context"
	"testing"
	"time"

	"caa_portal_backend/internal/config"
	"caa_portal_backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*OptionsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewRedisClient(config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewOptionsCache(client, time.Minute), mr
}

func TestOptionsCache_CategoryRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok, err := c.GetCategory(ctx, "gender")
	require.NoError(t, err)
	assert.False(t, ok)

	key := "KE"
	choices := []models.OptionChoice{{Value: "kenyan", Label: "Kenyan", Key: &key}}
	require.NoError(t, c.SetCategory(ctx, 0, "nationality", choices))

	got, ok, err := c.GetCategory(ctx, "nationality")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, choices, got)
	assert.Equal(t, time.Minute, mr.TTL(categoryKey("nationality")))
}

func TestOptionsCache_EmptyCategoryIsCachedAsEmptyList(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetCategory(ctx, 0, "retired", nil))
	got, ok, err := c.GetCategory(ctx, "retired")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestOptionsCache_Invalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetGrouped(ctx, 0, models.GroupedOptions{"gender": {"male": "Male"}}))
	require.NoError(t, c.SetCategory(ctx, 0, "gender", []models.OptionChoice{{Value: "male", Label: "Male"}}))
	require.NoError(t, c.SetCategory(ctx, 0, "country", []models.OptionChoice{{Value: "kenya", Label: "Kenya"}}))

	require.NoError(t, c.Invalidate(ctx, "gender"))

	assert.False(t, mr.Exists(groupedKey))
	assert.False(t, mr.Exists(categoryKey("gender")))
	assert.True(t, mr.Exists(categoryKey("country")))

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
}

func TestOptionsCache_DropsWriteLoadedBeforeInvalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	// a reader takes the generation, then an upsert invalidates before it writes back
	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "gender"))

	require.NoError(t, c.SetGrouped(ctx, gen, models.GroupedOptions{"gender": {"male": "Male"}}))
	require.NoError(t, c.SetCategory(ctx, gen, "gender", []models.OptionChoice{{Value: "male", Label: "Male"}}))
	assert.False(t, mr.Exists(groupedKey))
	assert.False(t, mr.Exists(categoryKey("gender")))

	fresh, err := c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.SetGrouped(ctx, fresh, models.GroupedOptions{"gender": {"female": "Female"}}))
	got, ok, err := c.GetGrouped(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.GroupedOptions{"gender": {"female": "Female"}}, got)
}

func TestOptionsCache_ErrorsWhenRedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, ok, err := c.GetGrouped(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Ping(context.Background()))
}
