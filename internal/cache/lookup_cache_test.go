package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_pos/internal/config"
	"github.com/GTDGit/gtd_pos/internal/models"
)

func TestDisabledCache(t *testing.T) {
	r, err := NewRedisClient(&config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, r)

	c := NewLookupCache(r, 0)
	assert.Nil(t, c)

	ctx := context.Background()
	w := &models.Warranty{WarrantyNumber: "BH20240101120000", LookupToken: "WARRANTY:BH20240101120000"}
	c.PutWarranty(ctx, w, w.WarrantyNumber)
	c.InvalidateWarranty(ctx, w)
	got, ok := c.GetWarranty(ctx, w.WarrantyNumber)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestWarrantyKeyIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, warrantyKey("BH20240101120000"), warrantyKey(" bh20240101120000 "))
	assert.Equal(t, "warranty:WARRANTY:BH1", warrantyKey("warranty:bh1"))
}
