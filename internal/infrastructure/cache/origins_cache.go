package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ecotrace-api/internal/application/transport"
	"github.com/jhoicas/ecotrace-api/internal/domain/entity"
)

var _ transport.OriginsCache = (*OriginsCache)(nil)

const originsKeyPrefix = "ecotrace:origins:"

// OriginsCache guarda en Redis los orígenes disponibles por lote.
// Es solo para lectura de la UI: la admisión de tramos recalcula siempre desde la DB.
// Los fallos de Redis se registran y se tratan como miss; nunca se propagan.
type OriginsCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewOriginsCache construye la caché. Con client nil todas las operaciones son no-op.
func NewOriginsCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *OriginsCache {
	return &OriginsCache{client: client, ttl: ttl, log: log}
}

func originsKey(batchID string) string { return originsKeyPrefix + batchID }

func (c *OriginsCache) Get(ctx context.Context, batchID string) (*entity.AvailableOrigins, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, originsKey(batchID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("batch_id", batchID).Msg("origins cache get")
		}
		return nil, false
	}
	var out entity.AvailableOrigins
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Warn().Err(err).Str("batch_id", batchID).Msg("origins cache decode")
		return nil, false
	}
	return &out, true
}

func (c *OriginsCache) Set(ctx context.Context, batchID string, origins entity.AvailableOrigins) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(origins)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, originsKey(batchID), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("batch_id", batchID).Msg("origins cache set")
	}
}

func (c *OriginsCache) Invalidate(ctx context.Context, batchID string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, originsKey(batchID)).Err(); err != nil {
		c.log.Warn().Err(err).Str("batch_id", batchID).Msg("origins cache invalidate")
	}
}
