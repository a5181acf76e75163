package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// OfertaCache stores rendered final offers. A catalogo's final version never
// changes once set, so entries never need invalidation; the TTL only bounds
// memory. Any cache error is treated as a miss.
type OfertaCache interface {
	Get(ctx context.Context, catalogoID uuid.UUID) (*dto.OfertaFinalResponse, bool)
	Set(ctx context.Context, catalogoID uuid.UUID, o *dto.OfertaFinalResponse)
}

type redisOfertaCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisOfertaCache(rdb *redis.Client, ttl time.Duration) OfertaCache {
	return &redisOfertaCache{rdb: rdb, ttl: ttl}
}

func ofertaKey(catalogoID uuid.UUID) string { return "oferta_final:" + catalogoID.String() }

func (c *redisOfertaCache) Get(ctx context.Context, catalogoID uuid.UUID) (*dto.OfertaFinalResponse, bool) {
	raw, err := c.rdb.Get(ctx, ofertaKey(catalogoID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("catalogo_id", catalogoID.String()).Msg("oferta cache: get failed")
		}
		return nil, false
	}
	var o dto.OfertaFinalResponse
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, false
	}
	return &o, true
}

func (c *redisOfertaCache) Set(ctx context.Context, catalogoID uuid.UUID, o *dto.OfertaFinalResponse) {
	raw, err := json.Marshal(o)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, ofertaKey(catalogoID), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("catalogo_id", catalogoID.String()).Msg("oferta cache: set failed")
	}
}
