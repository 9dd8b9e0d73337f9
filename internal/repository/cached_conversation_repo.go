package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"budgetpilot/internal/model/chat"
	"budgetpilot/internal/pkg/cache"
)

// CachedConversationRepo Redis 读穿缓存
// 缓存故障只记录告警，读写都以底层仓库为准
type CachedConversationRepo struct {
	inner ConversationRepository
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewCachedConversationRepo 包装底层仓库
func NewCachedConversationRepo(inner ConversationRepository, c *cache.RedisCache, ttl time.Duration) *CachedConversationRepo {
	if ttl <= 0 {
		ttl = cache.ConversationCacheTTL
	}
	return &CachedConversationRepo{inner: inner, cache: c, ttl: ttl}
}

// Save 写底层仓库后刷新缓存
func (r *CachedConversationRepo) Save(ctx context.Context, conv *chat.Conversation) (*chat.Conversation, error) {
	saved, err := r.inner.Save(ctx, conv)
	if err != nil {
		// 写失败时缓存可能比库新，直接失效
		if conv.ID != "" {
			r.invalidate(ctx, conv.ID)
		}
		return nil, err
	}

	if err := r.cache.Set(ctx, cache.ConversationCacheKey(saved.ID), saved, r.ttl); err != nil {
		log.Warn().Err(err).Str("conversation_id", saved.ID).Msg("Failed to refresh conversation cache")
		r.invalidate(ctx, saved.ID)
	}
	return saved, nil
}

// FindByID 先查缓存，未命中回源并回填
func (r *CachedConversationRepo) FindByID(ctx context.Context, id string) (*chat.Conversation, error) {
	var conv chat.Conversation
	err := r.cache.Get(ctx, cache.ConversationCacheKey(id), &conv)
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Str("conversation_id", id).Msg("Conversation cache read failed")
	}

	found, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, cache.ConversationCacheKey(id), found, r.ttl); err != nil {
		log.Warn().Err(err).Str("conversation_id", id).Msg("Failed to populate conversation cache")
	}
	return found, nil
}

// FindByUser 列表不走缓存
func (r *CachedConversationRepo) FindByUser(ctx context.Context, userID string) ([]*chat.Conversation, error) {
	return r.inner.FindByUser(ctx, userID)
}

func (r *CachedConversationRepo) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, cache.ConversationCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("conversation_id", id).Msg("Failed to invalidate conversation cache")
	}
}
