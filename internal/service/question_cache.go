package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"golang.org/x/sync/singleflight"
)

// QuestionCache serves module question banks from Redis, loading misses from
// the store. Concurrent misses for one module share a single load.
type QuestionCache struct {
	quizzes QuizStore
	rdb     *redis.Client
	ttl     time.Duration
	group   singleflight.Group
	log     zerolog.Logger
}

// NewQuestionCache creates a QuestionCache. A nil rdb reads straight from the store.
func NewQuestionCache(quizzes QuizStore, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *QuestionCache {
	return &QuestionCache{
		quizzes: quizzes,
		rdb:     rdb,
		ttl:     ttl,
		log:     log.With().Str("component", "question_cache").Logger(),
	}
}

// Get returns the question bank of a module.
func (c *QuestionCache) Get(ctx context.Context, moduleID int) ([]model.Quiz, error) {
	if c.rdb == nil {
		return c.quizzes.ListByModule(ctx, moduleID)
	}

	key := config.CacheKey.ModuleQuestionsKey(moduleID)
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var quizzes []model.Quiz
		if err := json.Unmarshal(data, &quizzes); err == nil {
			return quizzes, nil
		}
		c.log.Warn().Int("module_id", moduleID).Msg("corrupt question cache entry, reloading")
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Int("module_id", moduleID).Msg("question cache read failed")
	}

	v, err, _ := c.group.Do(strconv.Itoa(moduleID), func() (interface{}, error) {
		quizzes, err := c.quizzes.ListByModule(ctx, moduleID)
		if err != nil {
			return nil, err
		}
		if payload, err := json.Marshal(quizzes); err == nil {
			if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
				c.log.Warn().Err(err).Int("module_id", moduleID).Msg("question cache write failed")
			}
		}
		return quizzes, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Quiz), nil
}

// Invalidate drops the cached bank of a module after an admin write.
func (c *QuestionCache) Invalidate(ctx context.Context, moduleID int) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, config.CacheKey.ModuleQuestionsKey(moduleID)).Err(); err != nil {
		c.log.Warn().Err(err).Int("module_id", moduleID).Msg("question cache invalidation failed")
	}
}
