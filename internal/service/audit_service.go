package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/model"
)

// auditWriteTimeout bounds the detached audit writes.
const auditWriteTimeout = 3 * time.Second

// AuditService records audit events. Recording never fails the caller.
type AuditService struct {
	store AuditStore
	rdb   *redis.Client
	log   zerolog.Logger
	now   func() time.Time
}

// NewAuditService creates a new AuditService. With a nil rdb entries are inserted directly.
func NewAuditService(store AuditStore, rdb *redis.Client, log zerolog.Logger) *AuditService {
	return &AuditService{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "audit_service").Logger(),
		now:   time.Now,
	}
}

// Record queues an entry for the audit worker and publishes it to live
// listeners. When the queue is unreachable the entry is inserted directly.
// Errors are logged only.
func (s *AuditService) Record(ctx context.Context, e model.AuditEntry) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}

	// Detach from request cancellation; the audit write outlives the response.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	if s.rdb != nil {
		payload, err := json.Marshal(e)
		if err != nil {
			s.log.Error().Err(err).Str("action", string(e.Action)).Msg("audit marshal failed")
			return
		}

		err = s.rdb.RPush(ctx, config.WorkerKey.PersistAuditQueue, payload).Err()
		if err == nil {
			if err := s.rdb.Publish(ctx, config.CacheKey.AuditActivityChannel(), payload).Err(); err != nil {
				s.log.Warn().Err(err).Msg("audit publish failed")
			}
			return
		}
		s.log.Warn().Err(err).Msg("audit enqueue failed, inserting directly")
	}

	if err := s.store.Insert(ctx, &e); err != nil {
		s.log.Error().Err(err).Str("action", string(e.Action)).Msg("audit insert failed")
	}
}

// List returns a page of audit logs.
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]model.AuditLog, int, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	logs, total, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// PurgeOlderThan deletes entries older than the retention window.
func (s *AuditService) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	return s.store.DeleteOlderThan(ctx, s.now().Add(-retention))
}
