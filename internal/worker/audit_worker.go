package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/model"
)

const (
	AuditBatchSize    = 50
	AuditBatchTimeout = 2 * time.Second
	AuditPollTimeout  = 1 * time.Second
)

// AuditSink persists audit entries. Implemented by repository.AuditRepository.
type AuditSink interface {
	Insert(ctx context.Context, e *model.AuditEntry) error
	BulkInsert(ctx context.Context, batch []*model.AuditEntry) error
}

// AuditWorker drains the audit queue into PostgreSQL in batches.
type AuditWorker struct {
	sink AuditSink
	rdb  *redis.Client
	log  zerolog.Logger

	batchSize    int
	batchTimeout time.Duration
	pollTimeout  time.Duration
}

func NewAuditWorker(sink AuditSink, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		sink:         sink,
		rdb:          rdb,
		log:          log.With().Str("component", "audit_worker").Logger(),
		batchSize:    AuditBatchSize,
		batchTimeout: AuditBatchTimeout,
		pollTimeout:  AuditPollTimeout,
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start blocks until ctx is cancelled, then flushes what it holds.
func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AuditWorker started")

	queue := config.WorkerKey.PersistAuditQueue
	batch := make([]*model.AuditEntry, 0, w.batchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= w.batchSize || time.Since(lastFlush) >= w.batchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, w.pollTimeout, queue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var e model.AuditEntry
			if err := json.Unmarshal([]byte(item[1]), &e); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &e)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert with per-entry fallback
// ----------------------------------------------------------------

func (w *AuditWorker) flushSafe(ctx context.Context, batch []*model.AuditEntry) {
	if len(batch) == 0 {
		return
	}

	err := w.sink.BulkInsert(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Audit batch persisted")
		return
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("bulk audit insert failed, using fallback")

	for _, e := range batch {
		if err := w.sink.Insert(ctx, e); err != nil {
			w.log.Error().Err(err).Str("action", string(e.Action)).Msg("audit insert failed, requeueing")
			raw, _ := json.Marshal(e)
			if err := w.rdb.RPush(context.Background(), config.WorkerKey.PersistAuditQueue, raw).Err(); err != nil {
				w.log.Error().Err(err).Msg("audit requeue failed, entry dropped")
			}
		}
	}
}
