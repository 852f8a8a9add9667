package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/model"
)

type memorySink struct {
	mu        sync.Mutex
	entries   []model.AuditEntry
	bulkCalls int
	bulkErr   error
	insertErr error
}

func (s *memorySink) Insert(_ context.Context, e *model.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.entries = append(s.entries, *e)
	return nil
}

func (s *memorySink) BulkInsert(_ context.Context, batch []*model.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bulkCalls++
	if s.bulkErr != nil {
		return s.bulkErr
	}
	for _, e := range batch {
		s.entries = append(s.entries, *e)
	}
	return nil
}

func (s *memorySink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func newQueue(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func push(t *testing.T, rdb *redis.Client, actions ...model.AuditAction) {
	t.Helper()
	for _, a := range actions {
		raw, _ := json.Marshal(model.AuditEntry{Action: a, CreatedAt: time.Now().UTC()})
		if err := rdb.RPush(context.Background(), config.WorkerKey.PersistAuditQueue, raw).Err(); err != nil {
			t.Fatalf("RPush: %v", err)
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func startWorker(w *AuditWorker) (cancel func()) {
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	return func() {
		stop()
		<-done
	}
}

func TestAuditWorkerDrainsQueue(t *testing.T) {
	_, rdb := newQueue(t)
	sink := &memorySink{}
	w := NewAuditWorker(sink, rdb, zerolog.Nop())
	w.batchSize = 3
	w.batchTimeout = 100 * time.Millisecond
	w.pollTimeout = 50 * time.Millisecond
	stop := startWorker(w)
	defer stop()

	push(t, rdb, model.AuditLogin, model.AuditModuleView, model.AuditQuizSubmit, model.AuditLogout)
	waitFor(t, func() bool { return sink.count() == 4 })

	sink.mu.Lock()
	calls := sink.bulkCalls
	sink.mu.Unlock()
	if calls < 2 {
		t.Fatalf("bulk inserts = %d, want a full batch and a timed flush", calls)
	}
}

func TestAuditWorkerFlushesOnShutdown(t *testing.T) {
	mr, rdb := newQueue(t)
	sink := &memorySink{}
	w := NewAuditWorker(sink, rdb, zerolog.Nop())
	w.batchSize = 100
	w.batchTimeout = time.Hour
	w.pollTimeout = 50 * time.Millisecond
	stop := startWorker(w)

	push(t, rdb, model.AuditLogin, model.AuditLogout)
	waitFor(t, func() bool { return !mr.Exists(config.WorkerKey.PersistAuditQueue) })
	if sink.count() != 0 {
		t.Fatalf("flushed %d entries before the batch was due", sink.count())
	}

	stop()
	if sink.count() != 2 {
		t.Fatalf("persisted %d entries on shutdown, want 2", sink.count())
	}
}

func TestAuditWorkerFallsBackToSingleInserts(t *testing.T) {
	_, rdb := newQueue(t)
	sink := &memorySink{bulkErr: errors.New("bulk failed")}
	w := NewAuditWorker(sink, rdb, zerolog.Nop())

	batch := []*model.AuditEntry{{Action: model.AuditLogin}, {Action: model.AuditLogout}}
	w.flushSafe(context.Background(), batch)

	if sink.count() != 2 {
		t.Fatalf("persisted %d entries, want 2", sink.count())
	}
}

func TestAuditWorkerRequeuesOnFailure(t *testing.T) {
	mr, rdb := newQueue(t)
	sink := &memorySink{bulkErr: errors.New("bulk failed"), insertErr: errors.New("insert failed")}
	w := NewAuditWorker(sink, rdb, zerolog.Nop())

	w.flushSafe(context.Background(), []*model.AuditEntry{{Action: model.AuditQuizSubmit}})

	queued, err := mr.List(config.WorkerKey.PersistAuditQueue)
	if err != nil || len(queued) != 1 {
		t.Fatalf("queue = %v, err %v", queued, err)
	}
	var e model.AuditEntry
	if err := json.Unmarshal([]byte(queued[0]), &e); err != nil || e.Action != model.AuditQuizSubmit {
		t.Fatalf("requeued entry = %+v, err %v", e, err)
	}
}
