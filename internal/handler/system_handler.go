package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/response"
)

const healthTimeout = 2 * time.Second

// SystemHandler reports process health and runtime state.
type SystemHandler struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	startTime time.Time
}

func NewSystemHandler(pool *pgxpool.Pool, rdb *redis.Client) *SystemHandler {
	return &SystemHandler{pool: pool, rdb: rdb, startTime: time.Now()}
}

// Health godoc
// GET /health
// Reports 503 when PostgreSQL is unreachable. Redis is optional and only reported.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"database": "ok", "redis": "disabled"}

	if h.pool != nil {
		if err := h.pool.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks["database"] = "unreachable"
		}
	}
	if h.rdb != nil {
		checks["redis"] = "ok"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unreachable"
		}
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	response.Success(c, status, gin.H{"status": state, "checks": checks})
}

type systemMetrics struct {
	Uptime     string `json:"uptime"`
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapSys    uint64 `json:"heap_sys"`
	NumGC      uint32 `json:"num_gc"`
	GoVersion  string `json:"go_version"`
	NumCPU     int    `json:"num_cpu"`

	DBTotalConns    int32 `json:"db_total_conns"`
	DBAcquiredConns int32 `json:"db_acquired_conns"`
	QueueAudit      int64 `json:"queue_audit"`
}

// Metrics godoc
// GET /api/v1/admin/system/metrics
// Returns runtime, pool and worker-queue figures.
func (h *SystemHandler) Metrics(c *gin.Context) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m := systemMetrics{
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  ms.HeapAlloc,
		HeapSys:    ms.HeapSys,
		NumGC:      ms.NumGC,
		GoVersion:  runtime.Version(),
		NumCPU:     runtime.NumCPU(),
	}

	if h.pool != nil {
		stat := h.pool.Stat()
		m.DBTotalConns = stat.TotalConns()
		m.DBAcquiredConns = stat.AcquiredConns()
	}
	if h.rdb != nil {
		m.QueueAudit, _ = h.rdb.LLen(c.Request.Context(), config.WorkerKey.PersistAuditQueue).Result()
	}

	response.Success(c, http.StatusOK, m)
}
