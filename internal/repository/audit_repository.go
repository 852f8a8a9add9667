package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smsi-platform/smsi-backend/internal/model"
)

// AuditRepository handles audit log data access.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Insert persists a single audit entry. A user_id whose account is already
// gone is stored as NULL, matching what erasure does to older entries.
func (r *AuditRepository) Insert(ctx context.Context, e *model.AuditEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (user_id, action, resource, resource_id, details, ip_address, user_agent, created_at)
		 VALUES ((SELECT id FROM users WHERE id = $1), $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)`,
		e.UserID, e.Action, e.Resource, e.ResourceID, nullJSON(e.Details), e.IPAddress, e.UserAgent, e.CreatedAt)
	return err
}

// BulkInsert persists a batch of audit entries with UNNEST in one statement.
func (r *AuditRepository) BulkInsert(ctx context.Context, batch []*model.AuditEntry) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	userIDs := make([]*int, n)
	actions := make([]string, n)
	resources := make([]string, n)
	resourceIDs := make([]*int, n)
	details := make([]*string, n)
	ips := make([]string, n)
	agents := make([]string, n)
	createdAts := make([]time.Time, n)

	for i, e := range batch {
		userIDs[i] = e.UserID
		actions[i] = string(e.Action)
		resources[i] = e.Resource
		resourceIDs[i] = e.ResourceID
		if len(e.Details) > 0 {
			d := string(e.Details)
			details[i] = &d
		}
		ips[i] = e.IPAddress
		agents[i] = e.UserAgent
		createdAts[i] = e.CreatedAt
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (user_id, action, resource, resource_id, details, ip_address, user_agent, created_at)
		SELECT (SELECT id FROM users WHERE id = u.user_id), u.action, NULLIF(u.resource, ''), u.resource_id, u.details::jsonb,
		       NULLIF(u.ip_address, ''), NULLIF(u.user_agent, ''), u.created_at
		FROM UNNEST(
			$1::int[],
			$2::text[],
			$3::text[],
			$4::int[],
			$5::text[],
			$6::text[],
			$7::text[],
			$8::timestamptz[]
		) AS u (user_id, action, resource, resource_id, details, ip_address, user_agent, created_at)`,
		userIDs, actions, resources, resourceIDs, details, ips, agents, createdAts)
	return err
}

// List returns a page of audit logs, newest first, with the owning user's name.
func (r *AuditRepository) List(ctx context.Context, limit, offset int) ([]model.AuditLog, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.user_id, a.action, COALESCE(a.resource, ''), a.resource_id, a.details,
		        COALESCE(a.ip_address, ''), COALESCE(a.user_agent, ''), a.created_at,
		        COALESCE(u.name, ''), COALESCE(u.email, '')
		 FROM audit_logs a
		 LEFT JOIN users u ON u.id = a.user_id
		 ORDER BY a.created_at DESC, a.id DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	logs := make([]model.AuditLog, 0, limit)
	for rows.Next() {
		var l model.AuditLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Resource, &l.ResourceID, &l.Details,
			&l.IPAddress, &l.UserAgent, &l.CreatedAt, &l.UserName, &l.UserEmail); err != nil {
			return nil, 0, err
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}

// ListByUser returns the audit trail of one user, newest first.
func (r *AuditRepository) ListByUser(ctx context.Context, userID, limit int) ([]model.AuditLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, action, COALESCE(resource, ''), resource_id, details,
		        COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_at
		 FROM audit_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]model.AuditLog, 0)
	for rows.Next() {
		var l model.AuditLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.Resource, &l.ResourceID, &l.Details,
			&l.IPAddress, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// DeleteOlderThan removes entries created before the cutoff and returns the count.
func (r *AuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func nullJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
