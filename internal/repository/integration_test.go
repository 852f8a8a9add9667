//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/database"
	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/repository"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var pool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "smsi",
				"POSTGRES_PASSWORD": "smsi",
				"POSTGRES_DB":       "smsi_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Printf("start postgres: %v\n", err)
		os.Exit(1)
	}

	host, _ := pg.Host(ctx)
	port, _ := pg.MappedPort(ctx, "5432")
	dsn := fmt.Sprintf("postgres://smsi:smsi@%s:%s/smsi_test?sslmode=disable", host, port.Port())

	log := zerolog.Nop()
	if err := database.MigrateUp(dsn, "../../migrations", log); err != nil {
		fmt.Printf("migrate: %v\n", err)
		_ = pg.Terminate(ctx)
		os.Exit(1)
	}

	pool, err = database.NewPostgresPool(ctx, &config.Config{DatabaseURL: dsn, MaxDBConns: 20}, log)
	if err != nil {
		fmt.Printf("pool: %v\n", err)
		_ = pg.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()

	pool.Close()
	_ = pg.Terminate(ctx)
	os.Exit(code)
}

// seed creates a fresh user and module and returns their ids.
func seed(t *testing.T) (int, int) {
	t.Helper()
	ctx := context.Background()

	u := &model.User{
		Name:         "Ana",
		Email:        fmt.Sprintf("ana-%d@example.com", time.Now().UnixNano()),
		PasswordHash: "x",
		Role:         model.RoleUser,
	}
	if err := repository.NewUserRepository(pool).Create(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	m := &model.Module{
		Title:           "Phishing",
		Description:     "Spotting phishing",
		Content:         "Phishing content body",
		Difficulty:      model.DifficultyBeginner,
		DurationMinutes: 15,
	}
	if err := repository.NewModuleRepository(pool).Create(ctx, m); err != nil {
		t.Fatalf("create module: %v", err)
	}
	return u.ID, m.ID
}

func attempt(userID, moduleID int, score float64) *model.Result {
	return &model.Result{
		UserID:         userID,
		ModuleID:       moduleID,
		Score:          score,
		TotalQuestions: 5,
		CorrectAnswers: int(score / 20),
		Passed:         score >= 80,
		CompletedAt:    time.Now().UTC(),
	}
}

func TestUpsertBestKeepsMaximum(t *testing.T) {
	userID, moduleID := seed(t)
	repo := repository.NewResultRepository(pool)
	ctx := context.Background()

	steps := []struct {
		score         float64
		wantBest      float64
		wantImproved  bool
		wantCompleted int // step whose completed_at is stored
	}{
		{60, 60, true, 0},
		{40, 60, false, 0},
		{60, 60, false, 0},
		{100, 100, true, 3},
		{80, 100, false, 3},
	}
	start := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)
	stepTime := func(i int) time.Time { return start.Add(time.Duration(i) * time.Minute) }

	for i, st := range steps {
		a := attempt(userID, moduleID, st.score)
		a.CompletedAt = stepTime(i)

		best, improved, err := repo.UpsertBest(ctx, a)
		if err != nil {
			t.Fatalf("step %d: UpsertBest: %v", i, err)
		}
		if best.Score != st.wantBest || improved != st.wantImproved {
			t.Fatalf("step %d: best=%v improved=%v, want %v/%v", i, best.Score, improved, st.wantBest, st.wantImproved)
		}
		if !best.CompletedAt.Equal(stepTime(st.wantCompleted)) {
			t.Fatalf("step %d: completed_at = %v, want %v", i, best.CompletedAt, stepTime(st.wantCompleted))
		}
	}

	stored, err := repo.GetByUserAndModule(ctx, userID, moduleID)
	if err != nil {
		t.Fatalf("GetByUserAndModule: %v", err)
	}
	if !stored.CompletedAt.Equal(stepTime(3)) {
		t.Fatalf("stored completed_at = %v, want %v", stored.CompletedAt, stepTime(3))
	}
}

func TestUpsertBestConcurrent(t *testing.T) {
	userID, moduleID := seed(t)
	repo := repository.NewResultRepository(pool)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(score float64) {
			defer wg.Done()
			if _, _, err := repo.UpsertBest(ctx, attempt(userID, moduleID, score)); err != nil {
				t.Errorf("UpsertBest: %v", err)
			}
		}(float64(i * 5))
	}
	wg.Wait()

	stored, err := repo.GetByUserAndModule(ctx, userID, moduleID)
	if err != nil {
		t.Fatalf("GetByUserAndModule: %v", err)
	}
	if stored.Score != 95 {
		t.Fatalf("stored score = %v, want 95", stored.Score)
	}
}

func TestMarkCertificateGenerated(t *testing.T) {
	userID, moduleID := seed(t)
	repo := repository.NewResultRepository(pool)
	ctx := context.Background()

	if _, _, err := repo.UpsertBest(ctx, attempt(userID, moduleID, 60)); err != nil {
		t.Fatalf("UpsertBest: %v", err)
	}
	if first, err := repo.MarkCertificateGenerated(ctx, userID, moduleID); err != nil || first {
		t.Fatalf("failed result marked: first=%v err=%v", first, err)
	}

	if _, _, err := repo.UpsertBest(ctx, attempt(userID, moduleID, 90)); err != nil {
		t.Fatalf("UpsertBest: %v", err)
	}
	if first, err := repo.MarkCertificateGenerated(ctx, userID, moduleID); err != nil || !first {
		t.Fatalf("first mark: first=%v err=%v", first, err)
	}
	if first, err := repo.MarkCertificateGenerated(ctx, userID, moduleID); err != nil || first {
		t.Fatalf("second mark: first=%v err=%v", first, err)
	}

	if _, _, err := repo.UpsertBest(ctx, attempt(userID, moduleID, 100)); err != nil {
		t.Fatalf("UpsertBest: %v", err)
	}
	stored, _ := repo.GetByUserAndModule(ctx, userID, moduleID)
	if !stored.CertificateGenerated {
		t.Fatal("improvement reset certificate_generated")
	}
}

func TestEraseAnonymizesAudit(t *testing.T) {
	userID, moduleID := seed(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	audits := repository.NewAuditRepository(pool)
	results := repository.NewResultRepository(pool)

	if _, _, err := results.UpsertBest(ctx, attempt(userID, moduleID, 90)); err != nil {
		t.Fatalf("UpsertBest: %v", err)
	}
	if err := audits.Insert(ctx, &model.AuditEntry{UserID: &userID, Action: model.AuditLogin, IPAddress: "10.0.0.1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := users.Erase(ctx, userID); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if _, err := results.GetByUserAndModule(ctx, userID, moduleID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("result after erase err = %v, want ErrNotFound", err)
	}
	logs, err := audits.ListByUser(ctx, userID, 10)
	if err != nil || len(logs) != 0 {
		t.Fatalf("audit rows still linked: %d, err %v", len(logs), err)
	}

	// An entry queued before erasure lands with no user reference.
	if err := audits.Insert(ctx, &model.AuditEntry{UserID: &userID, Action: model.AuditDataDelete, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("late insert: %v", err)
	}
}
