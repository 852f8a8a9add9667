package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/model"
)

func TestUserServiceDelete(t *testing.T) {
	users := newFakeUsers(
		&model.User{ID: 1, Email: "admin@example.com", Role: model.RoleAdmin},
		&model.User{ID: 2, Email: "ana@example.com", Role: model.RoleUser},
	)
	svc := NewUserService(users, NewAuthService(testConfig(), users, nil, zerolog.Nop()))
	ctx := context.Background()

	t.Run("self delete refused before lookup", func(t *testing.T) {
		before := users.storeCalls()
		if err := svc.Delete(ctx, 1, 1); !errors.Is(err, ErrCannotDeleteSelf) {
			t.Fatalf("err = %v, want ErrCannotDeleteSelf", err)
		}
		if users.storeCalls() != before {
			t.Fatal("store touched on self delete")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if err := svc.Delete(ctx, 1, 99); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("err = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("other user", func(t *testing.T) {
		if err := svc.Delete(ctx, 1, 2); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := svc.Get(ctx, 2); !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("Get after delete err = %v", err)
		}
	})
}

func TestUserServiceCreateAndUpdate(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users, NewAuthService(testConfig(), users, nil, zerolog.Nop()))
	ctx := context.Background()

	u, err := svc.Create(ctx, &model.CreateUserRequest{Name: "Ana", Email: "ana@example.com", Password: "Secret#123"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Role != model.RoleUser {
		t.Fatalf("default role = %q, want user", u.Role)
	}

	if _, err := svc.Create(ctx, &model.CreateUserRequest{Name: "Dup", Email: "ana@example.com", Password: "Secret#123"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("duplicate err = %v, want ErrEmailExists", err)
	}

	updated, err := svc.Update(ctx, u.ID, &model.UpdateUserRequest{Role: model.RoleAdmin})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Role != model.RoleAdmin || updated.Name != "Ana" {
		t.Fatalf("updated = %+v", updated)
	}

	list, total, err := svc.List(ctx, 0, 0)
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("List = %d items, total %d, err %v", len(list), total, err)
	}
}

func TestPrivacyService(t *testing.T) {
	cfg := testConfig()
	users := newFakeUsers()
	auth := NewAuthService(cfg, users, nil, zerolog.Nop())
	ctx := context.Background()

	u, err := auth.Register(ctx, &model.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "Secret#123", ConsentRGPD: true})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	results := newFakeResults(&model.Result{ID: 1, UserID: u.ID, ModuleID: 1, Score: 90, Passed: true})
	audits := &fakeAudits{}
	_ = audits.Insert(ctx, &model.AuditEntry{UserID: intPtr(u.ID), Action: model.AuditLogin})
	svc := NewPrivacyService(users, results, audits, auth)

	export, err := svc.Export(ctx, u.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if export.PersonalInfo.Email != "ana@example.com" || len(export.TrainingResults) != 1 || len(export.ActivityLogs) != 1 {
		t.Fatalf("export = %+v", export)
	}

	if err := svc.VerifyPassword(ctx, u.ID, "Wrong#123"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("wrong password err = %v, want ErrInvalidPassword", err)
	}
	if err := svc.VerifyPassword(ctx, u.ID, "Secret#123"); err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}

	if err := svc.Erase(ctx, u.ID); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if err := svc.Erase(ctx, u.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("second erase err = %v, want ErrUserNotFound", err)
	}
}
