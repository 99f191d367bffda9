package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"techmart-assistant/internal/domain"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	user := domain.User{ID: "u1", Email: "ana@techmart.test", Name: "Ana", PasswordHash: "hash", CreatedAt: time.Now().UTC()}

	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := user
	dup.ID = "u2"
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	byEmail, err := repo.GetByEmail(ctx, "ana@techmart.test")
	if err != nil || byEmail.ID != "u1" {
		t.Fatalf("get by email: %+v %v", byEmail, err)
	}
	byID, err := repo.GetByID(ctx, "u1")
	if err != nil || byID.Email != user.Email {
		t.Fatalf("get by id: %+v %v", byID, err)
	}
	if _, err := repo.GetByID(ctx, "u2"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody@techmart.test"); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}
}
