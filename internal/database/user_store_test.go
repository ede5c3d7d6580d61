package database

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"
)

func TestUserStore(t *testing.T) {
	store := NewUserStore(newTestDB(t))
	ctx := context.Background()

	user, err := store.Create(ctx, "ada", "hash-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, "ada", "hash-2"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("duplicate: %v", err)
	}

	got, err := store.ByUsername(ctx, "ada")
	if err != nil || got.ID != user.ID {
		t.Fatalf("by username: %+v %v", got, err)
	}
	if _, err := store.ByUsername(ctx, "grace"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("missing username: %v", err)
	}

	if err := store.SetPasswordHash(ctx, user.ID, "hash-3"); err != nil {
		t.Fatal(err)
	}
	got, err = store.ByID(ctx, user.ID)
	if err != nil || got.PasswordHash != "hash-3" {
		t.Fatalf("by id: %+v %v", got, err)
	}
	if err := store.SetPasswordHash(ctx, 999, "x"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("missing id: %v", err)
	}
}
