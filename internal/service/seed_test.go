package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/kudos-board/internal/model"
)

func TestSeedDemoUsers_EmptyTable(t *testing.T) {
	store := newFakeStore()

	n, err := SeedDemoUsers(context.Background(), store, discardLogger())
	if err != nil {
		t.Fatalf("SeedDemoUsers() error = %v", err)
	}
	if n != 2 {
		t.Errorf("seeded %d users, want 2", n)
	}

	alice := store.users["seed_1"]
	if got := alice.DisplayName(); got != "Alice Engineer" {
		t.Errorf("seed_1 DisplayName() = %q, want Alice Engineer", got)
	}
	bob := store.users["seed_2"]
	if bob.Email == nil || *bob.Email != "bob@example.com" {
		t.Errorf("seed_2 Email = %v, want bob@example.com", bob.Email)
	}
}

func TestSeedDemoUsers_PopulatedTableUntouched(t *testing.T) {
	store := newFakeStore()
	store.users["someone"] = model.User{ID: "someone"}

	n, err := SeedDemoUsers(context.Background(), store, discardLogger())
	if err != nil {
		t.Fatalf("SeedDemoUsers() error = %v", err)
	}
	if n != 0 || len(store.users) != 1 {
		t.Errorf("seeded %d users into a populated table (now %d users)", n, len(store.users))
	}
}

func TestSeedDemoUsers_Errors(t *testing.T) {
	store := newFakeStore()
	store.listUsersErr = errDBDown
	if _, err := SeedDemoUsers(context.Background(), store, discardLogger()); !errors.Is(err, errDBDown) {
		t.Errorf("list failure: error = %v, want errDBDown", err)
	}

	store = newFakeStore()
	store.upsertErr = errDBDown
	if _, err := SeedDemoUsers(context.Background(), store, discardLogger()); !errors.Is(err, errDBDown) {
		t.Errorf("upsert failure: error = %v, want errDBDown", err)
	}
}
