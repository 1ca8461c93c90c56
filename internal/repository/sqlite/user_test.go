package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/kudos-board/internal/model"
)

// TESTING WITH IN-MEMORY SQLITE:
// ":memory:" creates a fresh database that exists only during the test.
// Each test gets its own isolated copy and it disappears when closed.
//
// t.Helper() makes failures point at the caller's line, not this function.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser upserts a user with a full profile and fails the test on error.
func createTestUser(t *testing.T, db *DB, id, first, last string) *model.User {
	t.Helper()
	user := &model.User{
		ID:        id,
		Email:     model.StringPtr(id + "@example.com"),
		FirstName: model.StringPtr(first),
		LastName:  model.StringPtr(last),
	}
	if err := db.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// UPSERT TESTS
// =========================================================================

func TestUpsertUser_NewUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		ID:    "idp|alice",
		Email: model.StringPtr("alice@example.com"),
	}
	if err := db.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}

	if user.CreatedAt.IsZero() {
		t.Error("UpsertUser() did not set CreatedAt")
	}
	if user.UpdatedAt.IsZero() {
		t.Error("UpsertUser() did not set UpdatedAt")
	}
	if user.FirstName != nil {
		t.Errorf("FirstName = %q, want nil", *user.FirstName)
	}

	found, err := db.GetUser(context.Background(), "idp|alice")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if found == nil {
		t.Fatal("GetUser() returned nil after upsert")
	}
	if found.Email == nil || *found.Email != "alice@example.com" {
		t.Errorf("Email = %v, want alice@example.com", found.Email)
	}
}

func TestUpsertUser_ExistingUser_UpdatesProfile(t *testing.T) {
	db := newTestDB(t)
	first := createTestUser(t, db, "u1", "Old", "Name")

	second := &model.User{
		ID:              "u1",
		Email:           model.StringPtr("new@example.com"),
		FirstName:       model.StringPtr("New"),
		ProfileImageURL: model.StringPtr("https://example.com/a.png"),
	}
	if err := db.UpsertUser(context.Background(), second); err != nil {
		t.Fatalf("UpsertUser() second: %v", err)
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("UpsertUser() changed CreatedAt: got %v, want %v", second.CreatedAt, first.CreatedAt)
	}
	if second.UpdatedAt.Before(first.UpdatedAt) {
		t.Errorf("UpdatedAt went backwards: %v < %v", second.UpdatedAt, first.UpdatedAt)
	}
	if got := *second.Email; got != "new@example.com" {
		t.Errorf("Email = %q, want new@example.com", got)
	}
	if got := *second.FirstName; got != "New" {
		t.Errorf("FirstName = %q, want New", got)
	}
	if second.ProfileImageURL == nil {
		t.Error("ProfileImageURL not stored")
	}

	users, err := db.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 1 {
		t.Errorf("ListUsers() returned %d users, want 1 (upsert must not duplicate)", len(users))
	}
}

func TestUpsertUser_NilFieldsKeepStoredValues(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "u1", "Alice", "Engineer")

	// A token without name claims must not wipe the stored names.
	bare := &model.User{ID: "u1"}
	if err := db.UpsertUser(context.Background(), bare); err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}

	if bare.FirstName == nil || *bare.FirstName != "Alice" {
		t.Errorf("FirstName = %v, want Alice", bare.FirstName)
	}
	if bare.LastName == nil || *bare.LastName != "Engineer" {
		t.Errorf("LastName = %v, want Engineer", bare.LastName)
	}
	if bare.Email == nil || *bare.Email != "u1@example.com" {
		t.Errorf("Email = %v, want u1@example.com", bare.Email)
	}
}

// =========================================================================
// GET / LIST TESTS
// =========================================================================

func TestGetUser_NotFound(t *testing.T) {
	db := newTestDB(t)

	user, err := db.GetUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetUser() error = %v, want nil", err)
	}
	if user != nil {
		t.Errorf("GetUser() = %+v, want nil", user)
	}
}

func TestListUsers_Empty(t *testing.T) {
	db := newTestDB(t)

	users, err := db.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if users == nil {
		t.Error("ListUsers() returned nil, want empty slice")
	}
	if len(users) != 0 {
		t.Errorf("ListUsers() returned %d users, want 0", len(users))
	}
}

func TestListUsers_ReturnsAll(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "seed_1", "Alice", "Engineer")
	createTestUser(t, db, "seed_2", "Bob", "Designer")

	users, err := db.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("ListUsers() returned %d users, want 2", len(users))
	}
	if users[0].ID != "seed_1" || users[1].ID != "seed_2" {
		t.Errorf("ListUsers() order = [%s %s], want [seed_1 seed_2]", users[0].ID, users[1].ID)
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
