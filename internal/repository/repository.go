// Package repository defines the storage gateway: the only code that touches
// persistent state. Implementations live in the sqlite, postgres and memory
// subpackages; everything above this layer depends on these interfaces only.
package repository

import (
	"context"

	"github.com/sakif/kudos-board/internal/model"
)

// UserRepository reads and reconciles users.
type UserRepository interface {
	// GetUser returns the user with the given id, or (nil, nil) when no such
	// user exists. A miss is not an error; the caller decides what it means.
	GetUser(ctx context.Context, id string) (*model.User, error)

	// ListUsers returns every user, oldest first. The order is stable within
	// a call but carries no other meaning.
	ListUsers(ctx context.Context) ([]model.User, error)

	// UpsertUser inserts the user when the id is unseen and otherwise updates
	// email, names and image and refreshes UpdatedAt. Nil profile fields keep
	// the stored value. On return the struct holds the stored row.
	// Safe to call on every authenticated request.
	UpsertUser(ctx context.Context, user *model.User) error
}

// KudoRepository stores kudos.
//
// No authorization happens here. CreateKudo takes the sender as its own
// argument so that the identity is always an explicit decision of the caller.
type KudoRepository interface {
	// CreateKudo inserts a kudo from fromUserID and returns the stored row
	// including the assigned id and creation time. A sender or recipient that
	// does not exist violates the foreign key and returns an error.
	CreateKudo(ctx context.Context, fromUserID string, in model.NewKudo) (*model.Kudo, error)

	// ListKudos returns all visible kudos joined with both users, newest
	// first. Hidden kudos are never returned.
	ListKudos(ctx context.Context) ([]model.KudoWithUser, error)

	// HideKudo marks the kudo hidden. Hiding an already hidden kudo or an id
	// that does not exist is a no-op, not an error.
	HideKudo(ctx context.Context, id int64) error
}

// Store is a complete storage gateway with a lifecycle.
type Store interface {
	UserRepository
	KudoRepository

	// Ping checks the backing database is reachable (used by /health).
	Ping(ctx context.Context) error
	Close() error
}
