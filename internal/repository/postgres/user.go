package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sakif/kudos-board/internal/model"
)

// profileUpdates is the DO UPDATE half of the user upsert. A NULL in the
// incoming row keeps the stored value; created_at is never touched.
var profileUpdates = clause.Assignments(map[string]any{
	"email":             gorm.Expr("COALESCE(excluded.email, users.email)"),
	"first_name":        gorm.Expr("COALESCE(excluded.first_name, users.first_name)"),
	"last_name":         gorm.Expr("COALESCE(excluded.last_name, users.last_name)"),
	"profile_image_url": gorm.Expr("COALESCE(excluded.profile_image_url, users.profile_image_url)"),
	"updated_at":        gorm.Expr("excluded.updated_at"),
})

// UpsertUser is INSERT ... ON CONFLICT (id) DO UPDATE, then a read of the
// stored row so the caller sees the original created_at and any kept fields.
func (db *DB) UpsertUser(ctx context.Context, user *model.User) error {
	ts := now()
	user.CreatedAt = ts
	user.UpdatedAt = ts

	err := db.gdb.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: profileUpdates,
		}).
		Create(user).Error
	if err != nil {
		return fmt.Errorf("postgres: upserting user %s: %w", user.ID, err)
	}

	if err := db.gdb.WithContext(ctx).Where("id = ?", user.ID).Take(user).Error; err != nil {
		return fmt.Errorf("postgres: reading upserted user %s: %w", user.ID, err)
	}
	return nil
}

// GetUser retrieves a user by id. Returns (nil, nil) when there is none.
func (db *DB) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := db.gdb.WithContext(ctx).Where("id = ?", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: getting user %s: %w", id, err)
	}

	return &u, nil
}

// ListUsers returns every user ordered by creation time.
func (db *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}

	err := db.gdb.WithContext(ctx).Order("created_at, id").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: listing users: %w", err)
	}

	return users, nil
}
