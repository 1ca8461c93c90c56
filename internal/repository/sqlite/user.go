package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/kudos-board/internal/model"
)

const userColumns = `id, email, first_name, last_name, profile_image_url, created_at, updated_at`

// UpsertUser inserts or updates a user keyed by the identity provider's id.
//
// ON CONFLICT DO UPDATE:
// One atomic statement does both paths, so two concurrent first requests for
// the same id can never produce two rows; SQLite resolves the race.
//
// COALESCE(excluded.x, users.x) keeps the stored value when the new value is
// NULL. A session token without a name claim must not erase a known name.
//
// RETURNING hands back the canonical row (original created_at included) in
// the same round trip.
func (db *DB) UpsertUser(ctx context.Context, user *model.User) error {
	ts := now()

	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email             = COALESCE(excluded.email, users.email),
		   first_name        = COALESCE(excluded.first_name, users.first_name),
		   last_name         = COALESCE(excluded.last_name, users.last_name),
		   profile_image_url = COALESCE(excluded.profile_image_url, users.profile_image_url),
		   updated_at        = excluded.updated_at
		 RETURNING `+userColumns,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.ProfileImageURL,
		ts,
		ts,
	)

	if err := scanUser(row, user); err != nil {
		return fmt.Errorf("sqlite: upserting user %s: %w", user.ID, err)
	}
	return nil
}

// GetUser retrieves a user by id. Returns (nil, nil) when there is none.
func (db *DB) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`,
		id,
	)
	if err := scanUser(row, &u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &u, nil
}

// ListUsers returns every user ordered by creation time.
func (db *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanUser reads userColumns, in order, into u.
// The optional columns scan into *string fields: NULL becomes nil.
func scanUser(s scanner, u *model.User) error {
	return s.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.ProfileImageURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}
