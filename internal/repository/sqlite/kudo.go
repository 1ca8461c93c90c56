package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/kudos-board/internal/model"
)

// CreateKudo inserts a visible kudo from fromUserID.
//
// Both user ids are foreign keys. Inserting a kudo for a user that does not
// exist fails with a constraint error, returned wrapped like any other
// storage failure.
func (db *DB) CreateKudo(ctx context.Context, fromUserID string, in model.NewKudo) (*model.Kudo, error) {
	k := &model.Kudo{
		FromUserID: fromUserID,
		ToUserID:   in.ToUserID,
		Message:    in.Message,
		Category:   in.Category,
		Hidden:     false,
		CreatedAt:  now(),
	}

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO kudos (from_user_id, to_user_id, message, category, hidden, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		k.FromUserID,
		k.ToUserID,
		k.Message,
		string(k.Category),
		k.Hidden,
		k.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting kudo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading kudo id: %w", err)
	}
	k.ID = id

	return k, nil
}

// ListKudos returns the feed: visible kudos with both users, newest first.
//
// JOIN + ALIASES:
// The users table is joined twice, once per side of the kudo. The aliases
// "f" (from) and "t" (to) keep the two copies apart. An INNER JOIN is safe
// because the foreign keys guarantee both users exist.
//
// The id tiebreak keeps the order total when two kudos share a timestamp.
func (db *DB) ListKudos(ctx context.Context) ([]model.KudoWithUser, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT k.id, k.from_user_id, k.to_user_id, k.message, k.category, k.hidden, k.created_at,
		       f.id, f.email, f.first_name, f.last_name, f.profile_image_url, f.created_at, f.updated_at,
		       t.id, t.email, t.first_name, t.last_name, t.profile_image_url, t.created_at, t.updated_at
		FROM kudos k
		JOIN users f ON f.id = k.from_user_id
		JOIN users t ON t.id = k.to_user_id
		WHERE k.hidden = 0
		ORDER BY k.created_at DESC, k.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing kudos: %w", err)
	}
	defer rows.Close()

	kudos := []model.KudoWithUser{}
	for rows.Next() {
		var (
			kw       model.KudoWithUser
			category string
		)
		err := rows.Scan(
			&kw.ID, &kw.FromUserID, &kw.ToUserID, &kw.Message, &category, &kw.Hidden, &kw.CreatedAt,
			&kw.FromUser.ID, &kw.FromUser.Email, &kw.FromUser.FirstName, &kw.FromUser.LastName,
			&kw.FromUser.ProfileImageURL, &kw.FromUser.CreatedAt, &kw.FromUser.UpdatedAt,
			&kw.ToUser.ID, &kw.ToUser.Email, &kw.ToUser.FirstName, &kw.ToUser.LastName,
			&kw.ToUser.ProfileImageURL, &kw.ToUser.CreatedAt, &kw.ToUser.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning kudo row: %w", err)
		}
		kw.Category = model.Category(category)
		kudos = append(kudos, kw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating kudos: %w", err)
	}

	return kudos, nil
}

// HideKudo sets hidden=1. Zero affected rows (unknown id) is not an error.
func (db *DB) HideKudo(ctx context.Context, id int64) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE kudos SET hidden = 1 WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: hiding kudo %d: %w", id, err)
	}
	return nil
}
