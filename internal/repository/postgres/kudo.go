package postgres

import (
	"context"
	"fmt"

	"github.com/sakif/kudos-board/internal/model"
)

// CreateKudo inserts a visible kudo; gorm fills the BIGSERIAL id from
// the RETURNING clause.
func (db *DB) CreateKudo(ctx context.Context, fromUserID string, in model.NewKudo) (*model.Kudo, error) {
	k := &model.Kudo{
		FromUserID: fromUserID,
		ToUserID:   in.ToUserID,
		Message:    in.Message,
		Category:   in.Category,
		CreatedAt:  now(),
	}

	if err := db.gdb.WithContext(ctx).Create(k).Error; err != nil {
		return nil, fmt.Errorf("postgres: inserting kudo: %w", err)
	}

	return k, nil
}

// ListKudos returns visible kudos, newest first, with both users preloaded.
//
// PRELOAD vs JOIN:
// Preload runs one extra "WHERE id IN (...)" query per association instead
// of a double self-join, and gorm stitches the users back onto each row.
func (db *DB) ListKudos(ctx context.Context) ([]model.KudoWithUser, error) {
	kudos := []model.KudoWithUser{}

	err := db.gdb.WithContext(ctx).
		Preload("FromUser").
		Preload("ToUser").
		Where("hidden = ?", false).
		Order("created_at DESC, id DESC").
		Find(&kudos).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: listing kudos: %w", err)
	}

	return kudos, nil
}

// HideKudo flags the kudo hidden. An unknown id updates zero rows and is
// not an error.
func (db *DB) HideKudo(ctx context.Context, id int64) error {
	err := db.gdb.WithContext(ctx).
		Model(&model.Kudo{}).
		Where("id = ?", id).
		Update("hidden", true).Error
	if err != nil {
		return fmt.Errorf("postgres: hiding kudo %d: %w", id, err)
	}
	return nil
}
