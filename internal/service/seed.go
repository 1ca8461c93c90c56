package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/kudos-board/internal/model"
	"github.com/sakif/kudos-board/internal/repository"
)

// DemoUsers gives a fresh install somebody to send kudos to.
var DemoUsers = []model.User{
	{
		ID:        "seed_1",
		Email:     model.StringPtr("alice@example.com"),
		FirstName: model.StringPtr("Alice"),
		LastName:  model.StringPtr("Engineer"),
	},
	{
		ID:        "seed_2",
		Email:     model.StringPtr("bob@example.com"),
		FirstName: model.StringPtr("Bob"),
		LastName:  model.StringPtr("Designer"),
	},
}

// SeedDemoUsers inserts DemoUsers when the users table is empty and reports
// how many were written. A populated table is left alone.
func SeedDemoUsers(ctx context.Context, users repository.UserRepository, logger *slog.Logger) (int, error) {
	existing, err := users.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: listing users: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for _, u := range DemoUsers {
		if err := users.UpsertUser(ctx, &u); err != nil {
			return 0, fmt.Errorf("seed: upserting %s: %w", u.ID, err)
		}
	}

	logger.Info("seeded demo users", slog.Int("count", len(DemoUsers)))
	return len(DemoUsers), nil
}
