package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-api/models"
	"github.com/Dosada05/tournament-api/repositories"
)

const (
	seedTournamentCount = 3
	seedGameCount       = 7

	SeedAdminUserName = "admin@test.email"
)

// SeedOptions configures development seeding. An empty AdminPassword skips
// the admin account.
type SeedOptions struct {
	AdminPassword string
	Now           func() time.Time
}

// Seed fills an empty database with sample tournaments and games and creates
// the admin account. Both steps are skipped when their data already exists.
func Seed(ctx context.Context, store repositories.UnitOfWorkFactory, auth AuthService, opts SeedOptions, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	seeded, err := seedTournaments(ctx, store, opts.Now().UTC())
	if err != nil {
		return err
	}
	if seeded > 0 {
		logger.InfoContext(ctx, "seeded tournaments", slog.Int("tournaments", seeded), slog.Int("games", seedGameCount))
	} else {
		logger.InfoContext(ctx, "tournaments already present, seeding skipped")
	}

	if opts.AdminPassword == "" {
		return nil
	}
	created, err := seedAdmin(ctx, auth, opts.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		logger.InfoContext(ctx, "seeded admin user", slog.String("user_name", SeedAdminUserName))
	}
	return nil
}

func seedTournaments(ctx context.Context, store repositories.UnitOfWorkFactory, now time.Time) (int, error) {
	uow := store.New()
	_, total, err := uow.Tournaments().GetPaged(ctx, repositories.TournamentFilter{}, 1, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing tournaments: %w", err)
	}
	if total > 0 {
		return 0, nil
	}

	tournaments := make([]*models.Tournament, seedTournamentCount)
	for i := range tournaments {
		tournaments[i] = &models.Tournament{
			Title:     fmt.Sprintf("Tournament %d", i+1),
			StartDate: now.AddDate(0, 0, i),
		}
	}
	// Игры раскладываются по турнирам по кругу.
	for i := 0; i < seedGameCount; i++ {
		t := tournaments[i%seedTournamentCount]
		t.Games = append(t.Games, models.Game{
			Title: fmt.Sprintf("Game %d", i+1),
			Time:  t.StartDate.Add(time.Duration(i) * time.Hour),
		})
	}
	for _, t := range tournaments {
		uow.Tournaments().Add(t)
	}

	if _, err := uow.Complete(ctx); err != nil {
		return 0, fmt.Errorf("failed to seed tournaments: %w", err)
	}
	return len(tournaments), nil
}

func seedAdmin(ctx context.Context, auth AuthService, password string) (bool, error) {
	position := "Admin in Development"
	_, err := auth.Register(ctx, RegisterInput{
		UserName: SeedAdminUserName,
		Name:     "Admin",
		Age:      20,
		Position: &position,
		Email:    SeedAdminUserName,
		Password: password,
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) && svcErr.Kind == KindConflict {
			return false, nil
		}
		return false, fmt.Errorf("failed to seed admin user: %w", err)
	}

	if _, err := auth.ManageAdmin(ctx, ManageAdminInput{UserName: SeedAdminUserName, IsAdmin: true}); err != nil {
		return false, fmt.Errorf("failed to grant admin role: %w", err)
	}
	return true, nil
}
