package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/tournament-api/models"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// TournamentFilter is the whole query handed to GetPaged: WHERE, ORDER and
// the optional eager load of games are applied in one step.
type TournamentFilter struct {
	SearchTerm   string
	OrderBy      string
	IncludeGames bool
}

type TournamentRepository interface {
	Any(ctx context.Context, id int) (bool, error)
	FindByID(ctx context.Context, id int, includeGames, trackChanges bool) (*models.Tournament, error)
	GetPaged(ctx context.Context, filter TournamentFilter, pageNumber, pageSize int) ([]models.Tournament, int, error)
	Add(tournament *models.Tournament)
	Update(tournament *models.Tournament)
	Remove(tournament *models.Tournament)
}

type sqlTournamentRepository struct {
	uow *sqlUnitOfWork
}

const tournamentColumns = `id, title, start_date, logo_key, version, created_at`

var tournamentOrderings = map[string]string{
	"title":     "title",
	"startdate": "start_date",
}

func (r *sqlTournamentRepository) Any(ctx context.Context, id int) (bool, error) {
	return countByID(ctx, r.uow.db, "tournaments", id)
}

func (r *sqlTournamentRepository) FindByID(ctx context.Context, id int, includeGames, trackChanges bool) (*models.Tournament, error) {
	if trackChanges {
		if t, ok := r.uow.tournaments.lookup(id); ok {
			if includeGames && t.Games == nil {
				if err := r.loadGames(ctx, []*models.Tournament{t}); err != nil {
					return nil, err
				}
			}
			return t, nil
		}
	}

	db := r.uow.db
	query := db.Rebind(`SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = ?`)

	t := &models.Tournament{}
	if err := db.GetContext(ctx, t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}

	if includeGames {
		if err := r.loadGames(ctx, []*models.Tournament{t}); err != nil {
			return nil, err
		}
	}
	if trackChanges {
		return r.uow.tournaments.attach(t), nil
	}
	return t, nil
}

func (r *sqlTournamentRepository) GetPaged(ctx context.Context, filter TournamentFilter, pageNumber, pageSize int) ([]models.Tournament, int, error) {
	db := r.uow.db

	where := ""
	var args []interface{}
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		where = ` WHERE LOWER(title) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(term))
	}

	order := " ORDER BY id"
	if col, ok := tournamentOrderings[strings.ToLower(strings.TrimSpace(filter.OrderBy))]; ok {
		order = " ORDER BY " + col + ", id"
	}

	countQuery := db.Rebind(`SELECT COUNT(1) FROM tournaments` + where)
	pageQuery := db.Rebind(`SELECT ` + tournamentColumns + ` FROM tournaments` + where + order + ` LIMIT ? OFFSET ?`)
	pageArgs := append(append([]interface{}{}, args...), pageSize, pageOffset(pageNumber, pageSize))

	var (
		total       int
		tournaments []models.Tournament
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := db.GetContext(gctx, &total, countQuery, args...); err != nil {
			return fmt.Errorf("failed to count tournaments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := db.SelectContext(gctx, &tournaments, pageQuery, pageArgs...); err != nil {
			return fmt.Errorf("failed to list tournaments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if tournaments == nil {
		tournaments = make([]models.Tournament, 0)
	}
	if filter.IncludeGames && len(tournaments) > 0 {
		ptrs := make([]*models.Tournament, len(tournaments))
		for i := range tournaments {
			ptrs[i] = &tournaments[i]
		}
		if err := r.loadGames(ctx, ptrs); err != nil {
			return nil, 0, err
		}
	}
	return tournaments, total, nil
}

// loadGames fills Games for every tournament with a single IN query.
// Loaded games are detached; mutate them through the Games repository.
func (r *sqlTournamentRepository) loadGames(ctx context.Context, tournaments []*models.Tournament) error {
	ids := make([]int, len(tournaments))
	byID := make(map[int]*models.Tournament, len(tournaments))
	for i, t := range tournaments {
		ids[i] = t.ID
		byID[t.ID] = t
		t.Games = make([]models.Game, 0)
	}

	query, args, err := sqlx.In(`SELECT `+gameColumns+` FROM games WHERE tournament_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("failed to build games query: %w", err)
	}
	db := r.uow.db
	var games []models.Game
	if err := db.SelectContext(ctx, &games, db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load games: %w", err)
	}
	for _, g := range games {
		if t, ok := byID[g.TournamentID]; ok {
			t.Games = append(t.Games, g)
		}
	}
	return nil
}

func (r *sqlTournamentRepository) Add(t *models.Tournament)    { r.uow.tournaments.add(t) }
func (r *sqlTournamentRepository) Update(t *models.Tournament) { r.uow.tournaments.markModified(t) }
func (r *sqlTournamentRepository) Remove(t *models.Tournament) { r.uow.tournaments.markDeleted(t) }
