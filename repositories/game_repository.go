package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/tournament-api/models"
	"golang.org/x/sync/errgroup"
)

type GameFilter struct {
	TournamentID int
	SearchTerm   string
	OrderBy      string
}

type GameRepository interface {
	Any(ctx context.Context, id int) (bool, error)
	FindByID(ctx context.Context, id int, trackChanges bool) (*models.Game, error)
	FindByTitle(ctx context.Context, tournamentID int, title string) (*models.Game, error)
	GetPaged(ctx context.Context, filter GameFilter, pageNumber, pageSize int) ([]models.Game, int, error)
	Add(game *models.Game)
	Update(game *models.Game)
	Remove(game *models.Game)
}

type sqlGameRepository struct {
	uow *sqlUnitOfWork
}

const gameColumns = `id, title, game_time, tournament_id, version`

var gameOrderings = map[string]string{
	"title": "title",
	"time":  "game_time",
}

func (r *sqlGameRepository) Any(ctx context.Context, id int) (bool, error) {
	return countByID(ctx, r.uow.db, "games", id)
}

func (r *sqlGameRepository) FindByID(ctx context.Context, id int, trackChanges bool) (*models.Game, error) {
	if trackChanges {
		if g, ok := r.uow.games.lookup(id); ok {
			return g, nil
		}
	}

	db := r.uow.db
	g := &models.Game{}
	if err := db.GetContext(ctx, g, db.Rebind(`SELECT `+gameColumns+` FROM games WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %d: %w", id, err)
	}
	if trackChanges {
		return r.uow.games.attach(g), nil
	}
	return g, nil
}

// FindByTitle is an exact, case-sensitive match; the lowest id wins when
// titles repeat.
func (r *sqlGameRepository) FindByTitle(ctx context.Context, tournamentID int, title string) (*models.Game, error) {
	db := r.uow.db
	query := db.Rebind(`SELECT ` + gameColumns + ` FROM games WHERE tournament_id = ? AND title = ? ORDER BY id LIMIT 1`)

	g := &models.Game{}
	if err := db.GetContext(ctx, g, query, tournamentID, title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %q: %w", title, err)
	}
	return g, nil
}

func (r *sqlGameRepository) GetPaged(ctx context.Context, filter GameFilter, pageNumber, pageSize int) ([]models.Game, int, error) {
	db := r.uow.db

	where := ` WHERE tournament_id = ?`
	args := []interface{}{filter.TournamentID}
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		where += ` AND LOWER(title) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(term))
	}

	order := " ORDER BY id"
	if col, ok := gameOrderings[strings.ToLower(strings.TrimSpace(filter.OrderBy))]; ok {
		order = " ORDER BY " + col + ", id"
	}

	countQuery := db.Rebind(`SELECT COUNT(1) FROM games` + where)
	pageQuery := db.Rebind(`SELECT ` + gameColumns + ` FROM games` + where + order + ` LIMIT ? OFFSET ?`)
	pageArgs := append(append([]interface{}{}, args...), pageSize, pageOffset(pageNumber, pageSize))

	var (
		total int
		games []models.Game
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := db.GetContext(gctx, &total, countQuery, args...); err != nil {
			return fmt.Errorf("failed to count games: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := db.SelectContext(gctx, &games, pageQuery, pageArgs...); err != nil {
			return fmt.Errorf("failed to list games: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if games == nil {
		games = make([]models.Game, 0)
	}
	return games, total, nil
}

func (r *sqlGameRepository) Add(g *models.Game)    { r.uow.games.add(g) }
func (r *sqlGameRepository) Update(g *models.Game) { r.uow.games.markModified(g) }
func (r *sqlGameRepository) Remove(g *models.Game) { r.uow.games.markDeleted(g) }
