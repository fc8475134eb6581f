package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-api/models"
	"github.com/jmoiron/sqlx"
)

// SQLExecutor is satisfied by both *sqlx.DB and *sqlx.Tx.
type SQLExecutor interface {
	sqlx.ExtContext
}

// UnitOfWork stages Tournament and Game mutations and writes them in a
// single transaction on Complete. Nothing touches the database before that.
type UnitOfWork interface {
	Tournaments() TournamentRepository
	Games() GameRepository
	HasChanges() bool
	Complete(ctx context.Context) (int, error)
}

// UnitOfWorkFactory hands out a fresh UnitOfWork per logical request.
type UnitOfWorkFactory interface {
	New() UnitOfWork
}

type sqlStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) UnitOfWorkFactory {
	return &sqlStore{db: db}
}

func (s *sqlStore) New() UnitOfWork {
	u := &sqlUnitOfWork{
		db:          s.db,
		tournaments: newChangeTracker(tournamentID, tournamentsEqual),
		games:       newChangeTracker(gameID, gamesEqual),
		now:         time.Now,
	}
	u.tournamentRepo = &sqlTournamentRepository{uow: u}
	u.gameRepo = &sqlGameRepository{uow: u}
	return u
}

type sqlUnitOfWork struct {
	db          *sqlx.DB
	tournaments *changeTracker[models.Tournament]
	games       *changeTracker[models.Game]
	now         func() time.Time

	tournamentRepo *sqlTournamentRepository
	gameRepo       *sqlGameRepository
}

func (u *sqlUnitOfWork) Tournaments() TournamentRepository { return u.tournamentRepo }
func (u *sqlUnitOfWork) Games() GameRepository             { return u.gameRepo }

func (u *sqlUnitOfWork) HasChanges() bool {
	return u.tournaments.hasChanges() || u.games.hasChanges()
}

// Complete writes inserts, then updates, then deletes. Updates and deletes are
// guarded by the version read earlier; a guarded statement that touches no
// row aborts the whole transaction with ErrConcurrencyConflict. In-memory ids
// and versions are only refreshed once the commit succeeded.
func (u *sqlUnitOfWork) Complete(ctx context.Context) (int, error) {
	tAdded, tModified, tDeleted := u.tournaments.pending()
	gAdded, gModified, gDeleted := u.games.pending()
	if len(tAdded)+len(tModified)+len(tDeleted)+len(gAdded)+len(gModified)+len(gDeleted) == 0 {
		return 0, nil
	}

	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		affected int
		apply    []func()
	)
	stamp := u.now().UTC()

	for _, t := range tAdded {
		n, fns, err := insertTournament(ctx, tx, t, stamp)
		if err != nil {
			return 0, err
		}
		affected += n
		apply = append(apply, fns...)
	}
	for _, g := range gAdded {
		fn, err := insertGame(ctx, tx, g.TournamentID, g)
		if err != nil {
			return 0, err
		}
		affected++
		apply = append(apply, fn)
	}
	for _, t := range tModified {
		if err := updateTournament(ctx, tx, t); err != nil {
			return 0, err
		}
		affected++
		apply = append(apply, bumpVersion(&t.Version))
	}
	for _, g := range gModified {
		if err := updateGame(ctx, tx, g); err != nil {
			return 0, err
		}
		affected++
		apply = append(apply, bumpVersion(&g.Version))
	}
	for _, g := range gDeleted {
		if err := deleteVersioned(ctx, tx, "games", g.ID, g.Version); err != nil {
			return 0, err
		}
		affected++
	}
	for _, t := range tDeleted {
		if err := deleteVersioned(ctx, tx, "tournaments", t.ID, t.Version); err != nil {
			return 0, err
		}
		affected++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	for _, fn := range apply {
		fn()
	}
	u.tournaments.accept()
	u.games.accept()
	return affected, nil
}

func bumpVersion(v *int64) func() {
	return func() { *v++ }
}

func insertTournament(ctx context.Context, exec SQLExecutor, t *models.Tournament, createdAt time.Time) (int, []func(), error) {
	query := exec.Rebind(`
		INSERT INTO tournaments (title, start_date, logo_key, version, created_at)
		VALUES (?, ?, ?, 1, ?)
		RETURNING id`)

	var id int
	if err := exec.QueryRowxContext(ctx, query, t.Title, t.StartDate.UTC(), t.LogoKey, createdAt).Scan(&id); err != nil {
		return 0, nil, fmt.Errorf("failed to insert tournament: %w", err)
	}

	affected := 1
	apply := []func(){func() {
		t.ID = id
		t.Version = 1
		t.CreatedAt = createdAt
	}}
	for i := range t.Games {
		fn, err := insertGame(ctx, exec, id, &t.Games[i])
		if err != nil {
			return 0, nil, err
		}
		affected++
		apply = append(apply, fn)
	}
	return affected, apply, nil
}

func insertGame(ctx context.Context, exec SQLExecutor, tournamentID int, g *models.Game) (func(), error) {
	query := exec.Rebind(`
		INSERT INTO games (title, game_time, tournament_id, version)
		VALUES (?, ?, ?, 1)
		RETURNING id`)

	var id int
	if err := exec.QueryRowxContext(ctx, query, g.Title, g.Time.UTC(), tournamentID).Scan(&id); err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrTournamentReference
		}
		return nil, fmt.Errorf("failed to insert game: %w", err)
	}
	return func() {
		g.ID = id
		g.TournamentID = tournamentID
		g.Version = 1
	}, nil
}

func updateTournament(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	query := exec.Rebind(`
		UPDATE tournaments SET
			title = ?,
			start_date = ?,
			logo_key = ?,
			version = version + 1
		WHERE id = ? AND version = ?`)

	result, err := exec.ExecContext(ctx, query, t.Title, t.StartDate.UTC(), t.LogoKey, t.ID, t.Version)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d: %w", t.ID, err)
	}
	return checkAffectedRows(result, ErrConcurrencyConflict)
}

func updateGame(ctx context.Context, exec SQLExecutor, g *models.Game) error {
	query := exec.Rebind(`
		UPDATE games SET
			title = ?,
			game_time = ?,
			tournament_id = ?,
			version = version + 1
		WHERE id = ? AND version = ?`)

	result, err := exec.ExecContext(ctx, query, g.Title, g.Time.UTC(), g.TournamentID, g.ID, g.Version)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrTournamentReference
		}
		return fmt.Errorf("failed to update game %d: %w", g.ID, err)
	}
	return checkAffectedRows(result, ErrConcurrencyConflict)
}

// deleteVersioned only accepts a fixed table name from this package.
func deleteVersioned(ctx context.Context, exec SQLExecutor, table string, id int, version int64) error {
	query := exec.Rebind("DELETE FROM " + table + " WHERE id = ? AND version = ?")
	result, err := exec.ExecContext(ctx, query, id, version)
	if err != nil {
		return fmt.Errorf("failed to delete from %s id %d: %w", table, id, err)
	}
	return checkAffectedRows(result, ErrConcurrencyConflict)
}

func countByID(ctx context.Context, exec SQLExecutor, table string, id int) (bool, error) {
	var n int
	query := exec.Rebind("SELECT COUNT(1) FROM " + table + " WHERE id = ?")
	if err := sqlx.GetContext(ctx, exec, &n, query, id); err != nil {
		return false, fmt.Errorf("failed to check %s id %d: %w", table, id, err)
	}
	return n > 0, nil
}

func tournamentID(t *models.Tournament) int { return t.ID }
func gameID(g *models.Game) int             { return g.ID }

func tournamentsEqual(a, b *models.Tournament) bool {
	return a.Title == b.Title && a.StartDate.Equal(b.StartDate) && equalStringPtr(a.LogoKey, b.LogoKey)
}

func gamesEqual(a, b *models.Game) bool {
	return a.Title == b.Title && a.Time.Equal(b.Time) && a.TournamentID == b.TournamentID
}
