package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Dosada05/tournament-api/db/dbtest"
	"github.com/Dosada05/tournament-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

func seedTournament(t *testing.T, store UnitOfWorkFactory, title string, games ...string) *models.Tournament {
	t.Helper()
	tournament := &models.Tournament{Title: title, StartDate: start}
	for i, g := range games {
		tournament.Games = append(tournament.Games, models.Game{Title: g, Time: start.Add(time.Duration(i) * time.Hour)})
	}
	uow := store.New()
	uow.Tournaments().Add(tournament)
	_, err := uow.Complete(context.Background())
	require.NoError(t, err)
	return tournament
}

func TestCompleteInsertsTournamentWithGames(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(dbtest.Open(t))

	uow := store.New()
	tournament := &models.Tournament{
		Title:     "Spring Cup",
		StartDate: start,
		Games: []models.Game{
			{Title: "Opening", Time: start},
			{Title: "Final", Time: start.Add(48 * time.Hour)},
		},
	}
	uow.Tournaments().Add(tournament)
	assert.True(t, uow.HasChanges())
	assert.Zero(t, tournament.ID, "ids are assigned only after commit")

	n, err := uow.Complete(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NotZero(t, tournament.ID)
	assert.EqualValues(t, 1, tournament.Version)
	for _, g := range tournament.Games {
		assert.NotZero(t, g.ID)
		assert.Equal(t, tournament.ID, g.TournamentID)
	}
	assert.False(t, uow.HasChanges())

	loaded, err := store.New().Tournaments().FindByID(ctx, tournament.ID, true, false)
	require.NoError(t, err)
	assert.Equal(t, "Spring Cup", loaded.Title)
	assert.True(t, start.Equal(loaded.StartDate))
	require.Len(t, loaded.Games, 2)
	assert.Equal(t, "Opening", loaded.Games[0].Title)
	assert.Equal(t, "Final", loaded.Games[1].Title)
}

func TestCompleteWithoutChangesIsNoop(t *testing.T) {
	store := NewSQLStore(dbtest.Open(t))

	n, err := store.New().Complete(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHasChangesTracksOnlyTrackedReads(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(dbtest.Open(t))
	seeded := seedTournament(t, store, "Cup")

	uow := store.New()
	detached, err := uow.Tournaments().FindByID(ctx, seeded.ID, false, false)
	require.NoError(t, err)
	detached.Title = "changed"
	assert.False(t, uow.HasChanges(), "untracked reads never produce changes")

	tracked, err := uow.Tournaments().FindByID(ctx, seeded.ID, false, true)
	require.NoError(t, err)
	assert.False(t, uow.HasChanges())

	tracked.Title = "Cup" // same value
	assert.False(t, uow.HasChanges())

	tracked.Title = "Renamed"
	assert.True(t, uow.HasChanges())

	again, err := uow.Tournaments().FindByID(ctx, seeded.ID, false, true)
	require.NoError(t, err)
	assert.Same(t, tracked, again, "tracked reads share one instance per id")

	n, err := uow.Complete(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.EqualValues(t, 2, tracked.Version)

	loaded, err := store.New().Tournaments().FindByID(ctx, seeded.ID, false, false)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", loaded.Title)
}

func TestCompleteDetectsConcurrentUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(dbtest.Open(t))
	seeded := seedTournament(t, store, "Original")

	first, second := store.New(), store.New()
	a, err := first.Tournaments().FindByID(ctx, seeded.ID, false, true)
	require.NoError(t, err)
	b, err := second.Tournaments().FindByID(ctx, seeded.ID, false, true)
	require.NoError(t, err)

	a.Title = "First writer"
	b.Title = "Second writer"

	_, err = first.Complete(ctx)
	require.NoError(t, err)

	_, err = second.Complete(ctx)
	require.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.EqualValues(t, 1, b.Version, "failed commit leaves versions untouched")

	loaded, err := store.New().Tournaments().FindByID(ctx, seeded.ID, false, false)
	require.NoError(t, err)
	assert.Equal(t, "First writer", loaded.Title)
}

func TestCompleteDetectsConcurrentDelete(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(dbtest.Open(t))
	seeded := seedTournament(t, store, "Doomed", "g1")
	gameID := seeded.Games[0].ID

	deleter, updater := store.New(), store.New()
	game, err := updater.Games().FindByID(ctx, gameID, true)
	require.NoError(t, err)

	toDelete, err := deleter.Tournaments().FindByID(ctx, seeded.ID, false, true)
	require.NoError(t, err)
	deleter.Tournaments().Remove(toDelete)
	_, err = deleter.Complete(ctx)
	require.NoError(t, err)

	game.Title = "too late"
	_, err = updater.Complete(ctx)
	require.ErrorIs(t, err, ErrConcurrencyConflict)

	exists, err := store.New().Games().Any(ctx, gameID)
	require.NoError(t, err)
	assert.False(t, exists, "games are removed together with their tournament")
}

func TestCompleteRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)
	store := NewSQLStore(database)

	uow := store.New()
	tournament := &models.Tournament{Title: "Never stored", StartDate: start}
	uow.Tournaments().Add(tournament)
	uow.Games().Add(&models.Game{Title: "orphan", Time: start, TournamentID: 9999})

	_, err := uow.Complete(ctx)
	require.ErrorIs(t, err, ErrTournamentReference)
	assert.Zero(t, tournament.ID)

	var count int
	require.NoError(t, database.Get(&count, `SELECT COUNT(1) FROM tournaments`))
	assert.Zero(t, count)
}

func TestRemoveStagedAddCancelsInsert(t *testing.T) {
	store := NewSQLStore(dbtest.Open(t))

	uow := store.New()
	tournament := &models.Tournament{Title: "Draft", StartDate: start}
	uow.Tournaments().Add(tournament)
	uow.Tournaments().Remove(tournament)
	assert.False(t, uow.HasChanges())
}

func TestFindByIDNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(dbtest.Open(t))
	uow := store.New()

	_, err := uow.Tournaments().FindByID(ctx, 42, false, false)
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	_, err = uow.Games().FindByID(ctx, 42, false)
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestTournamentGetPaged(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(dbtest.Open(t))
	for _, title := range []string{"Delta Open", "alpha cup", "Charlie Masters", "Bravo Cup", "100%_Cup"} {
		seedTournament(t, store, title, "game")
	}
	repo := store.New().Tournaments()

	items, total, err := repo.GetPaged(ctx, TournamentFilter{}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Delta Open", items[0].Title, "default order is insertion order")
	assert.Nil(t, items[0].Games)

	items, total, err = repo.GetPaged(ctx, TournamentFilter{SearchTerm: "CUP", OrderBy: "Title"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	var titles []string
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"100%_Cup", "Bravo Cup", "alpha cup"}, titles)

	items, total, err = repo.GetPaged(ctx, TournamentFilter{SearchTerm: "%_"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total, "LIKE wildcards in the term are literal")
	assert.Equal(t, "100%_Cup", items[0].Title)

	items, _, err = repo.GetPaged(ctx, TournamentFilter{OrderBy: "unknown", IncludeGames: true}, 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, "Delta Open", items[0].Title, "unknown ordering keeps the default order")
	for _, it := range items {
		assert.Len(t, it.Games, 1)
	}

	items, total, err = repo.GetPaged(ctx, TournamentFilter{}, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestGamePagedAndByTitle(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(dbtest.Open(t))
	first := seedTournament(t, store, "First", "Semi", "Final", "Quarter")
	seedTournament(t, store, "Second", "Final")
	repo := store.New().Games()

	items, total, err := repo.GetPaged(ctx, GameFilter{TournamentID: first.ID, OrderBy: "title"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, "Final", items[0].Title)
	assert.Equal(t, "Quarter", items[1].Title)
	assert.Equal(t, "Semi", items[2].Title)

	items, total, err = repo.GetPaged(ctx, GameFilter{TournamentID: first.ID, OrderBy: "time"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, "Semi", items[0].Title)

	items, total, err = repo.GetPaged(ctx, GameFilter{TournamentID: first.ID, SearchTerm: "fin"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, first.Games[1].ID, items[0].ID)

	game, err := repo.FindByTitle(ctx, first.ID, "Final")
	require.NoError(t, err)
	assert.Equal(t, first.ID, game.TournamentID)

	_, err = repo.FindByTitle(ctx, first.ID, "final")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestGameUpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	store := NewSQLStore(dbtest.Open(t))
	seeded := seedTournament(t, store, "Cup", "Match 1", "Match 2")

	uow := store.New()
	game, err := uow.Games().FindByID(ctx, seeded.Games[0].ID, true)
	require.NoError(t, err)
	game.Time = start.Add(72 * time.Hour)
	uow.Games().Update(game)

	other, err := uow.Games().FindByID(ctx, seeded.Games[1].ID, true)
	require.NoError(t, err)
	uow.Games().Remove(other)

	n, err := uow.Complete(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, total, err := store.New().Games().GetPaged(ctx, GameFilter{TournamentID: seeded.ID}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.True(t, start.Add(72*time.Hour).Equal(items[0].Time))
}

func TestLikePattern(t *testing.T) {
	cases := map[string]string{
		"Cup":    "%cup%",
		"50%":    `%50\%%`,
		"a_b":    `%a\_b%`,
		`back\s`: `%back\\s%`,
	}
	for in, want := range cases {
		t.Run(fmt.Sprintf("%q", in), func(t *testing.T) {
			assert.Equal(t, want, likePattern(in))
		})
	}
}
