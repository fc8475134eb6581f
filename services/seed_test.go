package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/tournament-api/db/dbtest"
	"github.com/Dosada05/tournament-api/models"
	"github.com/Dosada05/tournament-api/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedFillsEmptyDatabaseOnce(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)
	store := repositories.NewSQLStore(conn)
	users := repositories.NewSQLUserRepository(conn)
	tokens, err := NewTokenIssuer(testJWT)
	require.NoError(t, err)
	auth := NewAuthService(users, tokens, nil).(*authService)
	auth.hashCost = bcrypt.MinCost

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	opts := SeedOptions{AdminPassword: "admin-secret", Now: func() time.Time { return now }}

	require.NoError(t, Seed(ctx, store, auth, opts, nil))
	require.NoError(t, Seed(ctx, store, auth, opts, nil))

	tournaments := NewTournamentService(store, nil, nil, nil)
	page, err := tournaments.GetAll(ctx, QueryParameters{PageNumber: 1, PageSize: 10, IncludeGames: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.Metadata.TotalCount)

	games := 0
	for i, item := range page.Items {
		assert.True(t, now.AddDate(0, 0, i).Equal(item.StartDate), "start date %v", item.StartDate)
		games += len(item.Games)
	}
	assert.Equal(t, 7, games)
	assert.Equal(t, "Tournament 1", page.Items[0].Title)
	assert.Len(t, page.Items[0].Games, 3)

	admin, err := users.GetByUserName(ctx, SeedAdminUserName)
	require.NoError(t, err)
	assert.True(t, admin.HasRole(models.RoleAdmin))
	assert.True(t, admin.HasRole(models.RoleUser))

	_, err = auth.Login(ctx, LoginInput{UserName: SeedAdminUserName, Password: "admin-secret"})
	require.NoError(t, err)
}

func TestSeedWithoutAdminPassword(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)
	users := repositories.NewSQLUserRepository(conn)

	require.NoError(t, Seed(ctx, repositories.NewSQLStore(conn), nil, SeedOptions{}, nil))

	_, err := users.GetByUserName(ctx, SeedAdminUserName)
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}
