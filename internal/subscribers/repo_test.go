//go:build integration_test || all_tests

package subscribers

import (
	"context"
	"testing"

	"github.com/2beens/crossfield/internal/db"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo(t *testing.T) {
	ctx := context.Background()
	dbPool := db.NewTestPool(t)
	_, err := dbPool.Exec(ctx, `DELETE FROM subscriber`)
	require.NoError(t, err)
	repo := NewRepo(dbPool)

	email := gofakeit.Email()
	exists, err := repo.Exists(ctx, email)
	require.NoError(t, err)
	assert.False(t, exists)

	added, err := repo.Add(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, email, added.Email)

	exists, err = repo.Exists(ctx, email)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.Add(ctx, email)
	assert.ErrorIs(t, err, ErrAlreadySubscribed)

	second, err := repo.Add(ctx, gofakeit.Email())
	require.NoError(t, err)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, added.ID, all[1].ID)
}
