//go:build integration_test || all_tests

package collaborations

import (
	"context"
	"testing"
	"time"

	"github.com/2beens/crossfield/internal/db"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepoSetup(t *testing.T) *Repo {
	t.Helper()
	dbPool := db.NewTestPool(t)
	_, err := dbPool.Exec(context.Background(), `DELETE FROM collaboration`)
	require.NoError(t, err)
	return NewRepo(dbPool)
}

func fakeCollaboration(status Status, createdAt time.Time) *Collaboration {
	org := gofakeit.Company()
	return &Collaboration{
		Type:         TypeResearch,
		Title:        gofakeit.Sentence(4),
		FullName:     gofakeit.Name(),
		Organization: &org,
		Description:  gofakeit.Paragraph(1, 3, 12, " "),
		Status:       status,
		CreatedAt:    createdAt,
	}
}

func TestRepo_Add_List(t *testing.T) {
	ctx := context.Background()
	repo := testRepoSetup(t)

	now := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < 8; i++ {
		status := StatusPending
		if i%2 == 0 {
			status = StatusApproved
		}
		c := fakeCollaboration(status, now.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Add(ctx, c))
		assert.NotEmpty(t, c.ID)
	}

	needle := fakeCollaboration(StatusApproved, now.Add(-time.Hour))
	needle.Type = TypeStartupCofounder
	needle.Title = "Looking for a 100% committed co-founder"
	require.NoError(t, repo.Add(ctx, needle))

	page1, total, err := repo.List(ctx, ListFilter{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 9, total)
	require.Len(t, page1, PageSize)
	assert.True(t, page1[0].CreatedAt.After(page1[1].CreatedAt))

	page2, _, err := repo.List(ctx, ListFilter{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page2, 3)

	approved, total, err := repo.List(ctx, ListFilter{Page: 1, Status: StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	for _, c := range approved {
		assert.Equal(t, StatusApproved, c.Status)
	}

	found, total, err := repo.List(ctx, ListFilter{Page: 1, Query: "100% COMMITTED"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, needle.ID, found[0].ID)

	byType, total, err := repo.List(ctx, ListFilter{Page: 1, Types: []Type{TypeStartupCofounder, TypeOpenSourceProject}})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, needle.ID, byType[0].ID)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 9)
}

func TestRepo_Update_Delete(t *testing.T) {
	ctx := context.Background()
	repo := testRepoSetup(t)

	c := fakeCollaboration(StatusPending, time.Now())
	require.NoError(t, repo.Add(ctx, c))

	approved := StatusApproved
	link := "https://example.org"
	updated, err := repo.Update(ctx, c.ID, Patch{Status: &approved, Link: &link})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, updated.Status)
	require.NotNil(t, updated.Link)
	assert.Equal(t, link, *updated.Link)
	assert.Equal(t, c.Title, updated.Title)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	_, err = repo.Update(ctx, "missing-id", Patch{Status: &approved})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), ErrNotFound)
}
