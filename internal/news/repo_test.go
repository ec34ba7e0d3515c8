//go:build integration_test || all_tests

package news

import (
	"context"
	"testing"
	"time"

	"github.com/2beens/crossfield/internal/db"
	"github.com/2beens/crossfield/pkg"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepoSetup(t *testing.T) *Repo {
	t.Helper()
	dbPool := db.NewTestPool(t)
	_, err := dbPool.Exec(context.Background(), `DELETE FROM news`)
	require.NoError(t, err)
	return NewRepo(dbPool)
}

func fakeItem(published bool, publishedAt time.Time) *Item {
	title := gofakeit.Sentence(4)
	return &Item{
		Title:       title,
		Slug:        pkg.Slugify(title + " " + gofakeit.UUID()),
		Body:        gofakeit.Paragraph(1, 3, 10, " "),
		Published:   published,
		PublishedAt: publishedAt,
	}
}

func TestRepo_Add_ListPublished(t *testing.T) {
	ctx := context.Background()
	repo := testRepoSetup(t)

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, repo.Add(ctx, fakeItem(false, now)))
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Add(ctx, fakeItem(true, now.Add(-time.Duration(i+1)*24*time.Hour))))
	}

	published, err := repo.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 3)
	for i := 1; i < len(published); i++ {
		assert.True(t, published[i-1].PublishedAt.After(published[i].PublishedAt))
	}

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	got, err := repo.GetPublishedBySlug(ctx, published[0].Slug)
	require.NoError(t, err)
	assert.Equal(t, published[0].ID, got.ID)

	dup := fakeItem(true, now)
	dup.Slug = got.Slug
	assert.ErrorIs(t, repo.Add(ctx, dup), ErrSlugTaken)
}

func TestRepo_Update_Delete(t *testing.T) {
	ctx := context.Background()
	repo := testRepoSetup(t)

	item := fakeItem(true, time.Now())
	require.NoError(t, repo.Add(ctx, item))

	summary := "a summary"
	item.Summary = &summary
	item.Published = false
	require.NoError(t, repo.Update(ctx, item))

	got, err := repo.Get(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Summary)
	assert.Equal(t, summary, *got.Summary)
	assert.False(t, got.Published)

	_, err = repo.GetPublishedBySlug(ctx, item.Slug)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, item.ID))
	assert.ErrorIs(t, repo.Delete(ctx, item.ID), ErrNotFound)
	_, err = repo.Get(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
