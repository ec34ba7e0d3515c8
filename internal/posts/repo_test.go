//go:build integration_test || all_tests

package posts

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
	_, err := dbPool.Exec(context.Background(), `DELETE FROM post`)
	require.NoError(t, err)
	return NewRepo(dbPool)
}

func fakePost(published bool, createdAt time.Time) *Post {
	title := gofakeit.Sentence(5)
	return &Post{
		Title:     title,
		Slug:      pkg.Slugify(title + " " + gofakeit.UUID()),
		Body:      gofakeit.Paragraph(2, 3, 10, " "),
		Tags:      []string{gofakeit.Word(), gofakeit.Word()},
		Published: published,
		CreatedAt: createdAt,
	}
}

func TestRepo_Add_Get(t *testing.T) {
	ctx := context.Background()
	repo := testRepoSetup(t)

	post := fakePost(true, time.Now().UTC().Truncate(time.Millisecond))
	excerpt := "short excerpt"
	post.Excerpt = &excerpt
	require.NoError(t, repo.Add(ctx, post))
	require.NotEmpty(t, post.ID)

	got, err := repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, got.Title)
	assert.Equal(t, post.Slug, got.Slug)
	assert.Equal(t, post.Tags, got.Tags)
	require.NotNil(t, got.Excerpt)
	assert.Equal(t, excerpt, *got.Excerpt)
	assert.Nil(t, got.ImageURL)
	assert.True(t, post.CreatedAt.Equal(got.CreatedAt))

	bySlug, err := repo.GetPublishedBySlug(ctx, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, post.ID, bySlug.ID)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	dup := fakePost(true, time.Now())
	dup.Slug = post.Slug
	assert.ErrorIs(t, repo.Add(ctx, dup), ErrSlugTaken)
}

func TestRepo_ListPublished_All(t *testing.T) {
	ctx := context.Background()
	repo := testRepoSetup(t)

	now := time.Now().UTC()
	draft := fakePost(false, now)
	require.NoError(t, repo.Add(ctx, draft))
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Add(ctx, fakePost(true, now.Add(-time.Duration(i+1)*time.Hour))))
	}

	published, err := repo.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 3)
	for i, p := range published {
		assert.True(t, p.Published)
		if i > 0 {
			assert.True(t, published[i-1].CreatedAt.After(p.CreatedAt))
		}
	}

	_, err = repo.GetPublishedBySlug(ctx, draft.Slug)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestRepo_Update_Delete(t *testing.T) {
	ctx := context.Background()
	repo := testRepoSetup(t)

	first := fakePost(true, time.Now())
	second := fakePost(true, time.Now())
	require.NoError(t, repo.Add(ctx, first))
	require.NoError(t, repo.Add(ctx, second))

	first.Title = "Updated title"
	first.Slug = "updated-title"
	first.Published = false
	require.NoError(t, repo.Update(ctx, first))

	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated title", got.Title)
	assert.False(t, got.Published)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	first.Slug = second.Slug
	assert.ErrorIs(t, repo.Update(ctx, first), ErrSlugTaken)

	missing := fakePost(true, time.Now())
	missing.ID = "missing"
	assert.ErrorIs(t, repo.Update(ctx, missing), ErrNotFound)

	require.NoError(t, repo.Delete(ctx, second.ID))
	assert.ErrorIs(t, repo.Delete(ctx, second.ID), ErrNotFound)
}
