package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/inkwell/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func TestParsePage(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{raw: "", want: 1},
		{raw: "abc", want: 1},
		{raw: "2", want: 2},
		{raw: " 3 ", want: 3},
		{raw: "0", want: 1},
		{raw: "-4", want: 1},
		{raw: "1.5", want: 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.raw), func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePage(tt.raw))
		})
	}
}

func TestPostService_ListPublishedExcludesDrafts(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	seedPost(t, gdb, "draft", db.StatusDraft, baseTime)
	seedPost(t, gdb, "older", db.StatusPublished, baseTime.Add(-time.Hour))
	seedPost(t, gdb, "newer", db.StatusPublished, baseTime)

	list, err := svc.ListPublished(context.Background(), PostFilter{Page: 1})
	require.NoError(t, err)

	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, 1, list.TotalPages)
	assert.Equal(t, []string{"newer", "older"}, postSlugs(list.Posts))
}

func TestPostService_ListPublishedPaginatesByThree(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	for i := 0; i < 7; i++ {
		seedPost(t, gdb, fmt.Sprintf("post-%d", i), db.StatusPublished, baseTime.Add(time.Duration(i)*time.Hour))
	}

	first, err := svc.ListPublished(context.Background(), PostFilter{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, PostsPerPage, first.PerPage)
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, []string{"post-6", "post-5", "post-4"}, postSlugs(first.Posts))
	assert.False(t, first.HasPrevious())
	assert.True(t, first.HasNext())

	last, err := svc.ListPublished(context.Background(), PostFilter{Page: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"post-0"}, postSlugs(last.Posts))
	assert.True(t, last.HasPrevious())
	assert.False(t, last.HasNext())
}

func TestPostService_ListPublishedClampsOutOfRangePage(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	for i := 0; i < 4; i++ {
		seedPost(t, gdb, fmt.Sprintf("post-%d", i), db.StatusPublished, baseTime.Add(time.Duration(i)*time.Hour))
	}

	list, err := svc.ListPublished(context.Background(), PostFilter{Page: 99})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page)
	assert.Equal(t, []string{"post-0"}, postSlugs(list.Posts))
}

func TestPostService_ListPublishedEmpty(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	list, err := svc.ListPublished(context.Background(), PostFilter{Page: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 1, list.TotalPages)
	assert.Empty(t, list.Posts)
}

func TestPostService_ListPublishedByTag(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	golang := seedTag(t, gdb, "go")
	rust := seedTag(t, gdb, "rust")

	seedPost(t, gdb, "go-1", db.StatusPublished, baseTime, golang)
	seedPost(t, gdb, "go-2", db.StatusPublished, baseTime.Add(time.Hour), golang, rust)
	seedPost(t, gdb, "go-draft", db.StatusDraft, baseTime, golang)
	seedPost(t, gdb, "rust-1", db.StatusPublished, baseTime, rust)

	list, err := svc.ListPublished(context.Background(), PostFilter{TagID: golang.ID, Page: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, []string{"go-2", "go-1"}, postSlugs(list.Posts))
	require.Len(t, list.Posts[0].Tags, 2)
}

func TestPostService_GetPublishedByDate(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	publish := time.Date(2024, 1, 2, 23, 30, 0, 0, time.UTC)
	seedPost(t, gdb, "hello", db.StatusPublished, publish)
	seedPost(t, gdb, "hidden", db.StatusDraft, publish)
	seedPost(t, gdb, "hello", db.StatusPublished, publish.AddDate(0, 0, 1))

	post, err := svc.GetPublishedByDate(context.Background(), 2024, 1, 2, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", post.Slug)
	assert.True(t, post.Publish.Equal(publish))

	cases := []struct {
		name             string
		year, month, day int
		slug             string
	}{
		{name: "draft", year: 2024, month: 1, day: 2, slug: "hidden"},
		{name: "wrong day", year: 2024, month: 1, day: 4, slug: "hello"},
		{name: "unknown slug", year: 2024, month: 1, day: 2, slug: "missing"},
		{name: "impossible date", year: 2024, month: 2, day: 31, slug: "hello"},
		{name: "month out of range", year: 2024, month: 13, day: 2, slug: "hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GetPublishedByDate(context.Background(), tc.year, tc.month, tc.day, tc.slug)
			assert.ErrorIs(t, err, ErrPostNotFound)
		})
	}
}

func TestPostService_GetPublished(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	published := seedPost(t, gdb, "live", db.StatusPublished, baseTime)
	draft := seedPost(t, gdb, "draft", db.StatusDraft, baseTime)

	got, err := svc.GetPublished(context.Background(), published.ID)
	require.NoError(t, err)
	assert.Equal(t, published.ID, got.ID)

	_, err = svc.GetPublished(context.Background(), draft.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = svc.GetPublished(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostService_SimilarRanksBySharedTags(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	a := seedTag(t, gdb, "a")
	b := seedTag(t, gdb, "b")
	c := seedTag(t, gdb, "c")

	p := seedPost(t, gdb, "p", db.StatusPublished, baseTime, a, b)
	seedPost(t, gdb, "q1", db.StatusPublished, baseTime.Add(2*time.Hour), a)
	seedPost(t, gdb, "q2", db.StatusPublished, baseTime.Add(-time.Hour), a, b)
	seedPost(t, gdb, "q3", db.StatusPublished, baseTime, c)
	seedPost(t, gdb, "q4-draft", db.StatusDraft, baseTime, a, b)

	similar, err := svc.Similar(context.Background(), &p, SimilarPostsLimit)
	require.NoError(t, err)

	assert.Equal(t, []string{"q2", "q1"}, postSlugs(similar))
	assert.Equal(t, int64(2), similar[0].SharedTags)
	assert.Equal(t, int64(1), similar[1].SharedTags)
}

func TestPostService_SimilarBreaksTiesByRecencyAndCaps(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	a := seedTag(t, gdb, "a")
	p := seedPost(t, gdb, "p", db.StatusPublished, baseTime, a)
	for i := 0; i < 6; i++ {
		seedPost(t, gdb, fmt.Sprintf("r%d", i), db.StatusPublished, baseTime.Add(time.Duration(i)*time.Hour), a)
	}

	similar, err := svc.Similar(context.Background(), &p, SimilarPostsLimit)
	require.NoError(t, err)
	assert.Equal(t, []string{"r5", "r4", "r3", "r2"}, postSlugs(similar))
}

func TestPostService_SimilarWithoutTags(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewPostService(gdb)

	p := seedPost(t, gdb, "lonely", db.StatusPublished, baseTime)
	similar, err := svc.Similar(context.Background(), &p, SimilarPostsLimit)
	require.NoError(t, err)
	assert.Empty(t, similar)
}
