package blogservice

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yushengtzou/yushengtzou.github.io/internal/common"
)

var fixedNow = time.Date(2025, time.March, 1, 10, 30, 0, 123456789, time.UTC)

func setupTestService(t *testing.T, mb common.MessageProducer) (*PostService, *FileStore) {
	t.Helper()

	store := NewFileStore(filepath.Join(t.TempDir(), "blog-posts.json"), discardLogger())
	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	s := NewPostService(store, cache, mb, discardLogger(), "")
	s.now = func() time.Time { return fixedNow }

	return s, store
}

func intPtr(n int) *int { return &n }
func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }

func TestCreatePost(t *testing.T) {
	testCases := []struct {
		name    string
		req     *CreatePostRequest
		wantErr map[string]string
	}{
		{
			name: "valid",
			req:  &CreatePostRequest{Title: "Hello World", Content: "Body"},
		},
		{
			name:    "missing title",
			req:     &CreatePostRequest{Content: "Body"},
			wantErr: map[string]string{"title": "must be provided"},
		},
		{
			name:    "blank content",
			req:     &CreatePostRequest{Title: "Title", Content: "   "},
			wantErr: map[string]string{"content": "must be provided"},
		},
		{
			name:    "both missing",
			req:     &CreatePostRequest{},
			wantErr: map[string]string{"title": "must be provided", "content": "must be provided"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, store := setupTestService(t, nil)
			before, _ := store.List(context.Background())

			post, err := s.CreatePost(context.Background(), tc.req)
			if tc.wantErr != nil {
				var verr common.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tc.wantErr, verr.Errors)

				after, _ := store.List(context.Background())
				assert.Equal(t, before, after)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, Slugify(tc.req.Title), post.Slug)
			assert.Equal(t, DefaultCategory, post.Category)
			assert.Equal(t, DefaultAuthor, post.Author)
			assert.True(t, post.Published)
			assert.Equal(t, fixedNow.Truncate(time.Millisecond), post.Date)
		})
	}
}

func TestCreatePostHelloWorld(t *testing.T) {
	s, _ := setupTestService(t, nil)
	ctx := context.Background()

	content := strings.TrimSpace(strings.Repeat("lorem ", 250))
	post, err := s.CreatePost(ctx, &CreatePostRequest{Title: "Hello World", Content: content})
	require.NoError(t, err)

	assert.Equal(t, "hello-world", post.Slug)
	assert.Equal(t, "2 min read", post.ReadTime)
	assert.True(t, post.Published)
	assert.Equal(t, Excerpt(content), post.Excerpt)

	posts, err := s.ListPosts(ctx, ListFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, posts)
	assert.Equal(t, post.ID, posts[0].ID)
}

func TestCreatePostKeepsGivenExcerptAndCategory(t *testing.T) {
	s, _ := setupTestService(t, nil)

	post, err := s.CreatePost(context.Background(), &CreatePostRequest{
		Title:    "Notes",
		Content:  "Body",
		Excerpt:  "Custom",
		Category: "Research",
		Image:    "/uploads/image-1-2.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "Custom", post.Excerpt)
	assert.Equal(t, "Research", post.Category)
	assert.Equal(t, "/uploads/image-1-2.png", post.Image)
}

func TestListPosts(t *testing.T) {
	ctx := context.Background()
	s, store := setupTestService(t, nil)

	draft := &Post{Title: "Draft", Slug: "draft", Category: "Career", Published: false, Date: fixedNow}
	require.NoError(t, store.Insert(ctx, draft))

	testCases := []struct {
		name    string
		filter  ListFilter
		wantIDs []int64
	}{
		{name: "all published by date", filter: ListFilter{}, wantIDs: []int64{1, 2, 3}},
		{name: "All category", filter: ListFilter{Category: AllCategories}, wantIDs: []int64{1, 2, 3}},
		{name: "exact category", filter: ListFilter{Category: "Career"}, wantIDs: []int64{2}},
		{name: "category is case sensitive", filter: ListFilter{Category: "career"}, wantIDs: []int64{}},
		{name: "limit after sort", filter: ListFilter{Limit: intPtr(2)}, wantIDs: []int64{1, 2}},
		{name: "limit zero", filter: ListFilter{Limit: intPtr(0)}, wantIDs: []int64{}},
		{name: "limit beyond length", filter: ListFilter{Limit: intPtr(10)}, wantIDs: []int64{1, 2, 3}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			posts, err := s.ListPosts(ctx, tc.filter)
			require.NoError(t, err)

			ids := []int64{}
			for _, p := range posts {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestListPostsSortsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, store := setupTestService(t, nil)

	old := &Post{Title: "Old", Slug: "old", Category: "General", Published: true, Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, store.Insert(ctx, old))

	posts, err := s.ListPosts(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, posts, 4)

	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].Date.After(posts[i-1].Date))
	}
	assert.Equal(t, old.ID, posts[3].ID)
}

func TestGetPostBySlug(t *testing.T) {
	ctx := context.Background()
	s, _ := setupTestService(t, nil)

	post, err := s.GetPostBySlug(ctx, "difficulty-and-ease")
	require.NoError(t, err)
	assert.Equal(t, int64(1), post.ID)

	_, err = s.GetPostBySlug(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestListCategories(t *testing.T) {
	ctx := context.Background()
	s, store := setupTestService(t, nil)

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Philosophy", "Career", "Programming"}, categories)

	draft := &Post{Title: "Draft", Category: "Drafts", Published: false}
	require.NoError(t, store.Insert(ctx, draft))
	again := &Post{Title: "More", Category: "Career", Published: true}
	require.NoError(t, store.Insert(ctx, again))

	categories, err = s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Career", "Drafts", "Philosophy", "Programming"}, categories)
}

func TestUpdatePost(t *testing.T) {
	longContent := strings.TrimSpace(strings.Repeat("word ", 450))

	testCases := []struct {
		name  string
		req   *UpdatePostRequest
		check func(t *testing.T, before, after *Post)
	}{
		{
			name: "title recomputes slug",
			req:  &UpdatePostRequest{Title: strPtr("A New Title!")},
			check: func(t *testing.T, before, after *Post) {
				assert.Equal(t, "A New Title!", after.Title)
				assert.Equal(t, "a-new-title", after.Slug)
				assert.Equal(t, before.Content, after.Content)
			},
		},
		{
			name: "content recomputes read time",
			req:  &UpdatePostRequest{Content: &longContent},
			check: func(t *testing.T, before, after *Post) {
				assert.Equal(t, longContent, after.Content)
				assert.Equal(t, "3 min read", after.ReadTime)
				assert.Equal(t, before.Excerpt, after.Excerpt)
			},
		},
		{
			name: "only published leaves the rest",
			req:  &UpdatePostRequest{Published: boolPtr(false)},
			check: func(t *testing.T, before, after *Post) {
				assert.False(t, after.Published)
				assert.Equal(t, before.Title, after.Title)
				assert.Equal(t, before.Slug, after.Slug)
				assert.Equal(t, before.Content, after.Content)
				assert.Equal(t, before.ReadTime, after.ReadTime)
			},
		},
		{
			name: "empty strings are ignored",
			req:  &UpdatePostRequest{Title: strPtr(""), Category: strPtr("")},
			check: func(t *testing.T, before, after *Post) {
				assert.Equal(t, before, after)
			},
		},
		{
			name: "excerpt category and image",
			req:  &UpdatePostRequest{Excerpt: strPtr("short"), Category: strPtr("Life"), Image: strPtr("/uploads/x.png")},
			check: func(t *testing.T, before, after *Post) {
				assert.Equal(t, "short", after.Excerpt)
				assert.Equal(t, "Life", after.Category)
				assert.Equal(t, "/uploads/x.png", after.Image)
				assert.Equal(t, before.Date, after.Date)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			s, store := setupTestService(t, nil)

			before, err := store.Get(ctx, 1)
			require.NoError(t, err)

			after, err := s.UpdatePost(ctx, 1, tc.req)
			require.NoError(t, err)
			assert.Equal(t, int64(1), after.ID)
			tc.check(t, before, after)

			stored, err := store.Get(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, after, stored)
		})
	}
}

func TestUpdatePostNotFound(t *testing.T) {
	s, _ := setupTestService(t, nil)

	_, err := s.UpdatePost(context.Background(), 42, &UpdatePostRequest{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	s, store := setupTestService(t, nil)

	before, err := store.List(ctx)
	require.NoError(t, err)

	err = s.DeletePost(ctx, 99)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	after, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	post, err := s.CreatePost(ctx, &CreatePostRequest{Title: "Temporary", Content: "gone soon"})
	require.NoError(t, err)
	require.NoError(t, s.DeletePost(ctx, post.ID))

	_, err = s.GetPostBySlug(ctx, "temporary")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRenderContentCache(t *testing.T) {
	ctx := context.Background()
	s, _ := setupTestService(t, nil)

	post, err := s.CreatePost(ctx, &CreatePostRequest{Title: "Markdown", Content: "# One"})
	require.NoError(t, err)
	assert.Contains(t, s.RenderContent(post), "<h1>One</h1>")

	updated, err := s.UpdatePost(ctx, post.ID, &UpdatePostRequest{Content: strPtr("# Two")})
	require.NoError(t, err)
	assert.Contains(t, s.RenderContent(updated), "<h1>Two</h1>")
}

func TestPostPublishedEvents(t *testing.T) {
	ctx := context.Background()
	mb := new(MockMessageProducer)
	s, _ := setupTestService(t, mb)

	mb.On("Publish", mock.Anything, mock.MatchedBy(func(msg []byte) bool {
		var ev PostPublishedEvent
		return json.Unmarshal(msg, &ev) == nil && ev.Slug == "announced"
	}), common.PostPublishedKey, common.PostExchange).Return(nil).Once()

	post, err := s.CreatePost(ctx, &CreatePostRequest{Title: "Announced", Content: "news"})
	require.NoError(t, err)

	_, err = s.UpdatePost(ctx, post.ID, &UpdatePostRequest{Published: boolPtr(false)})
	require.NoError(t, err)

	mb.On("Publish", mock.Anything, mock.Anything, common.PostPublishedKey, common.PostExchange).Return(errors.New("broker down")).Once()

	// A failing broker does not fail the update.
	republished, err := s.UpdatePost(ctx, post.ID, &UpdatePostRequest{Published: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, republished.Published)

	mb.AssertNumberOfCalls(t, "Publish", 2)
}

func TestCreateDraftPost(t *testing.T) {
	ctx := context.Background()
	mb := new(MockMessageProducer)
	s, _ := setupTestService(t, mb)

	draft, err := s.CreatePost(ctx, &CreatePostRequest{Title: "Draft Notes", Content: "not ready", Published: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, draft.Published)

	posts, err := s.ListPosts(ctx, ListFilter{})
	require.NoError(t, err)
	for _, p := range posts {
		assert.NotEqual(t, draft.ID, p.ID)
	}

	_, err = s.GetPostBySlug(ctx, "draft-notes")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	mb.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	mb.On("Publish", mock.Anything, mock.Anything, common.PostPublishedKey, common.PostExchange).Return(nil).Once()

	published, err := s.CreatePost(ctx, &CreatePostRequest{Title: "Ready", Content: "done", Published: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, published.Published)
	mb.AssertNumberOfCalls(t, "Publish", 1)
}
