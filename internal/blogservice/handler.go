package blogservice

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/yushengtzou/yushengtzou.github.io/internal/common"
)

// NewPostService returns a service backed by store. mb may be nil, in which case no events are published.
func NewPostService(store Store, c *common.Cache, mb common.MessageProducer, logger *slog.Logger, author string) *PostService {
	if author == "" {
		author = DefaultAuthor
	}

	return &PostService{
		store:  store,
		c:      c,
		mb:     mb,
		logger: logger,
		author: author,
		now:    time.Now,
	}
}

// ListPosts returns published posts, newest first. The category filter is exact; an empty
// category or "All" disables it. The limit is applied after sorting.
func (s *PostService) ListPosts(ctx context.Context, f ListFilter) ([]Post, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(all))
	for _, p := range all {
		if !p.Published {
			continue
		}
		if f.Category != "" && f.Category != AllCategories && p.Category != f.Category {
			continue
		}
		posts = append(posts, p)
	}

	slices.SortStableFunc(posts, func(a, b Post) int {
		return b.Date.Compare(a.Date)
	})

	if f.Limit != nil && *f.Limit >= 0 && *f.Limit < len(posts) {
		posts = posts[:*f.Limit]
	}

	return posts, nil
}

// GetPostBySlug returns the first published post with slug.
func (s *PostService) GetPostBySlug(ctx context.Context, slug string) (*Post, error) {
	return s.store.GetPublishedBySlug(ctx, slug)
}

func (s *PostService) GetPostByID(ctx context.Context, id int64) (*Post, error) {
	return s.store.Get(ctx, id)
}

// ListCategories returns the distinct categories of every post in first-occurrence order.
func (s *PostService) ListCategories(ctx context.Context) ([]string, error) {
	posts, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	categories := []string{}
	for _, p := range posts {
		if !slices.Contains(categories, p.Category) {
			categories = append(categories, p.Category)
		}
	}

	return categories, nil
}

// CreatePost validates req, derives slug, excerpt and read time and stores the post at the front.
func (s *PostService) CreatePost(ctx context.Context, req *CreatePostRequest) (*Post, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	excerpt := req.Excerpt
	if strings.TrimSpace(excerpt) == "" {
		excerpt = Excerpt(req.Content)
	}

	category := req.Category
	if strings.TrimSpace(category) == "" {
		category = DefaultCategory
	}

	published := true
	if req.Published != nil {
		published = *req.Published
	}

	post := &Post{
		Title:     req.Title,
		Slug:      Slugify(req.Title),
		Excerpt:   excerpt,
		Content:   req.Content,
		Date:      truncateTime(s.now()),
		Category:  category,
		ReadTime:  ReadTime(req.Content),
		Published: published,
		Author:    s.author,
		Image:     req.Image,
	}

	if err := s.store.Insert(ctx, post); err != nil {
		return nil, err
	}

	if post.Published {
		s.publishPostPublished(ctx, post)
	}

	return post, nil
}

// UpdatePost applies the present, non-blank fields of req to the post with id.
// A new title recomputes the slug and new content recomputes the read time.
func (s *PostService) UpdatePost(ctx context.Context, id int64, req *UpdatePostRequest) (*Post, error) {
	var wasPublished bool

	post, err := s.store.Update(ctx, id, func(p *Post) {
		wasPublished = p.Published

		if present(req.Title) {
			p.Title = *req.Title
			p.Slug = Slugify(*req.Title)
		}
		if present(req.Content) {
			p.Content = *req.Content
			p.ReadTime = ReadTime(*req.Content)
		}
		if present(req.Excerpt) {
			p.Excerpt = *req.Excerpt
		}
		if present(req.Category) {
			p.Category = *req.Category
		}
		if req.Published != nil {
			p.Published = *req.Published
		}
		if present(req.Image) {
			p.Image = *req.Image
		}
	})
	if err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyPostHTML(id))

	if !wasPublished && post.Published {
		s.publishPostPublished(ctx, post)
	}

	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyPostHTML(id))
	return nil
}

// RenderContent returns the post content as HTML, cached per post id.
func (s *PostService) RenderContent(p *Post) string {
	key := common.CacheKeyPostHTML(p.ID)
	if v, ok := s.c.Get(key); ok {
		if html, ok := v.(string); ok {
			return html
		}
	}

	html := renderMarkdown(p.Content)
	s.c.Set(key, html)
	return html
}

func present(s *string) bool {
	return s != nil && *s != ""
}
