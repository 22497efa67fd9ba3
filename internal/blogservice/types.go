package blogservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/yushengtzou/yushengtzou.github.io/internal/common"
)

type Post struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Excerpt string `json:"excerpt"`
	// Content is stored in Markdown format.
	Content   string    `json:"content"`
	Date      time.Time `json:"date"`
	Category  string    `json:"category"`
	ReadTime  string    `json:"readTime"`
	Published bool      `json:"published"`
	Author    string    `json:"author"`
	// Image is the public path of an uploaded file, e.g. /uploads/image-1700000000000-42.png.
	Image string `json:"image,omitempty"`
}

// Store owns every post record. List returns posts in storage order, most recently created first.
type Store interface {
	List(ctx context.Context) ([]Post, error)
	Get(ctx context.Context, id int64) (*Post, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*Post, error)
	Insert(ctx context.Context, post *Post) error
	Update(ctx context.Context, id int64, fn func(*Post)) (*Post, error)
	Delete(ctx context.Context, id int64) error
	Close() error
}

type PostService struct {
	store  Store
	c      *common.Cache
	mb     common.MessageProducer
	logger *slog.Logger
	author string
	now    func() time.Time
}

type ListFilter struct {
	Category string
	// Limit truncates the sorted result when set.
	Limit *int
}

// CreatePostRequest holds the fields of a new post. A nil Published means published.
type CreatePostRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Excerpt   string `json:"excerpt"`
	Category  string `json:"category"`
	Published *bool  `json:"published"`
	Image     string `json:"-"`
}

// UpdatePostRequest carries the fields present in an update. Nil fields are left untouched.
type UpdatePostRequest struct {
	Title     *string
	Content   *string
	Excerpt   *string
	Category  *string
	Published *bool
	Image     *string
}

type PostPublishedEvent struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Excerpt string `json:"excerpt"`
}
