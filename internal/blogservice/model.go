package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	ErrRecordNotFound = errors.New("record not found")
)

const postColumns = `id, title, slug, excerpt, content, date, category, read_time, published, author, image`

// PGStore keeps posts in the postgres posts table. Storage order is id DESC.
type PGStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPGStore wraps db and seeds the posts table with seed when it is empty.
func NewPGStore(ctx context.Context, db *sql.DB, seed []Post, logger *slog.Logger) (*PGStore, error) {
	s := &PGStore{db: db, logger: logger}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT count(*) FROM posts`).Scan(&count); err != nil {
		return nil, err
	}

	if count == 0 && len(seed) > 0 {
		if err := s.seed(ctx, seed); err != nil {
			return nil, fmt.Errorf("could not seed posts: %w", err)
		}
		logger.Info("seeded posts table", slog.Int("count", len(seed)))
	}

	return s, nil
}

// seed inserts posts with their existing ids and moves the sequence past the largest one.
func (s *PGStore) seed(ctx context.Context, posts []Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	// Insert oldest first so the slice order survives the id DESC ordering.
	for i := len(posts) - 1; i >= 0; i-- {
		p := posts[i]
		_, err := tx.ExecContext(ctx, query, p.ID, p.Title, p.Slug, p.Excerpt, p.Content, p.Date, p.Category, p.ReadTime, p.Published, p.Author, p.Image)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('posts', 'id'), (SELECT MAX(id) FROM posts))`)
	if err != nil {
		return err
	}

	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Date, &p.Category, &p.ReadTime, &p.Published, &p.Author, &p.Image)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	p.Date = p.Date.UTC()
	return &p, nil
}

func (s *PGStore) List(ctx context.Context) ([]Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

func (s *PGStore) Get(ctx context.Context, id int64) (*Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return scanPost(s.db.QueryRowContext(ctx, query, id))
}

func (s *PGStore) GetPublishedBySlug(ctx context.Context, slug string) (*Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE slug = $1 AND published = true
		ORDER BY id DESC
		LIMIT 1`
	return scanPost(s.db.QueryRowContext(ctx, query, slug))
}

func (s *PGStore) Insert(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posts (title, slug, excerpt, content, date, category, read_time, published, author, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	args := []any{post.Title, post.Slug, post.Excerpt, post.Content, post.Date, post.Category, post.ReadTime, post.Published, post.Author, post.Image}
	return s.db.QueryRowContext(ctx, query, args...).Scan(&post.ID)
}

// Update locks the row, applies fn and writes every column back in one transaction.
func (s *PGStore) Update(ctx context.Context, id int64, fn func(*Post)) (*Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := scanPost(tx.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}

	fn(p)
	p.ID = id

	query := `
		UPDATE posts
		SET title = $1, slug = $2, excerpt = $3, content = $4, date = $5, category = $6,
			read_time = $7, published = $8, author = $9, image = $10
		WHERE id = $11`

	_, err = tx.ExecContext(ctx, query, p.Title, p.Slug, p.Excerpt, p.Content, p.Date, p.Category, p.ReadTime, p.Published, p.Author, p.Image, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *PGStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// Close closes the underlying database handle.
func (s *PGStore) Close() error {
	return s.db.Close()
}

// truncateTime drops sub-millisecond precision so stored and returned dates agree across stores.
func truncateTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
