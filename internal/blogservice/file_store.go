package blogservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
)

// FileStore keeps every post in memory and rewrites the whole JSON data file after each mutation.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	order  []int64
	posts  map[int64]*Post
	nextID int64
}

// NewFileStore loads the data file at path. Any failure to read it falls back to SeedPosts.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	s := &FileStore{
		path:   path,
		logger: logger,
		posts:  make(map[int64]*Post),
		nextID: 1,
	}
	s.load()
	return s
}

func (s *FileStore) load() {
	posts, err := ReadPostsFile(s.path)
	if err != nil {
		s.logger.Info("no existing blog posts file found, using default posts", slog.String("path", s.path), slog.String("error", err.Error()))
		posts = SeedPosts()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range posts {
		p := posts[i]
		if _, ok := s.posts[p.ID]; ok {
			s.logger.Warn("skipping post with duplicate id", slog.Int64("id", p.ID), slog.String("title", p.Title))
			continue
		}
		s.posts[p.ID] = &p
		s.order = append(s.order, p.ID)
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}
}

func (s *FileStore) List(ctx context.Context) ([]Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked(), nil
}

func (s *FileStore) Get(ctx context.Context, id int64) (*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	post := *p
	return &post, nil
}

// GetPublishedBySlug returns the first published post in storage order with the given slug.
func (s *FileStore) GetPublishedBySlug(ctx context.Context, slug string) (*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		p := s.posts[id]
		if p.Slug == slug && p.Published {
			post := *p
			return &post, nil
		}
	}

	return nil, ErrRecordNotFound
}

// Insert assigns the next id to post and places it at the front of the sequence.
func (s *FileStore) Insert(ctx context.Context, post *Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = s.nextID
	s.nextID++

	p := *post
	s.posts[p.ID] = &p
	s.order = slices.Insert(s.order, 0, p.ID)

	s.saveLocked()
	return nil
}

func (s *FileStore) Update(ctx context.Context, id int64, fn func(*Post)) (*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	updated := *p
	fn(&updated)
	updated.ID = id
	s.posts[id] = &updated

	s.saveLocked()

	post := updated
	return &post, nil
}

func (s *FileStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.order, id)
	if i < 0 {
		return ErrRecordNotFound
	}

	s.order = slices.Delete(s.order, i, i+1)
	delete(s.posts, id)

	s.saveLocked()
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) snapshotLocked() []Post {
	posts := make([]Post, 0, len(s.order))
	for _, id := range s.order {
		posts = append(posts, *s.posts[id])
	}
	return posts
}

// saveLocked flushes the full sequence to disk. Failures are logged and the in-memory state is kept.
func (s *FileStore) saveLocked() {
	data, err := json.MarshalIndent(s.snapshotLocked(), "", "  ")
	if err != nil {
		s.logger.Error("failed to encode blog posts", slog.String("error", err.Error()))
		return
	}
	data = append(data, '\n')

	if err := atomicWriteFile(s.path, data, 0o644); err != nil {
		s.logger.Error("failed to save blog posts", slog.String("path", s.path), slog.String("error", err.Error()))
	}
}
