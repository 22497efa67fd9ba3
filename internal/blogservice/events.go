package blogservice

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/yushengtzou/yushengtzou.github.io/internal/common"
)

// publishPostPublished announces a newly visible post. Broker failures are logged only.
func (s *PostService) publishPostPublished(ctx context.Context, p *Post) {
	if s.mb == nil {
		return
	}

	data, err := json.Marshal(PostPublishedEvent{
		ID:      p.ID,
		Title:   p.Title,
		Slug:    p.Slug,
		Excerpt: p.Excerpt,
	})
	if err != nil {
		s.logger.Error("failed to encode post published event", slog.Int64("id", p.ID), slog.String("error", err.Error()))
		return
	}

	if err := s.mb.Publish(ctx, data, common.PostPublishedKey, common.PostExchange); err != nil {
		s.logger.Error("failed to publish post published event", slog.Int64("id", p.ID), slog.String("error", err.Error()))
	}
}
