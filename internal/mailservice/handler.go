package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/yushengtzou/yushengtzou.github.io/internal/common"
	"golang.org/x/exp/rand"
	"golang.org/x/time/rate"
)

// NewMailService returns a service that mails recipients about every post.published message.
func NewMailService(mb common.MessageConsumer, host, username, password, sender string, port int, recipients []string, siteURL string, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:         mb,
		m:          NewMailer(host, port, username, password, sender, NewTemplate()),
		logger:     logger,
		recipients: recipients,
		siteURL:    strings.TrimRight(siteURL, "/"),
		baseDelay:  defaultBaseDelay,
		limiter:    rate.NewLimiter(rate.Every(sendInterval), sendBurst),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// NotifyNewPosts starts consuming post.published messages in the background.
func (s *MailService) NotifyNewPosts() error {
	msgs, err := s.mb.Consume(common.PostPublishedKey, common.PostExchange, common.PostPublishedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var data postPublished
				err := json.Unmarshal(msg.Body, &data)
				if err != nil {
					s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
					_ = msg.Ack(false)
					continue
				}

				payload := newPostData{
					Title:   data.Title,
					Excerpt: data.Excerpt,
					Link:    s.siteURL + "/blog/" + data.Slug,
				}

				for _, recipient := range s.recipients {
					s.sendWithRetry(recipient, payload)
				}

				_ = msg.Ack(false)

			case <-s.ctx.Done():
				s.logger.Info("stopping NotifyNewPosts due to context cancellation")
				return
			}
		}
	}()

	return nil
}

// sendWithRetry uses exponential backoff with jitter and gives up after maxRetries attempts.
// Every attempt waits for the send limiter first.
func (s *MailService) sendWithRetry(recipient string, payload newPostData) bool {
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := s.limiter.Wait(s.ctx); err != nil {
			return false
		}

		err := s.m.send(recipient, payload, newPostTemplate)
		if err == nil {
			s.logger.Info("new post email sent", slog.String("email", recipient))
			return true
		}

		delay := time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt)))
		s.logger.Info("delaying new post email", slog.String("email", recipient), slog.Int("attempt", attempt), slog.Duration("delay", delay), slog.String("error", err.Error()))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			return false
		}
	}

	s.logger.Error("could not send new post email", slog.String("email", recipient))
	return false
}

func (s *MailService) Close() {
	s.cancel()
	s.wg.Wait()
}
