package mailservice

import (
	"bytes"
	"context"
	"html/template"
	"sync"
	"time"

	"github.com/go-mail/mail/v2"
	"golang.org/x/time/rate"

	"github.com/yushengtzou/yushengtzou.github.io/internal/common"
)

const (
	newPostTemplate = "new_post.html"

	maxRetries       = 5
	defaultBaseDelay = 500 * time.Millisecond

	// SMTP relays throttle bursts, so sends are spaced out across all recipients.
	sendInterval = 200 * time.Millisecond
	sendBurst    = 5
)

type MailService struct {
	mb         common.MessageConsumer
	m          Mailer
	logger     MailLogger
	recipients []string
	siteURL    string
	baseDelay  time.Duration
	limiter    *rate.Limiter
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

type MailLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

type Mail struct {
	mu     sync.Mutex
	dialer Dialer
	parser TemplateParser
	sender string
}

type Mailer interface {
	send(recipient string, data any, templateFile string) error
}

// Template renders the embedded notification templates, parsing each file once.
type Template struct {
	mu     sync.Mutex
	parsed map[string]*template.Template
}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateParser interface {
	ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error)
}

// postPublished mirrors the post.published message body.
type postPublished struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Excerpt string `json:"excerpt"`
}

type newPostData struct {
	Title   string
	Excerpt string
	Link    string
}
