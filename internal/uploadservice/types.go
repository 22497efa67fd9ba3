package uploadservice

import (
	"errors"
	"log/slog"
)

const (
	// FieldImage is the multipart field carrying a post image.
	FieldImage = "image"
	// PublicPrefix is the URL path under which stored files are served.
	PublicPrefix = "/uploads"
	// DefaultMaxFileSize caps a single uploaded file at 5 MiB.
	DefaultMaxFileSize int64 = 5 << 20

	// formOverhead bounds the non-file part of a multipart body.
	formOverhead int64 = 1 << 20

	maxNameAttempts = 5
)

var (
	ErrFileTooLarge       = errors.New("file too large")
	ErrFileTypeNotAllowed = errors.New("only images and markdown files are allowed")
	ErrTooManyFiles       = errors.New("only one file may be uploaded")
)

var allowedExtensions = []string{".jpeg", ".jpg", ".png", ".gif", ".md", ".txt"}

var allowedMediaTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"text/markdown",
	"text/x-markdown",
	"text/plain",
}

type Uploader struct {
	dir         string
	maxFileSize int64
	logger      *slog.Logger
}

// File describes an accepted upload.
type File struct {
	Name string
	// Path is the location on disk.
	Path string
	// URL is the public path, e.g. /uploads/image-1700000000000-42.png.
	URL  string
	Size int64
}
