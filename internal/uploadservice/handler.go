package uploadservice

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/exp/rand"
)

func NewUploader(dir string, maxFileSize int64, logger *slog.Logger) *Uploader {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	return &Uploader{
		dir:         dir,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

func (u *Uploader) Dir() string {
	return u.dir
}

func (u *Uploader) MaxFileSize() int64 {
	return u.maxFileSize
}

// ParseForm parses a multipart request body. The whole body is bounded so an oversized file fails
// before it is buffered to disk.
func (u *Uploader) ParseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, u.maxFileSize+formOverhead)

	err := r.ParseMultipartForm(formOverhead)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return ErrFileTooLarge
		}
		return err
	}

	return nil
}

// Accept validates and stores the file sent under field. It returns nil when no file was sent.
func (u *Uploader) Accept(r *http.Request, field string) (*File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File[field]
	switch len(headers) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, ErrTooManyFiles
	}

	fh := headers[0]
	if err := u.check(fh); err != nil {
		return nil, err
	}

	return u.save(fh, field)
}

func (u *Uploader) check(fh *multipart.FileHeader) error {
	if fh.Size > u.maxFileSize {
		return ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !slices.Contains(allowedExtensions, ext) {
		return ErrFileTypeNotAllowed
	}

	mediaType, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err != nil || !slices.Contains(allowedMediaTypes, mediaType) {
		return ErrFileTypeNotAllowed
	}

	return nil
}

func (u *Uploader) save(fh *multipart.FileHeader, field string) (*File, error) {
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var (
		name, path string
		dst        *os.File
	)
	for attempt := 0; ; attempt++ {
		name = fileName(field, fh.Filename, time.Now())
		path = filepath.Join(u.dir, name)

		dst, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) || attempt >= maxNameAttempts {
			return nil, err
		}
	}

	n, err := io.Copy(dst, io.LimitReader(src, u.maxFileSize+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > u.maxFileSize {
		err = ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	u.logger.Info("stored upload", slog.String("name", name), slog.Int64("size", n))

	return &File{
		Name: name,
		Path: path,
		URL:  PublicPrefix + "/" + name,
		Size: n,
	}, nil
}

// Remove deletes a stored upload. It is used when the request that carried it fails.
func (u *Uploader) Remove(f *File) {
	if f == nil {
		return
	}

	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		u.logger.Error("failed to remove upload", slog.String("name", f.Name), slog.String("error", err.Error()))
	}
}

// fileName builds <field>-<unix millis>-<random><ext> keeping the original extension in lower case.
func fileName(field, original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%s-%d-%d%s", field, now.UnixMilli(), rand.Int63n(1e9), ext)
}
