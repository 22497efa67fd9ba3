package main

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/yushengtzou/yushengtzou.github.io/internal/blogservice"
	"github.com/yushengtzou/yushengtzou.github.io/internal/common"
	"github.com/yushengtzou/yushengtzou.github.io/internal/uploadservice"
)

// postInput is the union of the fields accepted by create and update, from JSON or form bodies.
type postInput struct {
	Title     *string         `json:"title"`
	Content   *string         `json:"content"`
	Excerpt   *string         `json:"excerpt"`
	Category  *string         `json:"category"`
	Published json.RawMessage `json:"published"`

	publishedForm *string
	image         *uploadservice.File
}

// published returns nil when the field was not sent. Only true or "true" publish a post.
func (in *postInput) published() *bool {
	switch {
	case in.publishedForm != nil:
		p := blogservice.ParsePublished(*in.publishedForm)
		return &p
	case len(in.Published) > 0:
		var p bool
		var s string
		switch {
		case json.Unmarshal(in.Published, &p) == nil:
		case json.Unmarshal(in.Published, &s) == nil:
			p = blogservice.ParsePublished(s)
		}
		return &p
	default:
		return nil
	}
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// readPostInput decodes a multipart, urlencoded or JSON body. Multipart bodies may carry an image,
// which is stored before the handler runs; the caller removes it if the request fails.
func (app *application) readPostInput(w http.ResponseWriter, r *http.Request) (*postInput, error) {
	var in postInput

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := app.uploader.ParseForm(w, r); err != nil {
			return nil, err
		}
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
	default:
		if err := app.parseJSON(w, r, &in); err != nil {
			return nil, err
		}
		return &in, nil
	}

	formValue := func(key string) *string {
		values, ok := r.PostForm[key]
		if !ok || len(values) == 0 {
			return nil
		}
		return &values[0]
	}

	in.Title = formValue("title")
	in.Content = formValue("content")
	in.Excerpt = formValue("excerpt")
	in.Category = formValue("category")
	in.publishedForm = formValue("published")

	image, err := app.uploader.Accept(r, uploadservice.FieldImage)
	if err != nil {
		return nil, err
	}
	in.image = image

	return &in, nil
}

func (app *application) readPostInputErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, uploadservice.ErrFileTooLarge):
		app.fileTooLargeResponse(w, r)
	default:
		app.badRequestErrorResponse(w, r, err)
	}
}

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := app.readLimitParam(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	filter := blogservice.ListFilter{
		Category: r.URL.Query().Get("category"),
		Limit:    limit,
	}

	posts, err := app.postService.ListPosts(r.Context(), filter)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, posts, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getPostHandler(w http.ResponseWriter, r *http.Request) {
	slug := httprouter.ParamsFromContext(r.Context()).ByName("slug")

	post, err := app.postService.GetPostBySlug(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.postNotFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, post, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := app.postService.ListCategories(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, categories, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	input, err := app.readPostInput(w, r)
	if err != nil {
		app.readPostInputErrorResponse(w, r, err)
		return
	}

	req := &blogservice.CreatePostRequest{
		Title:     value(input.Title),
		Content:   value(input.Content),
		Excerpt:   value(input.Excerpt),
		Category:  value(input.Category),
		Published: input.published(),
	}
	if input.image != nil {
		req.Image = input.image.URL
	}

	post, err := app.postService.CreatePost(r.Context(), req)
	if err != nil {
		app.uploader.Remove(input.image)

		var validationErr common.ValidationError
		switch {
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, post, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	input, err := app.readPostInput(w, r)
	if err != nil {
		app.readPostInputErrorResponse(w, r, err)
		return
	}

	req := &blogservice.UpdatePostRequest{
		Title:     input.Title,
		Content:   input.Content,
		Excerpt:   input.Excerpt,
		Category:  input.Category,
		Published: input.published(),
	}
	if input.image != nil {
		req.Image = &input.image.URL
	}

	post, err := app.postService.UpdatePost(r.Context(), id, req)
	if err != nil {
		app.uploader.Remove(input.image)

		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.postNotFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, post, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.postService.DeletePost(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.postNotFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "blog post deleted successfully"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
