package main

import (
	"context"
	"net/http"

	"github.com/yushengtzou/yushengtzou.github.io/internal/authservice"
)

type contextKey string

const (
	adminContextKey     = contextKey("admin")
	requestIDContextKey = contextKey("request_id")
)

func (app *application) createAdminContext(r *http.Request, admin *authservice.Admin) *http.Request {
	ctx := context.WithValue(r.Context(), adminContextKey, admin)
	return r.WithContext(ctx)
}

func (app *application) getAdminContext(r *http.Request) *authservice.Admin {
	admin, ok := r.Context().Value(adminContextKey).(*authservice.Admin)
	if !ok {
		return &authservice.AnonymousAdmin
	}
	return admin
}

func createRequestIDContext(r *http.Request, id string) *http.Request {
	ctx := context.WithValue(r.Context(), requestIDContextKey, id)
	return r.WithContext(ctx)
}

func requestIDFromContext(r *http.Request) string {
	id, _ := r.Context().Value(requestIDContextKey).(string)
	return id
}
