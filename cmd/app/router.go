package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/api/health", app.healthCheckHandler)

	router.HandlerFunc(http.MethodGet, "/api/posts", app.listPostsHandler)
	router.HandlerFunc(http.MethodGet, "/api/posts/:slug", app.getPostHandler)
	router.HandlerFunc(http.MethodGet, "/api/categories", app.listCategoriesHandler)
	router.HandlerFunc(http.MethodPost, "/api/posts", app.requireAdmin(app.createPostHandler))
	router.HandlerFunc(http.MethodPut, "/api/posts/:id", app.requireAdmin(app.updatePostHandler))
	router.HandlerFunc(http.MethodDelete, "/api/posts/:id", app.requireAdmin(app.deletePostHandler))

	router.HandlerFunc(http.MethodPost, "/api/admin/login", app.loginHandler)
	router.HandlerFunc(http.MethodPost, "/api/admin/logout", app.logoutHandler)

	router.HandlerFunc(http.MethodGet, "/rss.xml", app.rssHandler)
	router.HandlerFunc(http.MethodGet, "/sitemap.xml", app.sitemapHandler)

	router.ServeFiles("/uploads/*filepath", http.Dir(app.uploader.Dir()))

	return app.recoverPanic(app.requestID(app.logRequest(app.secureHeaders(app.enableCORS(app.rateLimit(app.authenticate(router)))))))
}
