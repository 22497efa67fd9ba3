package main

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/yushengtzou/yushengtzou.github.io/internal/blogservice"
)

const feedSize = 20

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	URLs    []sitemapURL `xml:"url"`
}

func (app *application) siteURL() string {
	return strings.TrimRight(app.config.SiteBaseURL, "/")
}

func (app *application) postURL(p *blogservice.Post) string {
	return app.siteURL() + "/blog/" + p.Slug
}

func (app *application) rssHandler(w http.ResponseWriter, r *http.Request) {
	limit := feedSize
	posts, err := app.postService.ListPosts(r.Context(), blogservice.ListFilter{Limit: &limit})
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	feed := &feeds.Feed{
		Title:       app.config.Author + " | Blog",
		Link:        &feeds.Link{Href: app.siteURL() + "/blog"},
		Description: "Notes on research, programming and career by " + app.config.Author,
		Author:      &feeds.Author{Name: app.config.Author},
		Created:     time.Now(),
	}

	for i := range posts {
		post := &posts[i]
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          app.postURL(post),
			Title:       post.Title,
			Link:        &feeds.Link{Href: app.postURL(post)},
			Description: post.Excerpt,
			Author:      &feeds.Author{Name: post.Author},
			Created:     post.Date,
			Content:     app.postService.RenderContent(post),
		})
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if err := feed.WriteRss(w); err != nil {
		app.logError(r, err)
	}
}

func (app *application) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := app.postService.ListPosts(r.Context(), blogservice.ListFilter{})
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	urls := []sitemapURL{
		{Loc: app.siteURL() + "/", ChangeFreq: "weekly", Priority: "1.0"},
		{Loc: app.siteURL() + "/blog", ChangeFreq: "daily", Priority: "0.8"},
	}

	for i := range posts {
		urls = append(urls, sitemapURL{
			Loc:        app.postURL(&posts[i]),
			LastMod:    posts[i].Date.Format("2006-01-02"),
			ChangeFreq: "monthly",
			Priority:   "0.6",
		})
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(sitemapURLSet{URLs: urls}); err != nil {
		app.logError(r, err)
	}
}
