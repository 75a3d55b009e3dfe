package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Paginator reads page and limit query parameters and renders the list
// envelope with absolute next/previous links.
type Paginator struct {
	DefaultLimit int
	MaxLimit     int
	// BaseURL overrides the scheme and host of generated links.
	BaseURL string
}

func (p Paginator) Request(c *gin.Context) (service.PageRequest, bool) {
	req := service.PageRequest{Page: 1, Limit: p.DefaultLimit}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			badRequest(c, "page must be a positive integer")
			return req, false
		}
		req.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			badRequest(c, "limit must be a positive integer")
			return req, false
		}
		req.Limit = limit
	}
	if p.MaxLimit > 0 && req.Limit > p.MaxLimit {
		req.Limit = p.MaxLimit
	}
	return req, true
}

func newPage[T any](c *gin.Context, p Paginator, req service.PageRequest, total int64, results []T) types.Page[T] {
	page := types.Page[T]{Count: total, Results: results}
	if page.Results == nil {
		page.Results = []T{}
	}
	if int64(req.Page*req.Limit) < total {
		page.Next = p.link(c, req.Page+1)
	}
	if req.Page > 1 {
		page.Previous = p.link(c, req.Page-1)
	}
	return page
}

func (p Paginator) link(c *gin.Context, page int) *string {
	u := *c.Request.URL
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()

	link := absoluteURL(c, p.BaseURL, u.RequestURI())
	return &link
}

// absoluteURL joins path onto base, falling back to the request's own host.
func absoluteURL(c *gin.Context, base, path string) string {
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		base = (&url.URL{Scheme: scheme, Host: c.Request.Host}).String()
	}
	return strings.TrimSuffix(base, "/") + path
}
