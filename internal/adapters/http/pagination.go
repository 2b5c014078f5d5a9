package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Pagination contains page-based pagination info.
type Pagination struct {
	Page     int
	PageSize int
	Total    int
}

// LastPage is the highest page that holds rows, at least 1.
func (p Pagination) LastPage() int {
	if p.PageSize <= 0 || p.Total <= 0 {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// SetLinkHeaders adds RFC 8288 Link headers for paginated responses.
// Filter and sort parameters of the current request are kept.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	base := c.Path()
	params := url.Values{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		if key != "page" && key != "pageSize" {
			params.Add(key, string(v))
		}
	})

	link := func(page int, rel string) string {
		params.Set("page", strconv.Itoa(page))
		params.Set("pageSize", strconv.Itoa(p.PageSize))
		return fmt.Sprintf(`<%s?%s>; rel="%s"`, base, params.Encode(), rel)
	}

	last := p.LastPage()
	links := []string{link(1, "first")}
	if p.Page > 1 {
		prev := p.Page - 1
		if prev > last {
			prev = last
		}
		links = append(links, link(prev, "prev"))
	}
	if p.Page < last {
		links = append(links, link(p.Page+1, "next"))
	}
	links = append(links, link(last, "last"))

	c.Set("Link", strings.Join(links, ", "))
}
