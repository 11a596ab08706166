// Package preview fetches Open Graph metadata for URLs pasted into chat.
// It never touches session state; results live in an independent TTL
// cache keyed by URL.
package preview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"

	"github.com/hububba/hubcalls/internal/metrics"
)

const maxBody = 512 << 10 // metadata lives in <head>; no need to read more

type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
}

type cached struct {
	p       *Preview
	expires time.Time
}

type Fetcher struct {
	client *http.Client
	ttl    time.Duration

	mu    sync.Mutex
	cache map[string]cached
	sf    singleflight.Group

	now func() time.Time
}

func NewFetcher(ttl, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		ttl:    ttl,
		cache:  make(map[string]cached),
		now:    time.Now,
	}
}

// Fetch returns the cached preview when fresh; otherwise concurrent
// lookups of the same URL collapse into a single upstream request.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Preview, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		metrics.PreviewFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("unsupported url %q", rawURL)
	}
	key := u.String()

	f.mu.Lock()
	if c, ok := f.cache[key]; ok && f.now().Before(c.expires) {
		f.mu.Unlock()
		metrics.PreviewFetches.WithLabelValues("hit").Inc()
		return c.p, nil
	}
	f.mu.Unlock()

	v, err, _ := f.sf.Do(key, func() (any, error) {
		p, err := f.fetch(ctx, key)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.cache[key] = cached{p: p, expires: f.now().Add(f.ttl)}
		f.mu.Unlock()
		return p, nil
	})
	if err != nil {
		metrics.PreviewFetches.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.PreviewFetches.WithLabelValues("miss").Inc()
	return v.(*Preview), nil
}

func (f *Fetcher) fetch(ctx context.Context, u string) (*Preview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "hubcalls-preview/1.0")
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}

	p := parse(io.LimitReader(resp.Body, maxBody))
	p.URL = u
	log.Debug().Str("module", "preview").Str("url", u).Str("title", p.Title).Msg("fetched")
	return p, nil
}

// parse walks the document tokens collecting og:* meta tags, with the
// plain <title> as fallback. Stops at </head>; anything later is body.
func parse(r io.Reader) *Preview {
	p := &Preview{}
	z := html.NewTokenizer(r)
	var inTitle bool
	for {
		switch z.Next() {
		case html.ErrorToken:
			return p
		case html.TextToken:
			if inTitle && p.Title == "" {
				p.Title = strings.TrimSpace(string(z.Text()))
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "title":
				inTitle = true
			case "meta":
				var prop, content string
				for hasAttr {
					var k, v []byte
					k, v, hasAttr = z.TagAttr()
					switch string(k) {
					case "property", "name":
						prop = string(v)
					case "content":
						content = string(v)
					}
				}
				apply(p, prop, content)
			case "body":
				return p
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "title":
				inTitle = false
			case "head":
				return p
			}
		}
	}
}

func apply(p *Preview, prop, content string) {
	if content == "" {
		return
	}
	switch prop {
	case "og:title":
		p.Title = content
	case "og:description", "description":
		if p.Description == "" || strings.HasPrefix(prop, "og:") {
			p.Description = content
		}
	case "og:image":
		p.Image = content
	case "og:site_name":
		p.SiteName = content
	}
}
