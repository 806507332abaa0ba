package social

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aretw0/toolhouse/internal/logging"
	"github.com/tidwall/gjson"
)

// Quote is a quotation and its author.
type Quote struct {
	Content string `json:"content"`
	Author  string `json:"author"`
}

// Image is one search hit with attribution.
type Image struct {
	URL         string `json:"url"`
	SmallURL    string `json:"small_url,omitempty"`
	Description string `json:"description,omitempty"`
	Credit      string `json:"credit"`
	Link        string `json:"link"`
}

var fallbackQuotes = []Quote{
	{Content: "The only way to do great work is to love what you do.", Author: "Steve Jobs"},
	{Content: "Innovation distinguishes between a leader and a follower.", Author: "Steve Jobs"},
	{Content: "Stay hungry, stay foolish.", Author: "Steve Jobs"},
	{Content: "The future belongs to those who believe in the beauty of their dreams.", Author: "Eleanor Roosevelt"},
}

const quoteTags = "inspirational|motivational|success|wisdom"

// Client fetches quotes from Quotable and images from Unsplash, falling back
// to a fixed quote list and Lorem Picsum when either is unavailable.
type Client struct {
	quotableURL string
	unsplashURL string
	picsumURL   string
	unsplashKey string
	httpClient  *http.Client
	logger      *slog.Logger
	intn        func(n int) int
}

type Option func(*Client)

// WithUnsplashKey enables Unsplash image search.
func WithUnsplashKey(key string) Option {
	return func(c *Client) {
		c.unsplashKey = key
	}
}

// WithEndpoints overrides the API roots. Empty values keep the defaults.
func WithEndpoints(quotable, unsplash, picsum string) Option {
	return func(c *Client) {
		if quotable != "" {
			c.quotableURL = quotable
		}
		if unsplash != "" {
			c.unsplashURL = unsplash
		}
		if picsum != "" {
			c.picsumURL = picsum
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client against the public endpoints.
func NewClient(opts ...Option) *Client {
	c := &Client{
		quotableURL: "https://api.quotable.io",
		unsplashURL: "https://api.unsplash.com",
		picsumURL:   "https://picsum.photos",
		httpClient:  http.DefaultClient,
		logger:      logging.NewNop(),
		intn:        rand.IntN,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UnsplashEnabled reports whether image search goes to Unsplash.
func (c *Client) UnsplashEnabled() bool {
	return c.unsplashKey != ""
}

// RandomQuote returns a quote between minLen and maxLen characters. It never
// fails: any upstream problem yields one of the built-in quotes.
func (c *Client) RandomQuote(ctx context.Context, minLen, maxLen int) Quote {
	q := url.Values{}
	q.Set("minLength", strconv.Itoa(minLen))
	q.Set("maxLength", strconv.Itoa(maxLen))
	q.Set("tags", quoteTags)

	body, err := c.get(ctx, c.quotableURL+"/random?"+q.Encode(), nil)
	if err == nil {
		doc := gjson.ParseBytes(body)
		// Older deployments answer with a one-element array.
		if doc.IsArray() {
			doc = doc.Get("0")
		}
		quote := Quote{Content: doc.Get("content").String(), Author: doc.Get("author").String()}
		if quote.Content != "" {
			return quote
		}
		err = fmt.Errorf("unexpected response: %.80s", body)
	}

	c.logger.Debug("Using fallback quote", "error", err)
	return fallbackQuotes[c.intn(len(fallbackQuotes))]
}

// SearchImages returns landscape photos for query. Without an Unsplash key,
// or when Unsplash fails, it returns a single Lorem Picsum image.
func (c *Client) SearchImages(ctx context.Context, query string, perPage int) []Image {
	if !c.UnsplashEnabled() {
		return []Image{c.picsumImage(query, 1)}
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("orientation", "landscape")

	body, err := c.get(ctx, c.unsplashURL+"/search/photos?"+q.Encode(), http.Header{
		"Authorization":  {"Client-ID " + c.unsplashKey},
		"Accept-Version": {"v1"},
	})
	if err != nil {
		c.logger.Debug("Using fallback image", "query", query, "error", err)
		return []Image{c.picsumImage(query, c.intn(1000)+1)}
	}

	var images []Image
	gjson.GetBytes(body, "results").ForEach(func(_, r gjson.Result) bool {
		images = append(images, Image{
			URL:         r.Get("urls.regular").String(),
			SmallURL:    r.Get("urls.small").String(),
			Description: r.Get("alt_description").String(),
			Credit:      r.Get("user.name").String(),
			Link:        r.Get("links.html").String(),
		})
		return true
	})
	return images
}

// PicsumURL returns a random Lorem Picsum image of the given size.
func (c *Client) PicsumURL(width, height int) string {
	return fmt.Sprintf("%s/%d/%d?random=%d", c.picsumURL, width, height, c.intn(1000)+1)
}

func (c *Client) picsumImage(query string, seed int) Image {
	return Image{
		URL:         fmt.Sprintf("%s/1080/1080?random=%d", c.picsumURL, seed),
		SmallURL:    fmt.Sprintf("%s/400/400?random=%d", c.picsumURL, seed),
		Description: "Random image related to " + query,
		Credit:      "Lorem Picsum",
		Link:        c.picsumURL,
	}
}

func (c *Client) get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}
