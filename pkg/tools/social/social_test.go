package social

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aretw0/toolhouse/pkg/domain"
	"github.com/aretw0/toolhouse/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPIs struct {
	srv          *httptest.Server
	quoteCalls   atomic.Int32
	unsplashHits atomic.Int32
	lastQuery    atomic.Value
	failQuotes   atomic.Bool
	failUnsplash atomic.Bool
}

func newFakeAPIs(t *testing.T) *fakeAPIs {
	t.Helper()
	f := &fakeAPIs{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /quotable/random", func(w http.ResponseWriter, r *http.Request) {
		f.quoteCalls.Add(1)
		if f.failQuotes.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, quoteTags, r.URL.Query().Get("tags"))
		fmt.Fprint(w, `{"content":"Roll with it.","author":"A. Gambler"}`)
	})
	mux.HandleFunc("GET /unsplash/search/photos", func(w http.ResponseWriter, r *http.Request) {
		f.unsplashHits.Add(1)
		f.lastQuery.Store(r.URL.Query().Get("query"))
		if f.failUnsplash.Load() || r.Header.Get("Authorization") != "Client-ID key-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "landscape", r.URL.Query().Get("orientation"))
		var results []string
		for i := 1; i <= 4; i++ {
			results = append(results, fmt.Sprintf(`{
				"urls":{"regular":"https://images.example/%d.jpg","small":"https://images.example/%d-s.jpg"},
				"alt_description":"photo %d",
				"user":{"name":"Photographer %d"},
				"links":{"html":"https://unsplash.example/%d"}
			}`, i, i, i, i, i))
		}
		fmt.Fprintf(w, `{"total":4,"results":[%s]}`, strings.Join(results, ","))
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPIs) client(opts ...Option) *Client {
	base := []Option{
		WithEndpoints(f.srv.URL+"/quotable", f.srv.URL+"/unsplash", "https://picsum.test"),
		WithHTTPClient(f.srv.Client()),
	}
	c := NewClient(append(base, opts...)...)
	c.intn = func(n int) int { return n - 1 }
	return c
}

func TestRandomQuote(t *testing.T) {
	f := newFakeAPIs(t)
	c := f.client()

	q := c.RandomQuote(context.Background(), 50, 140)
	assert.Equal(t, Quote{Content: "Roll with it.", Author: "A. Gambler"}, q)

	f.failQuotes.Store(true)
	q = c.RandomQuote(context.Background(), 50, 140)
	assert.Equal(t, fallbackQuotes[len(fallbackQuotes)-1], q)
	assert.Equal(t, "Eleanor Roosevelt", q.Author)
}

func TestSearchImages_PicsumWithoutKey(t *testing.T) {
	f := newFakeAPIs(t)
	c := f.client()

	images := c.SearchImages(context.Background(), "dice", 10)
	require.Len(t, images, 1)
	assert.Equal(t, "https://picsum.test/1080/1080?random=1", images[0].URL)
	assert.Equal(t, "Lorem Picsum", images[0].Credit)
	assert.Equal(t, "Random image related to dice", images[0].Description)
	assert.Zero(t, f.unsplashHits.Load(), "no call-time probing without a key")
}

func TestSearchImages_Unsplash(t *testing.T) {
	f := newFakeAPIs(t)
	c := f.client(WithUnsplashKey("key-123"))
	require.True(t, c.UnsplashEnabled())

	images := c.SearchImages(context.Background(), "board games", 10)
	require.Len(t, images, 4)
	assert.Equal(t, Image{
		URL:         "https://images.example/1.jpg",
		SmallURL:    "https://images.example/1-s.jpg",
		Description: "photo 1",
		Credit:      "Photographer 1",
		Link:        "https://unsplash.example/1",
	}, images[0])
	assert.Equal(t, "board games", f.lastQuery.Load())

	f.failUnsplash.Store(true)
	images = c.SearchImages(context.Background(), "board games", 10)
	require.Len(t, images, 1)
	assert.Equal(t, "https://picsum.test/1080/1080?random=1000", images[0].URL)
}

func TestCreatePost(t *testing.T) {
	f := newFakeAPIs(t)
	tool := New(f.client(WithUnsplashKey("key-123")))
	ctx := context.Background()

	out, err := tool.CreatePost(ctx, "Tabletop Games", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Reflecting on Tabletop Games today:")
	assert.Contains(t, out, "\"Roll with it.\" - A. Gambler")
	assert.Contains(t, out, "#leadership #growth #tabletopgames")
	assert.Contains(t, out, "URL: https://images.example/1.jpg")
	assert.Contains(t, out, "- Hashtags: 3")
	assert.Contains(t, out, "- Style: Professional")
	assert.Contains(t, out, "- Topic: Tabletop Games")

	out, err = tool.CreatePost(ctx, "dice", "CASUAL")
	require.NoError(t, err)
	assert.Contains(t, out, "Hey everyone!")
	assert.Contains(t, out, "#dice #quotes #dailyinspiration")

	out, err = tool.CreatePost(ctx, "dice", "haiku")
	require.NoError(t, err)
	assert.Contains(t, out, "#dice #inspiration")

	_, err = tool.CreatePost(ctx, "  ", "casual")
	assert.ErrorIs(t, err, domain.ErrInvalidArguments)
}

func TestSlideImages(t *testing.T) {
	f := newFakeAPIs(t)
	ctx := context.Background()

	out, err := New(f.client(WithUnsplashKey("key-123"))).SlideImages(ctx, "dice", "")
	require.NoError(t, err)
	assert.Contains(t, out, "PRESENTATION IMAGES FOR 'DICE'")
	assert.Contains(t, out, "OPTION 3:")
	assert.NotContains(t, out, "OPTION 4:", "top three only")
	assert.Contains(t, out, "Size: 1920x1080 (or original ratio)")

	out, err = New(f.client()).SlideImages(ctx, "dice", "800x600")
	require.NoError(t, err)
	assert.Contains(t, out, "URL: https://picsum.test/800/600?random=1000")
	assert.Contains(t, out, "Size: 800x600")

	out, err = New(f.client()).SlideImages(ctx, "dice", "huge")
	require.NoError(t, err)
	assert.Contains(t, out, "URL: https://picsum.test/1920/1080?random=1000")
}

func TestQuoteCard(t *testing.T) {
	f := newFakeAPIs(t)
	ctx := context.Background()

	out, err := New(f.client(WithUnsplashKey("key-123"))).QuoteCard(ctx, "Nature")
	require.NoError(t, err)
	assert.Equal(t, "nature landscape peaceful", f.lastQuery.Load())
	assert.Contains(t, out, "Theme: Nature")
	assert.Contains(t, out, "Background: https://images.example/1.jpg")
	assert.Contains(t, out, "#naturequotes")

	_, err = New(f.client(WithUnsplashKey("key-123"))).QuoteCard(ctx, "dragons")
	require.NoError(t, err)
	assert.Equal(t, "dragons", f.lastQuery.Load())

	out, err = New(f.client()).QuoteCard(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Theme: Motivation")
	assert.Contains(t, out, "Credit: Lorem Picsum")
}

func TestRegister(t *testing.T) {
	f := newFakeAPIs(t)
	reg := registry.NewRegistry()
	New(f.client()).Register(reg)

	for _, name := range []string{PostToolName, SlideToolName, QuoteCardToolName} {
		_, ok := reg.Lookup(name)
		assert.True(t, ok, name)
	}

	card, _ := reg.Lookup(QuoteCardToolName)
	assert.NotContains(t, card.Parameters, "required")

	out, err := reg.Execute(context.Background(), PostToolName, map[string]any{"topic": "dice", "style": "motivational"})
	require.NoError(t, err)
	assert.Contains(t, out, "Let this inspire your dice journey today!")
}
