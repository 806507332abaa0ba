// Package social provides content tools for social media and slides:
// create_social_post, get_slide_image and create_quote_card.
package social

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/toolhouse/pkg/domain"
	"github.com/aretw0/toolhouse/pkg/registry"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tool names.
const (
	PostToolName      = "create_social_post"
	SlideToolName     = "get_slide_image"
	QuoteCardToolName = "create_quote_card"
)

// Post styles. Unknown styles produce a plain post.
const (
	StyleMotivational = "motivational"
	StyleProfessional = "professional"
	StyleCasual       = "casual"
)

const defaultSlideSize = "1920x1080"

// Background search terms per quote card theme; other themes are searched
// verbatim.
var themeSearchTerms = map[string]string{
	"motivation": "inspiration motivation success",
	"business":   "business office success",
	"technology": "technology innovation digital",
	"nature":     "nature landscape peaceful",
	"abstract":   "abstract minimal clean",
}

type PostArgs struct {
	Topic string `json:"topic" jsonschema_description:"What the post is about"`
	Style string `json:"style,omitempty" jsonschema:"enum=professional,enum=motivational,enum=casual,default=professional" jsonschema_description:"Tone of the post"`
}

type SlideArgs struct {
	Topic string `json:"topic" jsonschema_description:"Subject of the slide images"`
	Size  string `json:"size,omitempty" jsonschema:"default=1920x1080" jsonschema_description:"Target size as WIDTHxHEIGHT"`
}

type QuoteCardArgs struct {
	Theme string `json:"theme,omitempty" jsonschema:"default=motivation" jsonschema_description:"Card theme: motivation, business, technology, nature, abstract or any search term"`
}

// Tool builds social content from a Client.
type Tool struct {
	client *Client
}

// New creates the tool.
func New(client *Client) *Tool {
	return &Tool{client: client}
}

// Register adds the social content tools to reg.
func (t *Tool) Register(reg *registry.Registry) {
	reg.Register(
		registry.Define[PostArgs](PostToolName, "Generate a social media post with image and text for any topic"),
		registry.Typed(func(ctx context.Context, in *PostArgs) (any, error) {
			return t.CreatePost(ctx, in.Topic, in.Style)
		}),
	)
	reg.Register(
		registry.Define[SlideArgs](SlideToolName, "Get presentation-ready images for slides and presentations"),
		registry.Typed(func(ctx context.Context, in *SlideArgs) (any, error) {
			return t.SlideImages(ctx, in.Topic, in.Size)
		}),
	)
	reg.Register(
		registry.Define[QuoteCardArgs](QuoteCardToolName, "Generate a quote card with inspirational text and background image"),
		registry.Typed(func(ctx context.Context, in *QuoteCardArgs) (any, error) {
			return t.QuoteCard(ctx, in.Theme)
		}),
	)
}

// CreatePost combines a quote and an image into a ready-to-copy post.
func (t *Tool) CreatePost(ctx context.Context, topic, style string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", fmt.Errorf("%w: topic is required", domain.ErrInvalidArguments)
	}
	if style == "" {
		style = StyleProfessional
	}

	images := t.client.SearchImages(ctx, topic, 10)
	if len(images) == 0 {
		return "", fmt.Errorf("no images found for '%s'", topic)
	}
	image := images[0]
	quote := t.client.RandomQuote(ctx, 50, 140)

	tag := hashtag(topic)
	var text string
	switch strings.ToLower(style) {
	case StyleMotivational:
		text = fmt.Sprintf("\"%s\" - %s\n\nLet this inspire your %s journey today!\n\n#motivation #inspiration #%s", quote.Content, quote.Author, topic, tag)
	case StyleProfessional:
		text = fmt.Sprintf("Reflecting on %s today:\n\n\"%s\" - %s\n\n#leadership #growth #%s", topic, quote.Content, quote.Author, tag)
	case StyleCasual:
		text = fmt.Sprintf("Hey everyone!\n\n\"%s\" - %s\n\nThis really resonates with my thoughts on %s. What do you think?\n\n#%s #quotes #dailyinspiration", quote.Content, quote.Author, topic, tag)
	default:
		text = fmt.Sprintf("\"%s\" - %s\n\n#%s #inspiration", quote.Content, quote.Author, tag)
	}

	var b strings.Builder
	b.WriteString("SOCIAL MEDIA POST GENERATED\n\n")
	fmt.Fprintf(&b, "POST TEXT:\n%s\n\n", text)
	fmt.Fprintf(&b, "IMAGE:\nURL: %s\nCredit: Photo by %s\nLink: %s\n\n", image.URL, image.Credit, image.Link)
	b.WriteString("POST STATS:\n")
	fmt.Fprintf(&b, "- Character count: %d\n", utf8.RuneCountInString(text))
	fmt.Fprintf(&b, "- Hashtags: %d\n", countHashtags(text))
	fmt.Fprintf(&b, "- Style: %s\n", titleCase(style))
	fmt.Fprintf(&b, "- Topic: %s\n", titleCase(topic))
	return b.String(), nil
}

// SlideImages lists up to three image options for a slide. Lorem Picsum
// images are resized to the requested size; an unparsable size selects
// 1920x1080.
func (t *Tool) SlideImages(ctx context.Context, topic, size string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", fmt.Errorf("%w: topic is required", domain.ErrInvalidArguments)
	}
	width, height, ok := parseSize(size)
	if !ok {
		width, height = 1920, 1080
		size = defaultSlideSize
	}

	images := t.client.SearchImages(ctx, topic, 10)
	if len(images) == 0 {
		return "", fmt.Errorf("no images found for '%s', try a different search term", topic)
	}
	if len(images) > 3 {
		images = images[:3]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "PRESENTATION IMAGES FOR '%s'\n\n", strings.ToUpper(topic))
	for i, img := range images {
		u := img.URL
		if u == "" {
			u = img.SmallURL
		}
		if strings.HasPrefix(u, t.client.picsumURL) {
			u = t.client.PicsumURL(width, height)
		}
		desc := img.Description
		if desc == "" {
			desc = "Image related to " + topic
		}
		fmt.Fprintf(&b, "OPTION %d:\nURL: %s\nDescription: %s\nCredit: %s\nSize: %s (or original ratio)\n\n", i+1, u, desc, img.Credit, size)
	}
	b.WriteString("Always credit the photographer when possible.")
	return b.String(), nil
}

// QuoteCard pairs a short quote with a themed background image.
func (t *Tool) QuoteCard(ctx context.Context, theme string) (string, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = "motivation"
	}
	quote := t.client.RandomQuote(ctx, 30, 120)

	term, ok := themeSearchTerms[strings.ToLower(theme)]
	if !ok {
		term = theme
	}
	bgURL, bgCredit := t.client.PicsumURL(1080, 1080), "Lorem Picsum"
	if images := t.client.SearchImages(ctx, term, 10); len(images) > 0 {
		bgURL, bgCredit = images[0].URL, images[0].Credit
	}

	var b strings.Builder
	b.WriteString("QUOTE CARD GENERATED\n\n")
	fmt.Fprintf(&b, "QUOTE:\n\"%s\"\n- %s\n\n", quote.Content, quote.Author)
	fmt.Fprintf(&b, "DESIGN:\nTheme: %s\nBackground: %s\nCredit: %s\n\n", titleCase(theme), bgURL, bgCredit)
	fmt.Fprintf(&b, "COPY-READY TEXT:\n\"%s\" - %s\n\n#%squotes #inspiration #motivation #dailyquote", quote.Content, quote.Author, hashtag(theme))
	return b.String(), nil
}

// titleCase builds a Caser per call; Casers are not safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func hashtag(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

func countHashtags(text string) int {
	n := 0
	for _, w := range strings.Fields(text) {
		if strings.HasPrefix(w, "#") {
			n++
		}
	}
	return n
}

func parseSize(size string) (int, int, bool) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(size)), "x")
	if !ok {
		return 0, 0, false
	}
	width, err1 := strconv.Atoi(w)
	height, err2 := strconv.Atoi(h)
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}
