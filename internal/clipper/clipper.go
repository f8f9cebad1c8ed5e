// Package clipper imports recipes from web pages into the catalogue.
package clipper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"cantine-planner/internal/llm"
	"cantine-planner/internal/recipe"
)

// maxContentChars caps the page text sent to the model.
const maxContentChars = 12000

// RecipeSaver stores clipped recipes.
type RecipeSaver interface {
	Save(ctx context.Context, rec recipe.Recipe) error
}

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	store      RecipeSaver
	extractor  *recipe.Extractor
	httpClient *http.Client
}

// Result is a clipped recipe with the cost of extracting it.
type Result struct {
	Recipe recipe.Recipe
	Meta   llm.AgentMeta
}

// NewClipper creates a new Clipper instance.
func NewClipper(store RecipeSaver, textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		store:      store,
		extractor:  recipe.NewExtractor(textGen),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ClipURL fetches the URL, extracts a recipe with the model and saves it
// under a fresh id.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*Result, error) {
	page, err := c.fetchPage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}
	return c.clip(ctx, page)
}

// ClipHTML extracts a recipe from an HTML document already in hand, such as
// a blog post body. title is used when the document has no heading.
func (c *Clipper) ClipHTML(ctx context.Context, sourceURL, title, html string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	page := pageFromDocument(sourceURL, doc)
	if page.Title == "" {
		page.Title = title
	}
	return c.clip(ctx, page)
}

func (c *Clipper) clip(ctx context.Context, page recipe.PageData) (*Result, error) {
	res, err := c.extractor.Extract(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}

	rec := res.Recipe
	rec.ID = "web-" + uuid.NewString()[:8]
	if rec.Name == "" {
		rec.Name = page.Title
	}
	rec.Tags = appendUnique(rec.Tags, "clipped")

	if err := c.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save clipped recipe: %w", err)
	}
	return &Result{Recipe: rec, Meta: res.Meta}, nil
}

func (c *Clipper) fetchPage(ctx context.Context, url string) (recipe.PageData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return recipe.PageData{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return recipe.PageData{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return recipe.PageData{}, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return recipe.PageData{}, err
	}
	return pageFromDocument(url, doc), nil
}

func pageFromDocument(url string, doc *goquery.Document) recipe.PageData {
	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return recipe.PageData{
		URL:     url,
		Title:   title,
		Content: cleanText(doc.Find("body").Text()),
	}
}

// cleanText collapses whitespace runs and truncates to maxContentChars.
func cleanText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxContentChars {
		s = s[:maxContentChars]
	}
	return s
}

func appendUnique(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}
