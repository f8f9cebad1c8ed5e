package clipper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cantine-planner/internal/llm"
	"cantine-planner/internal/recipe"
)

// --- Mocks ---
type MockRecipeSaver struct {
	Saved       []recipe.Recipe
	ShouldError bool
}

func (m *MockRecipeSaver) Save(ctx context.Context, rec recipe.Recipe) error {
	if m.ShouldError {
		return fmt.Errorf("mock error")
	}
	m.Saved = append(m.Saved, rec)
	return nil
}

type MockTextGenerator struct {
	Response    string
	ShouldError bool
	LastPrompt  string
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.LastPrompt = prompt
	if m.ShouldError {
		return llm.ContentResponse{}, fmt.Errorf("mock ai error")
	}
	return llm.ContentResponse{Content: m.Response, Usage: llm.TokenUsage{PromptTokens: 50, CompletionTokens: 20}}, nil
}

func pageServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	t.Cleanup(ts.Close)
	return ts
}

// --- Tests ---

func TestFetchPage(t *testing.T) {
	ts := pageServer(t, `
		<html>
			<head><title>Site | Tasty Recipe</title><script>alert('bad');</script></head>
			<body>
				<h1>Tasty Recipe</h1>
				<div class="ads">Buy stuff!</div>
				<p>Peel   the carrots.</p>
				<script>more_bad_stuff()</script>
				<footer>Copyright 2024</footer>
			</body>
		</html>`)

	c := NewClipper(&MockRecipeSaver{}, &MockTextGenerator{})
	page, err := c.fetchPage(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if page.Title != "Tasty Recipe" {
		t.Errorf("Expected title from h1, got %q", page.Title)
	}
	for _, bad := range []string{"alert('bad')", "Buy stuff!", "Copyright 2024"} {
		if strings.Contains(page.Content, bad) {
			t.Errorf("Expected %q to be removed", bad)
		}
	}
	if !strings.Contains(page.Content, "Peel the carrots.") {
		t.Errorf("Expected collapsed body text, got %q", page.Content)
	}
}

func TestFetchPage_BadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClipper(&MockRecipeSaver{}, &MockTextGenerator{})
	if _, err := c.fetchPage(context.Background(), ts.URL); err == nil {
		t.Fatal("Expected error for 404 page")
	}
}

func TestCleanText(t *testing.T) {
	long := strings.Repeat("a ", maxContentChars)
	if got := cleanText(long); len(got) != maxContentChars {
		t.Errorf("Expected truncation to %d chars, got %d", maxContentChars, len(got))
	}
	if got := cleanText("  a\n\tb  "); got != "a b" {
		t.Errorf("Expected 'a b', got %q", got)
	}
}

func TestClipURL_Success(t *testing.T) {
	aiResponse := "```json\n" + `{"name": "Carrot soup", "course": "entree", "is_vegetarian": true,
		"ingredients": [{"name": "carottes", "quantity_kg": 0.1}],
		"byproducts": [{"waste_name": "epluchures_carottes", "category": "epluchure", "quantity_kg": 0.02}],
		"tags": ["soup"]}` + "\n```"

	saver := &MockRecipeSaver{}
	gen := &MockTextGenerator{Response: aiResponse}
	c := NewClipper(saver, gen)
	ts := pageServer(t, "<html><body><h1>Soup</h1>Some Content</body></html>")

	res, err := c.ClipURL(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}

	if len(saver.Saved) != 1 {
		t.Fatalf("Expected one saved recipe, got %d", len(saver.Saved))
	}
	got := saver.Saved[0]
	if !strings.HasPrefix(got.ID, "web-") || len(got.ID) != len("web-")+8 {
		t.Errorf("Unexpected id %q", got.ID)
	}
	if got.Course != recipe.CourseStarter {
		t.Errorf("Expected starter course, got %s", got.Course)
	}
	if got.SourceURL != ts.URL {
		t.Errorf("Expected source url %s, got %s", ts.URL, got.SourceURL)
	}
	if len(got.Tags) != 2 || got.Tags[1] != "clipped" {
		t.Errorf("Expected clipped tag, got %v", got.Tags)
	}
	if res.Meta.Usage.PromptTokens != 50 {
		t.Errorf("Expected usage to be carried, got %+v", res.Meta.Usage)
	}
	if !strings.Contains(gen.LastPrompt, "Some Content") {
		t.Error("Expected page content in prompt")
	}
}

func TestClipURL_Errors(t *testing.T) {
	ts := pageServer(t, "<html><body>Some Content</body></html>")

	c := NewClipper(&MockRecipeSaver{}, &MockTextGenerator{ShouldError: true})
	if _, err := c.ClipURL(context.Background(), ts.URL); err == nil {
		t.Error("Expected error when the model fails")
	}

	c = NewClipper(&MockRecipeSaver{}, &MockTextGenerator{Response: "not json"})
	if _, err := c.ClipURL(context.Background(), ts.URL); err == nil {
		t.Error("Expected error on unparsable response")
	}

	valid := `{"name": "Pie", "course": "dessert", "ingredients": []}`
	c = NewClipper(&MockRecipeSaver{ShouldError: true}, &MockTextGenerator{Response: valid})
	if _, err := c.ClipURL(context.Background(), ts.URL); err == nil {
		t.Error("Expected error when saving fails")
	}
}

func TestClipHTML(t *testing.T) {
	saver := &MockRecipeSaver{}
	gen := &MockTextGenerator{Response: `{"name": "", "course": "dessert", "ingredients": [{"name": "pommes", "quantity_kg": 0.12}]}`}
	c := NewClipper(saver, gen)

	res, err := c.ClipHTML(context.Background(), "https://blog.example/compote", "Compote maison", "<p>Cuire les pommes.</p><script>x()</script>")
	if err != nil {
		t.Fatalf("ClipHTML failed: %v", err)
	}
	if res.Recipe.Name != "Compote maison" {
		t.Errorf("Expected the post title as name, got %q", res.Recipe.Name)
	}
	if res.Recipe.SourceURL != "https://blog.example/compote" {
		t.Errorf("Unexpected source url %q", res.Recipe.SourceURL)
	}
	if !strings.Contains(gen.LastPrompt, "Cuire les pommes.") || strings.Contains(gen.LastPrompt, "x()") {
		t.Errorf("Expected cleaned post text in prompt")
	}
	if len(saver.Saved) != 1 {
		t.Errorf("Expected one saved recipe, got %d", len(saver.Saved))
	}
}
