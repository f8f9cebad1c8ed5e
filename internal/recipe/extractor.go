package recipe

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"cantine-planner/internal/llm"
)

//go:embed extractor_prompt.md
var extractorPrompt string

var extractorTmpl = template.Must(template.New("extractor").Parse(extractorPrompt))

// PageData is the cleaned content of a recipe web page.
type PageData struct {
	URL     string
	Title   string
	Content string
	Courses []Course
}

// ExtractorResult pairs an extracted recipe with the cost of producing it.
type ExtractorResult struct {
	Recipe Recipe
	Meta   llm.AgentMeta
}

// extractedRecipe mirrors the JSON the prompt asks for.
type extractedRecipe struct {
	Name         string       `json:"name"`
	Course       string       `json:"course"`
	IsVegetarian bool         `json:"is_vegetarian"`
	Ingredients  []Ingredient `json:"ingredients"`
	Byproducts   []Byproduct  `json:"byproducts"`
	SeasonMonths []int        `json:"season_months"`
	Tags         []string     `json:"tags"`
}

// Extractor turns page text into a catalogue recipe with an LLM.
type Extractor struct {
	textGen llm.TextGenerator
}

// NewExtractor creates a new Extractor.
func NewExtractor(textGen llm.TextGenerator) *Extractor {
	return &Extractor{textGen: textGen}
}

// Extract asks the model for a structured recipe. The returned recipe has
// no ID; the caller assigns one before saving.
func (e *Extractor) Extract(ctx context.Context, data PageData) (ExtractorResult, error) {
	start := time.Now()
	if len(data.Courses) == 0 {
		data.Courses = Courses
	}

	prompt, err := buildExtractorPrompt(data)
	if err != nil {
		return ExtractorResult{}, err
	}

	llmResp, err := e.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return ExtractorResult{}, fmt.Errorf("failed to get LLM response: %w", err)
	}

	meta := llm.AgentMeta{
		AgentName: "Extractor",
		Usage:     llmResp.Usage,
		Latency:   time.Since(start),
	}

	var out extractedRecipe
	if err := json.Unmarshal([]byte(stripCodeFence(llmResp.Content)), &out); err != nil {
		return ExtractorResult{Meta: meta}, fmt.Errorf("failed to unmarshal LLM response: %w", err)
	}

	course, err := ParseCourse(out.Course)
	if err != nil {
		return ExtractorResult{Meta: meta}, err
	}

	return ExtractorResult{
		Recipe: Recipe{
			Name:         strings.TrimSpace(out.Name),
			Course:       course,
			IsVegetarian: out.IsVegetarian,
			Ingredients:  out.Ingredients,
			Byproducts:   out.Byproducts,
			SeasonMonths: out.SeasonMonths,
			Tags:         out.Tags,
			SourceURL:    data.URL,
		},
		Meta: meta,
	}, nil
}

func buildExtractorPrompt(data PageData) (string, error) {
	var buf bytes.Buffer
	if err := extractorTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render extractor prompt: %w", err)
	}
	return buf.String(), nil
}

// stripCodeFence removes a ```json fence some models add despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
