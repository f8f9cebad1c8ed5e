package antigaspi

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"text/template"
	"time"

	"cantine-planner/internal/llm"
)

//go:embed advisor_prompt.md
var advisorPrompt string

var advisorTmpl = template.Must(template.New("advisor").Parse(advisorPrompt))

const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// Tip is one actionable anti-waste suggestion.
type Tip struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Category    string `json:"category"`
}

// Advice is what the advisor returns for a week.
type Advice struct {
	Tips       []Tip  `json:"suggestions"`
	GeneralTip string `json:"general_tip"`
	Source     string `json:"source"`
}

// AdvisorResult pairs advice with the cost of producing it.
type AdvisorResult struct {
	Advice Advice
	Meta   llm.AgentMeta
}

type advisorPromptData struct {
	Summary
	Recipes []string
}

// Advisor asks an LLM for anti-waste tips and falls back to fixed advice
// when the model is unavailable or answers with something unusable.
type Advisor struct {
	textGen llm.TextGenerator
}

// NewAdvisor creates a new Advisor. A nil generator always yields the fallback.
func NewAdvisor(textGen llm.TextGenerator) *Advisor {
	return &Advisor{textGen: textGen}
}

// Suggest never fails; errors are logged and replaced by fallback advice.
func (a *Advisor) Suggest(ctx context.Context, summary Summary, recipeNames []string) AdvisorResult {
	start := time.Now()
	meta := llm.AgentMeta{AgentName: "Advisor"}

	if a == nil || a.textGen == nil {
		return AdvisorResult{Advice: FallbackAdvice(summary), Meta: meta}
	}

	var buf bytes.Buffer
	if err := advisorTmpl.Execute(&buf, advisorPromptData{Summary: summary, Recipes: recipeNames}); err != nil {
		log.Printf("Failed to render advisor prompt: %v", err)
		return AdvisorResult{Advice: FallbackAdvice(summary), Meta: meta}
	}

	resp, err := a.textGen.GenerateContent(ctx, buf.String())
	meta.Latency = time.Since(start)
	if err != nil {
		log.Printf("Advisor LLM call failed, using fallback: %v", err)
		return AdvisorResult{Advice: FallbackAdvice(summary), Meta: meta}
	}
	meta.Usage = resp.Usage

	advice, err := parseAdvice(resp.Content)
	if err != nil {
		log.Printf("Advisor returned unusable content, using fallback: %v", err)
		return AdvisorResult{Advice: FallbackAdvice(summary), Meta: meta}
	}
	return AdvisorResult{Advice: advice, Meta: meta}
}

func parseAdvice(content string) (Advice, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return Advice{}, fmt.Errorf("no JSON object in response")
	}

	var advice Advice
	if err := json.Unmarshal([]byte(content[start:end+1]), &advice); err != nil {
		return Advice{}, fmt.Errorf("failed to unmarshal advice: %w", err)
	}
	if len(advice.Tips) == 0 {
		return Advice{}, fmt.Errorf("advice has no suggestions")
	}
	advice.Source = SourceLLM
	return advice, nil
}

// FallbackAdvice is the fixed advice used without a model.
func FallbackAdvice(summary Summary) Advice {
	return Advice{
		Tips: []Tip{
			{
				Title:       "Homemade stock from peelings",
				Description: "Keep clean vegetable peelings and tops in the cold room and simmer them into a stock for the next day's soup.",
				Impact:      "high",
				Category:    "valorisation",
			},
			{
				Title:       "Anti-waste cooking workshop",
				Description: "Show pupils how peelings and leftovers become chips or stock during a lunchtime workshop.",
				Impact:      "medium",
				Category:    "pedagogie",
			},
			{
				Title:       "Plan complementary recipes",
				Description: "Pair dishes that leave scraps with recipes that use them later in the same week.",
				Impact:      "high",
				Category:    "menu",
			},
		},
		GeneralTip: generalTip(summary),
		Source:     SourceFallback,
	}
}

func generalTip(summary Summary) string {
	switch {
	case !summary.HasScore:
		return "This menu leaves no expected kitchen waste."
	case summary.Score >= 70:
		return fmt.Sprintf("Excellent: %d%% of this week's waste already has a valorization recipe.", summary.Score)
	case summary.Score >= 40:
		return fmt.Sprintf("Good start: %d%% of this week's waste can be valorized. Add a recipe for the remaining scraps.", summary.Score)
	default:
		return fmt.Sprintf("Needs improvement: only %d%% of this week's waste can be valorized.", summary.Score)
	}
}
