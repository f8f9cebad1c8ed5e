package metrics

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cantine-planner/internal/antigaspi"
	"cantine-planner/internal/database"
	"cantine-planner/internal/llm"
	"cantine-planner/internal/planner"
	"cantine-planner/internal/recipe"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db.SQL)

	require.NoError(t, store.RecordMeta(ctx, llm.AgentMeta{
		AgentName: "Advisor",
		Usage:     llm.TokenUsage{PromptTokens: 120, CompletionTokens: 30, Model: "llama"},
		Latency:   800 * time.Millisecond,
	}))
	require.NoError(t, store.RecordMeta(ctx, llm.AgentMeta{
		AgentName: "Extractor",
		Usage:     llm.TokenUsage{PromptTokens: 80, CompletionTokens: 20},
	}))
	// Never reached a model.
	require.NoError(t, store.RecordMeta(ctx, llm.AgentMeta{AgentName: "Advisor"}))

	require.NoError(t, store.Record(ctx, ExecutionMetric{
		AgentName:    "Advisor",
		PromptTokens: 10,
		Timestamp:    time.Now().UTC().AddDate(0, 0, -40),
	}))

	usage, err := store.GetDailyUsage(ctx, 7)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), usage[0].Date)
	assert.Equal(t, 200, usage[0].TotalPrompt)
	assert.Equal(t, 50, usage[0].TotalCompletion)
	assert.Equal(t, 2, usage[0].TotalExecution)

	deleted, err := store.Cleanup(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestCollector(t *testing.T) {
	c := NewCollector()

	c.ObserveAllocation("2026-W43", planner.Report{
		Picks: make([]planner.Pick, 18),
		EmptySlots: []planner.EmptySlot{
			{Day: 2, Course: recipe.CourseMain, Reason: planner.ReasonNoVegetarian},
			{Day: 4, Course: recipe.CourseSide, Reason: planner.ReasonAllUsedThisWeek},
		},
	}, 3*time.Millisecond)
	c.ObserveAllocation("2026-W44", planner.Report{Picks: make([]planner.Pick, 25)}, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.allocations.WithLabelValues("partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.allocations.WithLabelValues("complete")))
	assert.Equal(t, 18.0, testutil.ToFloat64(c.slotsFilled.WithLabelValues("2026-W43")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.emptySlots.WithLabelValues(string(planner.ReasonNoVegetarian))))

	c.ObserveSummary(antigaspi.Summary{WeekID: "2026-W43", TotalWasteKg: 0.1, Score: 75, HasScore: true})
	assert.Equal(t, 75.0, testutil.ToFloat64(c.valorization.WithLabelValues("2026-W43")))
	c.ObserveSummary(antigaspi.Summary{WeekID: "2026-W43"})
	assert.Equal(t, 0, testutil.CollectAndCount(c.valorization))

	c.ObserveAgent(llm.AgentMeta{AgentName: "Advisor", Usage: llm.TokenUsage{PromptTokens: 100, CompletionTokens: 40}, Latency: time.Second})
	assert.Equal(t, 100.0, testutil.ToFloat64(c.llmTokens.WithLabelValues("Advisor", "prompt")))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "cantine_allocations_total"))
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "512 B"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.size); got != tt.want {
			t.Errorf("FormatBytes(%d): expected %s, got %s", tt.size, tt.want, got)
		}
	}
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	h := GetSysHealth(dir, time.Now().Add(-time.Minute))
	assert.Equal(t, "0 B", h.DataDiskSize)
	assert.GreaterOrEqual(t, h.Uptime, time.Minute)
	assert.Greater(t, h.Goroutines, 0)
}
