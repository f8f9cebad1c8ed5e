// Package app wires the planning engine to storage, LLM agents and metrics.
// The CLI, HTTP API and Telegram bot all drive the kitchen through an App.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"cantine-planner/internal/antigaspi"
	"cantine-planner/internal/clipper"
	"cantine-planner/internal/config"
	"cantine-planner/internal/database"
	"cantine-planner/internal/ghost"
	"cantine-planner/internal/inventory"
	"cantine-planner/internal/llm"
	"cantine-planner/internal/metrics"
	"cantine-planner/internal/planner"
	"cantine-planner/internal/recipe"
	"cantine-planner/internal/shopping"
	"cantine-planner/internal/textnorm"
)

// ErrNoTextGenerator is returned by LLM-only features when no model is configured.
var ErrNoTextGenerator = errors.New("no text generator configured")

// App holds the application's dependencies.
type App struct {
	cfg *config.Config
	db  *database.DB

	recipeRepo    *recipe.Repository
	inventoryRepo *inventory.Repository
	shoppingRepo  *shopping.Repository
	metricsStore  *metrics.Store
	collector     *metrics.Collector

	plans     *planner.Service
	advisor   *antigaspi.Advisor
	clipper   *clipper.Clipper
	blog      ghost.Client
	textGen   llm.TextGenerator
	matchMode textnorm.MatchMode

	mu           sync.RWMutex
	valorization []antigaspi.ValorizationRecipe

	now     func() time.Time
	started time.Time
}

// Option customizes an App.
type Option func(*App)

// WithClock overrides the time source used for week resolution and scoring.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithGhost replaces the Ghost client built from configuration.
func WithGhost(c ghost.Client) Option {
	return func(a *App) { a.blog = c }
}

// WithValorization replaces the built-in valorization catalogue.
func WithValorization(v []antigaspi.ValorizationRecipe) Option {
	return func(a *App) { a.valorization = v }
}

// NewApp creates and initializes a new App instance. plans is the store
// holding weekly plans; textGen may be nil, in which case the advisor
// falls back to fixed advice and clipping is unavailable.
func NewApp(cfg *config.Config, db *database.DB, plans planner.Store, textGen llm.TextGenerator, opts ...Option) (*App, error) {
	mode, err := textnorm.ParseMatchMode(cfg.MatchMode)
	if err != nil {
		return nil, err
	}

	recipeRepo := recipe.NewRepository(db.SQL)
	a := &App{
		cfg:           cfg,
		db:            db,
		recipeRepo:    recipeRepo,
		inventoryRepo: inventory.NewRepository(db.SQL),
		shoppingRepo:  shopping.NewRepository(db.SQL),
		metricsStore:  metrics.NewStore(db.SQL),
		collector:     metrics.NewCollector(),
		advisor:       antigaspi.NewAdvisor(textGen),
		blog:          ghost.NewClient(cfg),
		textGen:       textGen,
		valorization:  antigaspi.DefaultValorizationRecipes(),
		matchMode:     mode,
		now:           time.Now,
		started:       time.Now(),
	}
	if textGen != nil {
		a.clipper = clipper.NewClipper(recipeRepo, textGen)
	}
	for _, opt := range opts {
		opt(a)
	}

	a.plans = planner.NewService(plans,
		planner.WithObserver(a.collector),
		planner.WithClock(a.now),
	)
	return a, nil
}

// Config returns the configuration the app was built with.
func (a *App) Config() *config.Config { return a.cfg }

// Collector returns the Prometheus collector.
func (a *App) Collector() *metrics.Collector { return a.collector }

// Now returns the app's current time.
func (a *App) Now() time.Time { return a.now() }

// ResolveWeek turns a user supplied week reference into an ISO week key.
// Empty or "current" is this week, "next" and "previous" are relative to it.
func (a *App) ResolveWeek(ref string) (string, error) {
	current := planner.WeekKey(a.now())
	switch strings.ToLower(strings.TrimSpace(ref)) {
	case "", "current", "this":
		return current, nil
	case "next":
		return planner.ShiftWeek(current, 1)
	case "previous", "prev", "last":
		return planner.ShiftWeek(current, -1)
	}
	if _, err := planner.ParseWeek(ref); err != nil {
		return "", err
	}
	return ref, nil
}

// PlanningOptions builds allocator options from configuration and the clock.
func (a *App) PlanningOptions() planner.Options {
	opts := planner.DefaultOptions(a.now())
	opts.VegetarianDays = a.cfg.VegetarianDays
	opts.MatchMode = a.matchMode
	return opts
}

// Catalogue loads the recipe catalogue from the database.
func (a *App) Catalogue(ctx context.Context) (*recipe.Catalogue, error) {
	return a.recipeRepo.Catalogue(ctx)
}

// Recipes lists the catalogue, optionally restricted to one course.
func (a *App) Recipes(ctx context.Context, course recipe.Course) ([]recipe.Recipe, error) {
	cat, err := a.Catalogue(ctx)
	if err != nil {
		return nil, err
	}
	if course == "" {
		return cat.All(), nil
	}
	return cat.ByCourse(course), nil
}

// Inventory returns the current stock snapshot.
func (a *App) Inventory(ctx context.Context) ([]inventory.Item, error) {
	return a.inventoryRepo.List(ctx)
}

// AutoFill plans a whole week from the catalogue and current stock,
// replacing any existing plan for that week.
func (a *App) AutoFill(ctx context.Context, weekID string) (planner.WeeklyPlan, planner.Report, error) {
	cat, err := a.Catalogue(ctx)
	if err != nil {
		return planner.WeeklyPlan{}, planner.Report{}, err
	}
	if cat.Len() == 0 {
		log.Printf("Auto-filling week %s with an empty recipe catalogue", weekID)
	}
	items, err := a.Inventory(ctx)
	if err != nil {
		return planner.WeeklyPlan{}, planner.Report{}, err
	}
	return a.plans.AutoFill(ctx, weekID, cat, items, a.PlanningOptions())
}

// Plan returns the stored plan of a week.
func (a *App) Plan(ctx context.Context, weekID string) (planner.WeeklyPlan, error) {
	return a.plans.Get(ctx, weekID)
}

// Weeks lists the weeks that have a plan.
func (a *App) Weeks(ctx context.Context) ([]string, error) {
	return a.plans.ListWeeks(ctx)
}

// SetSlot assigns a recipe to one slot by hand.
func (a *App) SetSlot(ctx context.Context, weekID string, day int, course recipe.Course, recipeID string) (planner.WeeklyPlan, error) {
	cat, err := a.Catalogue(ctx)
	if err != nil {
		return planner.WeeklyPlan{}, err
	}
	return a.plans.SetSlot(ctx, weekID, day, course, recipeID, cat)
}

// ClearSlot empties one slot.
func (a *App) ClearSlot(ctx context.Context, weekID string, day int, course recipe.Course) (planner.WeeklyPlan, error) {
	return a.plans.ClearSlot(ctx, weekID, day, course)
}

// Finalize marks a week's plan as final.
func (a *App) Finalize(ctx context.Context, weekID string) (planner.WeeklyPlan, error) {
	return a.plans.Finalize(ctx, weekID)
}

// ClearWeek deletes a week's plan and its shopping list.
func (a *App) ClearWeek(ctx context.Context, weekID string) error {
	if err := a.plans.Clear(ctx, weekID); err != nil {
		return err
	}
	return a.shoppingRepo.DeleteByWeek(ctx, weekID)
}

// Duplicate copies one week's plan into another.
func (a *App) Duplicate(ctx context.Context, fromWeek, toWeek string) (planner.WeeklyPlan, error) {
	return a.plans.Duplicate(ctx, fromWeek, toWeek)
}

// Compliance computes the nutrition and sourcing figures of a week.
func (a *App) Compliance(ctx context.Context, weekID string) (planner.Compliance, error) {
	plan, cat, err := a.planAndCatalogue(ctx, weekID)
	if err != nil {
		return planner.Compliance{}, err
	}
	return planner.ComputeMetrics(plan, cat), nil
}

// Summary aggregates the week's expected waste and valorization suggestions.
func (a *App) Summary(ctx context.Context, weekID string) (antigaspi.Summary, error) {
	plan, cat, err := a.planAndCatalogue(ctx, weekID)
	if err != nil {
		return antigaspi.Summary{}, err
	}
	s := antigaspi.Summarize(plan, cat, a.valorizationRecipes())
	a.collector.ObserveSummary(s)
	return s, nil
}

// Advice asks the anti-waste advisor about a week. It only fails when the
// week has no plan; model failures yield fallback advice.
func (a *App) Advice(ctx context.Context, weekID string) (antigaspi.AdvisorResult, error) {
	plan, cat, err := a.planAndCatalogue(ctx, weekID)
	if err != nil {
		return antigaspi.AdvisorResult{}, err
	}
	summary := antigaspi.Summarize(plan, cat, a.valorizationRecipes())

	var names []string
	for _, slot := range plan.FilledSlots() {
		if r, ok := cat.Get(slot.RecipeID); ok {
			names = append(names, r.Name)
		}
	}

	res := a.advisor.Suggest(ctx, summary, names)
	a.recordMeta(ctx, res.Meta)
	return res, nil
}

// Needs computes and stores the shopping list of a week. covers <= 0 uses
// the configured default.
func (a *App) Needs(ctx context.Context, weekID string, covers int) (*shopping.ShoppingList, error) {
	if covers <= 0 {
		covers = a.cfg.DefaultCovers
	}
	plan, cat, err := a.planAndCatalogue(ctx, weekID)
	if err != nil {
		return nil, err
	}
	items, err := a.Inventory(ctx)
	if err != nil {
		return nil, err
	}

	list := &shopping.ShoppingList{
		WeekID:    weekID,
		Covers:    covers,
		Items:     shopping.ComputeNeeds(plan, cat, items, covers, a.matchMode),
		CreatedAt: a.now().UTC(),
	}
	if err := a.shoppingRepo.Save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Alerts groups expiry and stock-level alerts.
type Alerts struct {
	Expiry []inventory.ExpiryAlert `json:"expiry"`
	Stock  []inventory.StockAlert  `json:"stock"`
}

// Alerts inspects the stock for items about to expire or running low.
func (a *App) Alerts(ctx context.Context) (Alerts, error) {
	items, err := a.Inventory(ctx)
	if err != nil {
		return Alerts{}, err
	}
	return Alerts{
		Expiry: inventory.ExpiryAlerts(items, a.now(), inventory.DefaultExpiryWindow),
		Stock:  inventory.StockAlerts(items),
	}, nil
}

// ClipRecipe imports a recipe from a web page into the catalogue.
func (a *App) ClipRecipe(ctx context.Context, url string) (*clipper.Result, error) {
	if a.clipper == nil {
		return nil, ErrNoTextGenerator
	}
	res, err := a.clipper.ClipURL(ctx, url)
	if err != nil {
		return nil, err
	}
	a.recordMeta(ctx, res.Meta)
	log.Printf("Clipped recipe '%s' (%s) from %s", res.Recipe.Name, res.Recipe.ID, url)
	return res, nil
}

// DailyUsage returns LLM token usage for the last days.
func (a *App) DailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	return a.metricsStore.GetDailyUsage(ctx, days)
}

// CleanupMetrics removes execution metrics older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	return a.metricsStore.Cleanup(ctx, days)
}

// Health reports runtime and disk figures of the process.
func (a *App) Health() metrics.SysHealth {
	return metrics.GetSysHealth(a.dataDir(), a.started)
}

func (a *App) dataDir() string {
	if a.db == nil || a.db.Path == "" {
		return "data"
	}
	return filepath.Dir(a.db.Path)
}

func (a *App) valorizationRecipes() []antigaspi.ValorizationRecipe {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.valorization
}

func (a *App) setValorization(v []antigaspi.ValorizationRecipe) {
	a.mu.Lock()
	a.valorization = v
	a.mu.Unlock()
}

func (a *App) planAndCatalogue(ctx context.Context, weekID string) (planner.WeeklyPlan, *recipe.Catalogue, error) {
	plan, err := a.plans.Get(ctx, weekID)
	if err != nil {
		return planner.WeeklyPlan{}, nil, err
	}
	cat, err := a.Catalogue(ctx)
	if err != nil {
		return planner.WeeklyPlan{}, nil, err
	}
	return plan, cat, nil
}

// recordMeta stores an agent execution. Failures are logged, never returned.
func (a *App) recordMeta(ctx context.Context, meta llm.AgentMeta) {
	if meta.AgentName == "" {
		return
	}
	a.collector.ObserveAgent(meta)
	if err := a.metricsStore.RecordMeta(ctx, meta); err != nil {
		log.Printf("Warning: failed to record metrics for %s: %v", meta.AgentName, err)
	}
}

// Close releases the database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
