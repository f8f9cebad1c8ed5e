package shopping

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cantine-planner/internal/database"
	"cantine-planner/internal/inventory"
	"cantine-planner/internal/planner"
	"cantine-planner/internal/recipe"
	"cantine-planner/internal/textnorm"
)

func fixture(t *testing.T) (planner.WeeklyPlan, *recipe.Catalogue) {
	t.Helper()
	cat, err := recipe.NewCatalogue([]recipe.Recipe{
		{ID: "r1", Name: "Carrot salad", Course: recipe.CourseStarter, Ingredients: []recipe.Ingredient{
			{Name: "Carottes", QuantityKg: 0.1},
			{Name: "huile_olive", QuantityKg: 0.01},
		}},
		{ID: "r2", Name: "Vegetable curry", Course: recipe.CourseMain, Ingredients: []recipe.Ingredient{
			{Name: "carottes", QuantityKg: 0.05},
			{Name: "pois chiches", QuantityKg: 0.08},
		}},
	})
	require.NoError(t, err)

	plan := planner.NewWeeklyPlan("2026-W43")
	require.NoError(t, plan.Set(0, recipe.CourseStarter, "r1"))
	require.NoError(t, plan.Set(0, recipe.CourseMain, "r2"))
	require.NoError(t, plan.Set(3, recipe.CourseStarter, "r1"))
	require.NoError(t, plan.Set(4, recipe.CourseDessert, "ghost"))
	return plan, cat
}

func TestComputeNeeds(t *testing.T) {
	plan, cat := fixture(t)
	stock := []inventory.Item{
		{ProductName: "Carottes bio", Quantity: 50},
		{ProductName: "Pois chiches secs", Quantity: 20},
	}

	needs := ComputeNeeds(plan, cat, stock, 100, textnorm.MatchSubstring)
	require.Len(t, needs, 3)

	// Carrots: (0.1*2 + 0.05) * 100 = 25 kg, covered.
	// Oil: 0.01*2*100 = 2 kg, none in stock.
	// Chickpeas: 8 kg, covered.
	assert.Equal(t, "huile olive", needs[0].Ingredient)
	assert.Equal(t, StatusOrder, needs[0].Status)
	assert.InDelta(t, -2.0, needs[0].DifferenceKg, 1e-9)

	assert.Equal(t, "Carottes", needs[1].Ingredient)
	assert.InDelta(t, 25.0, needs[1].RequiredKg, 1e-9)
	assert.InDelta(t, 50.0, needs[1].StockKg, 1e-9)
	assert.Equal(t, StatusOK, needs[1].Status)
	assert.Equal(t, []string{"Carrot salad", "Vegetable curry"}, needs[1].Recipes)

	assert.Equal(t, "pois chiches", needs[2].Ingredient)
	assert.InDelta(t, 12.0, needs[2].DifferenceKg, 1e-9)
}

func TestComputeNeedsTokenMode(t *testing.T) {
	plan, cat := fixture(t)
	stock := []inventory.Item{{ProductName: "Carottes bio", Quantity: 50}}

	needs := ComputeNeeds(plan, cat, stock, 100, textnorm.MatchTokens)
	for _, n := range needs {
		assert.Equal(t, StatusOrder, n.Status, n.Ingredient)
		assert.Zero(t, n.StockKg)
	}
}

func TestComputeNeedsEmptyPlan(t *testing.T) {
	_, cat := fixture(t)
	needs := ComputeNeeds(planner.NewWeeklyPlan("2026-W43"), cat, nil, 150, textnorm.MatchSubstring)
	assert.Empty(t, needs)
}

func TestShoppingListToOrder(t *testing.T) {
	l := ShoppingList{Items: []Need{
		{Ingredient: "a", Status: StatusOrder},
		{Ingredient: "b", Status: StatusOK},
	}}
	got := l.ToOrder()
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Ingredient)
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "shopping.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db.SQL)

	got, err := repo.GetByWeek(ctx, "2026-W43")
	require.NoError(t, err)
	assert.Nil(t, got)

	list := &ShoppingList{WeekID: "2026-W43", Covers: 150, Items: []Need{
		{Ingredient: "carottes", RequiredKg: 30, StockKg: 10, DifferenceKg: -20, Status: StatusOrder, Recipes: []string{"Carrot salad"}},
	}}
	require.NoError(t, repo.Save(ctx, list))
	assert.False(t, list.CreatedAt.IsZero())

	got, err = repo.GetByWeek(ctx, "2026-W43")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 150, got.Covers)
	assert.Equal(t, list.Items, got.Items)

	list.Covers = 90
	require.NoError(t, repo.Save(ctx, list))
	got, err = repo.GetByWeek(ctx, "2026-W43")
	require.NoError(t, err)
	assert.Equal(t, 90, got.Covers)

	require.NoError(t, repo.DeleteByWeek(ctx, "2026-W43"))
	got, err = repo.GetByWeek(ctx, "2026-W43")
	require.NoError(t, err)
	assert.Nil(t, got)
}
