package recipe

import (
	"errors"
	"testing"
)

func validRecipe() Recipe {
	return Recipe{
		ID:           "r006",
		Name:         "Carottes râpées",
		Course:       CourseStarter,
		IsVegetarian: true,
		Ingredients:  []Ingredient{{Name: "carottes", QuantityKg: 0.08}},
		Byproducts: []Byproduct{
			{WasteName: "fanes_carottes", Category: "fane", QuantityKg: 0.02},
		},
		SeasonMonths: []int{9, 10, 11},
	}
}

func TestParseCourse(t *testing.T) {
	tests := []struct {
		in      string
		want    Course
		wantErr bool
	}{
		{"main", CourseMain, false},
		{" Dessert ", CourseDessert, false},
		{"plat_principal", CourseMain, false},
		{"entree", CourseStarter, false},
		{"garniture", CourseSide, false},
		{"produit_laitier", CourseDairy, false},
		{"brunch", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCourse(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRecipe) {
					t.Errorf("Expected ErrInvalidRecipe, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(validRecipe()); err != nil {
		t.Fatalf("Expected valid recipe, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(r *Recipe)
	}{
		{"MissingID", func(r *Recipe) { r.ID = "" }},
		{"MissingName", func(r *Recipe) { r.Name = " " }},
		{"UnknownCourse", func(r *Recipe) { r.Course = "brunch" }},
		{"NegativeIngredient", func(r *Recipe) { r.Ingredients[0].QuantityKg = -1 }},
		{"NegativeByproduct", func(r *Recipe) { r.Byproducts[0].QuantityKg = -0.1 }},
		{"UnnamedByproduct", func(r *Recipe) { r.Byproducts[0].WasteName = "" }},
		{"BadMonth", func(r *Recipe) { r.SeasonMonths = []int{13} }},
		{"NegativeCost", func(r *Recipe) { r.CostPerPortion = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecipe()
			tt.mutate(&r)
			if err := Validate(r); !errors.Is(err, ErrInvalidRecipe) {
				t.Errorf("Expected ErrInvalidRecipe, got %v", err)
			}
		})
	}
}

func TestInSeason(t *testing.T) {
	r := validRecipe()
	if !r.InSeason(10) {
		t.Error("Expected recipe to be in season in October")
	}
	if r.InSeason(6) {
		t.Error("Expected recipe to be out of season in June")
	}

	r.SeasonMonths = nil
	for m := 1; m <= 12; m++ {
		if !r.InSeason(m) {
			t.Errorf("Expected year-round recipe to be in season in month %d", m)
		}
	}
}

func TestSourcingScore(t *testing.T) {
	r := validRecipe()
	if r.SourcingScore() != 0 {
		t.Errorf("Expected 0, got %d", r.SourcingScore())
	}
	r.IsLocal = true
	r.IsOrganic = true
	if r.SourcingScore() != 2 {
		t.Errorf("Expected 2, got %d", r.SourcingScore())
	}
}

func TestByproductDisplayLabel(t *testing.T) {
	b := Byproduct{WasteName: "epluchures_carottes"}
	if b.DisplayLabel() != "epluchures carottes" {
		t.Errorf("Unexpected label '%s'", b.DisplayLabel())
	}
	b.Label = "Carrot peelings"
	if b.DisplayLabel() != "Carrot peelings" {
		t.Errorf("Unexpected label '%s'", b.DisplayLabel())
	}
}

func TestNewCatalogue(t *testing.T) {
	main := validRecipe()
	main.ID = "r002"
	main.Course = "plat_principal"

	cat, err := NewCatalogue([]Recipe{validRecipe(), main})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cat.Len() != 2 {
		t.Errorf("Expected 2 recipes, got %d", cat.Len())
	}

	got, ok := cat.Get("r002")
	if !ok {
		t.Fatal("Expected r002 to be found")
	}
	if got.Course != CourseMain {
		t.Errorf("Expected course to be canonicalized to main, got %s", got.Course)
	}
	if mains := cat.ByCourse(CourseMain); len(mains) != 1 || mains[0].ID != "r002" {
		t.Errorf("Unexpected mains %+v", mains)
	}
	if _, ok := cat.Get("nope"); ok {
		t.Error("Expected unknown id to be missing")
	}

	t.Run("DuplicateID", func(t *testing.T) {
		_, err := NewCatalogue([]Recipe{validRecipe(), validRecipe()})
		if !errors.Is(err, ErrInvalidRecipe) {
			t.Errorf("Expected ErrInvalidRecipe for duplicate ids, got %v", err)
		}
	})

	t.Run("InvalidRecord", func(t *testing.T) {
		bad := validRecipe()
		bad.Ingredients[0].QuantityKg = -1
		if _, err := NewCatalogue([]Recipe{bad}); err == nil {
			t.Error("Expected an error for invalid record, got nil")
		}
	})

	t.Run("NilCatalogue", func(t *testing.T) {
		var c *Catalogue
		if c.Len() != 0 || c.All() != nil {
			t.Error("Expected nil catalogue to be empty")
		}
		if _, ok := c.Get("r006"); ok {
			t.Error("Expected nil catalogue lookup to fail")
		}
	})
}
