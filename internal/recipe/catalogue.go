package recipe

import "fmt"

// Catalogue is a validated, read-only set of recipes that keeps input order.
type Catalogue struct {
	recipes []Recipe
	byID    map[string]int
}

// NewCatalogue validates every record and indexes it by id.
// Course tags are canonicalized; duplicate ids are rejected.
func NewCatalogue(recipes []Recipe) (*Catalogue, error) {
	c := &Catalogue{
		recipes: make([]Recipe, 0, len(recipes)),
		byID:    make(map[string]int, len(recipes)),
	}
	for _, r := range recipes {
		r, err := Canonical(r)
		if err != nil {
			return nil, err
		}
		if err := Validate(r); err != nil {
			return nil, err
		}
		if _, dup := c.byID[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidRecipe, r.ID)
		}
		c.byID[r.ID] = len(c.recipes)
		c.recipes = append(c.recipes, r)
	}
	return c, nil
}

// Get returns the recipe with the given id.
func (c *Catalogue) Get(id string) (Recipe, bool) {
	if c == nil {
		return Recipe{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Recipe{}, false
	}
	return c.recipes[i], true
}

// All returns the recipes in catalogue order. Callers must not modify the slice.
func (c *Catalogue) All() []Recipe {
	if c == nil {
		return nil
	}
	return c.recipes
}

// ByCourse returns the recipes for one course in catalogue order.
func (c *Catalogue) ByCourse(course Course) []Recipe {
	var out []Recipe
	for _, r := range c.All() {
		if r.Course == course {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of recipes.
func (c *Catalogue) Len() int {
	if c == nil {
		return 0
	}
	return len(c.recipes)
}
