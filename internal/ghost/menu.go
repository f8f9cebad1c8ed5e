package ghost

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"cantine-planner/internal/planner"
	"cantine-planner/internal/recipe"
)

//go:embed menu.html.tmpl
var menuTemplateText string

var menuTmpl = template.Must(template.New("menu").Parse(menuTemplateText))

type menuCourse struct {
	Label      string
	Dish       string
	Vegetarian bool
}

type menuDay struct {
	Name    string
	Courses []menuCourse
}

type menuData struct {
	WeekID     string
	Final      bool
	Days       []menuDay
	OrganicPct float64
	LocalPct   float64
}

// RenderMenu formats a weekly plan as post HTML for families. Empty slots
// and recipes missing from the catalogue are left out.
func RenderMenu(plan planner.WeeklyPlan, cat *recipe.Catalogue) (string, error) {
	comp := planner.ComputeMetrics(plan, cat)
	data := menuData{
		WeekID:     plan.WeekID,
		Final:      plan.Status == planner.StatusFinal,
		OrganicPct: comp.BioPct,
		LocalPct:   comp.LocalPct,
	}

	for day, name := range planner.DayNames {
		d := menuDay{Name: name}
		for _, course := range recipe.Courses {
			id, ok := plan.Get(day, course)
			if !ok {
				continue
			}
			r, ok := cat.Get(id)
			if !ok {
				continue
			}
			d.Courses = append(d.Courses, menuCourse{Label: course.Label(), Dish: r.Name, Vegetarian: r.IsVegetarian})
		}
		if len(d.Courses) > 0 {
			data.Days = append(data.Days, d)
		}
	}

	var buf bytes.Buffer
	if err := menuTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render menu: %w", err)
	}
	return buf.String(), nil
}
