package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"cantine-planner/internal/antigaspi"
	"cantine-planner/internal/app"
	"cantine-planner/internal/planner"
	"cantine-planner/internal/recipe"
	"cantine-planner/internal/shopping"
)

func printPlan(w io.Writer, plan planner.WeeklyPlan, cat *recipe.Catalogue, comp planner.Compliance) {
	fmt.Fprintf(w, "Week %s (%s)\n\n", plan.WeekID, plan.Status)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "\t")
	for _, course := range recipe.Courses {
		fmt.Fprintf(tw, "%s\t", course.Label())
	}
	fmt.Fprintln(tw)
	for day, name := range planner.DayNames {
		fmt.Fprintf(tw, "%s\t", name)
		for _, course := range recipe.Courses {
			cell := "-"
			if id, ok := plan.Get(day, course); ok {
				cell = id
				if r, found := cat.Get(id); found {
					cell = r.Name
				}
			}
			fmt.Fprintf(tw, "%s\t", cell)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nVegetarian days: %d", comp.VegetarianDays)
	if !comp.MeetsVegetarianRule {
		fmt.Fprint(w, " (below minimum)")
	}
	fmt.Fprintf(w, "\nOrganic %.0f%%  Local %.0f%%  Cost %.2f EUR/day  CO2 %.2f kg/day\n",
		comp.BioPct, comp.LocalPct, comp.AvgCostPerDay, comp.AvgCO2PerDay)
}

func printReport(w io.Writer, report planner.Report) {
	fmt.Fprintf(w, "\n%d slots filled, %d left empty\n", len(report.Picks), len(report.EmptySlots))
	for _, e := range report.EmptySlots {
		fmt.Fprintf(w, "  %s %s: %s\n", planner.DayNames[e.Day], e.Course.Label(), e.Reason)
	}
}

func printSummary(w io.Writer, s antigaspi.Summary) {
	fmt.Fprintf(w, "Anti-waste %s\n", s.WeekID)
	if len(s.Waste) == 0 {
		fmt.Fprintln(w, "No expected kitchen waste.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WASTE\tCATEGORY\tKG/PORTION")
	for _, e := range s.Waste {
		fmt.Fprintf(tw, "%s\t%s\t%.3f\n", e.Label, e.Category, e.TotalQuantityKg)
	}
	tw.Flush()
	fmt.Fprintf(w, "Total: %.3f kg per portion\n", s.TotalWasteKg)

	if len(s.Suggestions) > 0 {
		fmt.Fprintln(w, "\nValorization:")
		for _, sug := range s.Suggestions {
			fmt.Fprintf(w, "  %s (%.0f%%)\n", sug.Recipe.Name, sug.MatchScore*100)
		}
	}
	if s.HasScore {
		fmt.Fprintf(w, "Score: %d%%  CO2 avoided: %.2f kg\n", s.Score, s.CO2AvoidedKg)
	}
}

func printNeeds(w io.Writer, list *shopping.ShoppingList) {
	fmt.Fprintf(w, "Needs %s for %d covers\n\n", list.WeekID, list.Covers)
	if len(list.Items) == 0 {
		fmt.Fprintln(w, "The plan has no ingredients.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INGREDIENT\tREQUIRED KG\tSTOCK KG\tDIFF KG\tSTATUS")
	for _, n := range list.Items {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%+.2f\t%s\n", n.Ingredient, n.RequiredKg, n.StockKg, n.DifferenceKg, n.Status)
	}
	tw.Flush()
}

func printAlerts(w io.Writer, alerts app.Alerts) {
	if len(alerts.Expiry) == 0 && len(alerts.Stock) == 0 {
		fmt.Fprintln(w, "No stock alerts.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tQUANTITY\tALERT")
	for _, a := range alerts.Expiry {
		fmt.Fprintf(tw, "%s\t%.1f %s\t%s (%d days)\n", a.Item.ProductName, a.Item.Quantity, a.Item.Unit, a.Urgency, a.DaysLeft)
	}
	for _, a := range alerts.Stock {
		fmt.Fprintf(tw, "%s\t%.1f %s\t%s\n", a.Item.ProductName, a.Item.Quantity, a.Item.Unit, a.Level)
	}
	tw.Flush()
}
