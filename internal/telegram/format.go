package telegram

import (
	"fmt"
	"strings"

	"cantine-planner/internal/antigaspi"
	"cantine-planner/internal/app"
	"cantine-planner/internal/metrics"
	"cantine-planner/internal/planner"
	"cantine-planner/internal/recipe"
	"cantine-planner/internal/shopping"
)

const helpText = `🍽 *Cantine planner*

/plan [week] - auto-fill a week (default: next week)
/week [week] - show a week's menu
/waste [week] - expected waste and anti-waste ideas
/needs [week] - ingredients to order
/alerts - stock expiring or running low
/metrics - usage and health (admin)

Send a recipe URL to add it to the catalogue.
Weeks are written like 2026-W43, or current, next, previous.`

// maxNeedsShown keeps the shopping message within Telegram limits.
const maxNeedsShown = 20

// parseCommand splits "/plan@bot 2026-W43" into "plan" and "2026-W43".
func parseCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	cmd, arg, _ := strings.Cut(text[1:], " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

func formatError(title string, err error) string {
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *%s:*\n```\n%v\n```", title, safeErr)
}

func formatPlanMarkdown(plan planner.WeeklyPlan, cat *recipe.Catalogue, comp planner.Compliance) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *Menu %s*", plan.WeekID))
	if plan.Status == planner.StatusFinal {
		sb.WriteString(" ✅")
	}
	sb.WriteString("\n\n")

	for day, name := range planner.DayNames {
		sb.WriteString(fmt.Sprintf("*%s*\n", name))
		for _, course := range recipe.Courses {
			id, ok := plan.Get(day, course)
			if !ok {
				sb.WriteString(fmt.Sprintf("  %s: _empty_\n", course.Label()))
				continue
			}
			label := id
			if r, found := cat.Get(id); found {
				label = r.Name
				if r.IsVegetarian && course == recipe.CourseMain {
					label += " 🌱"
				}
			}
			sb.WriteString(fmt.Sprintf("  %s: %s\n", course.Label(), label))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("🌱 Vegetarian days: %d", comp.VegetarianDays))
	if !comp.MeetsVegetarianRule {
		sb.WriteString(" ⚠️")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("🧺 Organic: %.0f%% | Local: %.0f%%\n", comp.BioPct, comp.LocalPct))
	sb.WriteString(fmt.Sprintf("💶 %.2f €/day | 🌍 %.2f kg CO2/day\n", comp.AvgCostPerDay, comp.AvgCO2PerDay))
	return sb.String()
}

func formatEmptySlotsMarkdown(slots []planner.EmptySlot) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⚠️ *%d slots left empty*\n", len(slots)))
	for _, e := range slots {
		sb.WriteString(fmt.Sprintf("• %s %s: %s\n", planner.DayNames[e.Day], e.Course.Label(), e.Reason))
	}
	return sb.String()
}

func formatWasteMarkdown(s antigaspi.Summary, advice antigaspi.Advice) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("♻️ *Anti-waste %s*\n\n", s.WeekID))

	if len(s.Waste) == 0 {
		sb.WriteString("_No expected kitchen waste._\n")
	} else {
		sb.WriteString(fmt.Sprintf("*Expected waste* (%.3f kg per portion)\n", s.TotalWasteKg))
		for _, w := range s.Waste {
			sb.WriteString(fmt.Sprintf("• %s: %.3f kg\n", w.Label, w.TotalQuantityKg))
		}
	}

	if len(s.Suggestions) > 0 {
		sb.WriteString("\n*Valorization*\n")
		for _, sug := range s.Suggestions {
			sb.WriteString(fmt.Sprintf("• %s (%.0f%%)\n", sug.Recipe.Name, sug.MatchScore*100))
		}
	}
	if s.HasScore {
		sb.WriteString(fmt.Sprintf("\n📈 Valorization score: *%d%%*\n", s.Score))
	}

	if len(advice.Tips) > 0 {
		sb.WriteString("\n💡 *Ideas*\n")
		for _, tip := range advice.Tips {
			sb.WriteString(fmt.Sprintf("• *%s*: %s\n", tip.Title, tip.Description))
		}
	}
	if advice.GeneralTip != "" {
		sb.WriteString(fmt.Sprintf("\n_%s_\n", advice.GeneralTip))
	}
	return sb.String()
}

func formatNeedsMarkdown(list *shopping.ShoppingList) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛒 *Needs %s* (%d covers)\n\n", list.WeekID, list.Covers))

	toOrder := list.ToOrder()
	if len(toOrder) == 0 {
		sb.WriteString("✅ Stock covers the whole week.\n")
		return sb.String()
	}
	for i, n := range toOrder {
		if i == maxNeedsShown {
			sb.WriteString(fmt.Sprintf("_…and %d more_\n", len(toOrder)-maxNeedsShown))
			break
		}
		sb.WriteString(fmt.Sprintf("• %s: order %.1f kg (need %.1f, stock %.1f)\n", n.Ingredient, -n.DifferenceKg, n.RequiredKg, n.StockKg))
	}
	return sb.String()
}

func formatAlertsMarkdown(alerts app.Alerts) string {
	if len(alerts.Expiry) == 0 && len(alerts.Stock) == 0 {
		return "✅ No stock alerts."
	}

	var sb strings.Builder
	if len(alerts.Expiry) > 0 {
		sb.WriteString("⏰ *Expiring*\n")
		for _, a := range alerts.Expiry {
			var when string
			switch {
			case a.DaysLeft < 0:
				when = fmt.Sprintf("expired %d days ago", -a.DaysLeft)
			case a.DaysLeft == 0:
				when = "today"
			default:
				when = fmt.Sprintf("in %d days", a.DaysLeft)
			}
			sb.WriteString(fmt.Sprintf("• %s (%.1f %s): %s [%s]\n", a.Item.ProductName, a.Item.Quantity, a.Item.Unit, when, a.Urgency))
		}
	}
	if len(alerts.Stock) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("📦 *Stock*\n")
		for _, a := range alerts.Stock {
			sb.WriteString(fmt.Sprintf("• %s: %.1f %s [%s]\n", a.Item.ProductName, a.Item.Quantity, a.Item.Unit, a.Level))
		}
	}
	return sb.String()
}

func formatMetricsMarkdown(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}
