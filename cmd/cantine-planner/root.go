package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cantine-planner/internal/api"
	"cantine-planner/internal/app"
	"cantine-planner/internal/config"
	"cantine-planner/internal/planner"
	"cantine-planner/internal/recipe"
)

// cli carries the state shared by every subcommand.
type cli struct {
	cfg     *config.Config
	app     *app.App
	cleanup func()
	asJSON  bool
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cantine-planner",
		Short:         "Weekly menu auto-fill and anti-waste planning for school kitchens",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Context())
		},
	}
	root.PersistentFlags().BoolVar(&c.asJSON, "json", false, "print results as JSON")

	root.AddCommand(
		c.autofillCmd(),
		c.showCmd(),
		c.setCmd(),
		c.clearCmd(),
		c.finalizeCmd(),
		c.duplicateCmd(),
		c.weeksCmd(),
		c.summaryCmd(),
		c.needsCmd(),
		c.alertsCmd(),
		c.importCmd(),
		c.exportCmd(),
		c.ghostImportCmd(),
		c.publishCmd(),
		c.serveCmd(),
		c.tokenCmd(),
		c.metricsCleanupCmd(),
	)
	return root
}

func (c *cli) setup(ctx context.Context) error {
	config.LoadDotEnv()
	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a, cleanup, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	c.cfg, c.app, c.cleanup = cfg, a, cleanup
	return nil
}

func (c *cli) close() {
	if c.cleanup != nil {
		c.cleanup()
	}
}

// print writes v as indented JSON when --json is set, otherwise calls text.
func (c *cli) print(v any, text func()) error {
	if !c.asJSON {
		text()
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func weekArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func (c *cli) autofillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autofill [week]",
		Short: "Fill the empty slots of a week (default: current week)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekID, err := c.app.ResolveWeek(weekArg(args))
			if err != nil {
				return err
			}
			plan, report, err := c.app.AutoFill(cmd.Context(), weekID)
			if err != nil {
				return err
			}
			cat, err := c.app.Catalogue(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(map[string]any{"plan": plan, "report": report}, func() {
				printPlan(os.Stdout, plan, cat, planner.ComputeMetrics(plan, cat))
				printReport(os.Stdout, report)
			})
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [week]",
		Short: "Print a week's menu with its compliance figures",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekID, err := c.app.ResolveWeek(weekArg(args))
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			plan, err := c.app.Plan(ctx, weekID)
			if err != nil {
				return err
			}
			cat, err := c.app.Catalogue(ctx)
			if err != nil {
				return err
			}
			comp := planner.ComputeMetrics(plan, cat)
			return c.print(map[string]any{"plan": plan, "compliance": comp}, func() {
				printPlan(os.Stdout, plan, cat, comp)
			})
		},
	}
}

func (c *cli) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <week> <day> <course> <recipe-id>",
		Short: "Assign a recipe to one slot",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekID, err := c.app.ResolveWeek(args[0])
			if err != nil {
				return err
			}
			day, course, err := parseSlot(args[1], args[2])
			if err != nil {
				return err
			}
			plan, err := c.app.SetSlot(cmd.Context(), weekID, day, course, args[3])
			if err != nil {
				return err
			}
			return c.print(plan, func() {
				fmt.Printf("%s %s %s set to %s\n", weekID, planner.DayNames[day], course.Label(), args[3])
			})
		},
	}
}

func (c *cli) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <week> [day course]",
		Short: "Delete a week's plan, or empty a single slot",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 3 {
				return errors.New("expected <week> or <week> <day> <course>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			weekID, err := c.app.ResolveWeek(args[0])
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if err := c.app.ClearWeek(cmd.Context(), weekID); err != nil {
					return err
				}
				fmt.Printf("Plan %s deleted\n", weekID)
				return nil
			}
			day, course, err := parseSlot(args[1], args[2])
			if err != nil {
				return err
			}
			plan, err := c.app.ClearSlot(cmd.Context(), weekID, day, course)
			if err != nil {
				return err
			}
			return c.print(plan, func() {
				fmt.Printf("%s %s %s cleared\n", weekID, planner.DayNames[day], course.Label())
			})
		},
	}
}

func (c *cli) finalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finalize [week]",
		Short: "Mark a week's menu as final",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekID, err := c.app.ResolveWeek(weekArg(args))
			if err != nil {
				return err
			}
			plan, err := c.app.Finalize(cmd.Context(), weekID)
			if err != nil {
				return err
			}
			return c.print(plan, func() { fmt.Printf("Plan %s is %s\n", plan.WeekID, plan.Status) })
		},
	}
}

func (c *cli) duplicateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <from-week> <to-week>",
		Short: "Copy a week's menu into another week as a draft",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := c.app.ResolveWeek(args[0])
			if err != nil {
				return err
			}
			to, err := c.app.ResolveWeek(args[1])
			if err != nil {
				return err
			}
			plan, err := c.app.Duplicate(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			return c.print(plan, func() { fmt.Printf("Copied %s to %s\n", from, to) })
		},
	}
}

func (c *cli) weeksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weeks",
		Short: "List the weeks that have a plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			weeks, err := c.app.Weeks(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(weeks, func() {
				for _, w := range weeks {
					fmt.Println(w)
				}
			})
		},
	}
}

func (c *cli) summaryCmd() *cobra.Command {
	var withAdvice bool
	cmd := &cobra.Command{
		Use:   "summary [week]",
		Short: "Expected waste, valorization ideas and score for a week",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekID, err := c.app.ResolveWeek(weekArg(args))
			if err != nil {
				return err
			}
			s, err := c.app.Summary(cmd.Context(), weekID)
			if err != nil {
				return err
			}
			out := map[string]any{"summary": s}
			var tips []string
			if withAdvice {
				res, err := c.app.Advice(cmd.Context(), weekID)
				if err != nil {
					return err
				}
				out["advice"] = res.Advice
				for _, tip := range res.Advice.Tips {
					tips = append(tips, tip.Title+": "+tip.Description)
				}
				if res.Advice.GeneralTip != "" {
					tips = append(tips, res.Advice.GeneralTip)
				}
			}
			return c.print(out, func() {
				printSummary(os.Stdout, s)
				for _, t := range tips {
					fmt.Println("  *", t)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&withAdvice, "advice", false, "ask the LLM advisor for tips")
	return cmd
}

func (c *cli) needsCmd() *cobra.Command {
	var covers int
	cmd := &cobra.Command{
		Use:   "needs [week]",
		Short: "Compute the ingredients to order for a week",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekID, err := c.app.ResolveWeek(weekArg(args))
			if err != nil {
				return err
			}
			if covers < 0 {
				return errors.New("--covers must be positive")
			}
			list, err := c.app.Needs(cmd.Context(), weekID, covers)
			if err != nil {
				return err
			}
			return c.print(list, func() { printNeeds(os.Stdout, list) })
		},
	}
	cmd.Flags().IntVar(&covers, "covers", 0, "number of covers (default: DEFAULT_COVERS)")
	return cmd
}

func (c *cli) alertsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "List stock expiring soon or running low",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alerts, err := c.app.Alerts(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(alerts, func() { printAlerts(os.Stdout, alerts) })
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Load recipes, stock and valorization recipes from a YAML or JSON catalogue",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.cfg.CataloguePath
			if len(args) == 1 {
				path = args[0]
			}
			stats, err := c.app.ImportCatalogue(cmd.Context(), path)
			if err != nil {
				return err
			}
			return c.print(stats, func() {
				fmt.Printf("Imported %d recipes, %d stock items and %d valorization recipes from %s\n",
					stats.Recipes, stats.Inventory, stats.Valorization, path)
			})
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the stored catalogue to a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.ExportCatalogue(cmd.Context(), args[0])
		},
	}
}

func (c *cli) ghostImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ghost-import",
		Short: "Import recipe posts from the Ghost blog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := c.app.ImportFromGhost(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(stats, func() {
				fmt.Printf("Imported %d posts (%d already known, %d failed)\n", stats.Imported, stats.Skipped, stats.Failed)
			})
		},
	}
}

func (c *cli) publishCmd() *cobra.Command {
	var live bool
	cmd := &cobra.Command{
		Use:   "publish [week]",
		Short: "Post a week's menu to the Ghost blog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekID, err := c.app.ResolveWeek(weekArg(args))
			if err != nil {
				return err
			}
			post, err := c.app.PublishMenu(cmd.Context(), weekID, live)
			if err != nil {
				return err
			}
			return c.print(post, func() { fmt.Printf("Created post %s %s\n", post.ID, post.URL) })
		},
	}
	cmd.Flags().BoolVar(&live, "live", false, "publish immediately instead of saving a draft")
	return cmd
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.RequireAPI(); err != nil {
				return err
			}
			router := api.NewRouter(c.app, []byte(c.cfg.APIJWTSecret), c.cfg.CORSOrigins)
			srv := &http.Server{
				Addr:              ":" + c.cfg.APIPort,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Printf("API listening on port %s", c.cfg.APIPort)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			case <-quit:
			}
			log.Println("Shutting down API...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
}

func (c *cli) tokenCmd() *cobra.Command {
	var (
		role string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue a bearer token for the HTTP API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.RequireAPI(); err != nil {
				return err
			}
			token, err := api.GenerateToken([]byte(c.cfg.APIJWTSecret), args[0], role, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "kitchen", "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", api.DefaultTokenTTL, "token lifetime")
	return cmd
}

func (c *cli) metricsCleanupCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "metrics-cleanup",
		Short: "Remove old metric records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			affected, err := c.app.CleanupMetrics(cmd.Context(), days)
			if err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}
			fmt.Printf("Successfully removed %d old metric records.\n", affected)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "keep records for the last N days")
	return cmd
}

// parseSlot reads a day (0-4 or weekday name) and a course name or alias.
func parseSlot(dayArg, courseArg string) (int, recipe.Course, error) {
	day, err := strconv.Atoi(dayArg)
	if err != nil {
		day = -1
		for i, name := range planner.DayNames {
			if strings.EqualFold(name, dayArg) {
				day = i
			}
		}
	}
	if day < 0 || day >= planner.DaysPerWeek {
		return 0, "", fmt.Errorf("invalid day %q: expected 0-4 or Monday-Friday", dayArg)
	}
	course, err := recipe.ParseCourse(courseArg)
	if err != nil {
		return 0, "", err
	}
	return day, course, nil
}
