package app

import (
	"context"
	"fmt"
	"log"

	"cantine-planner/internal/ghost"
)

// BlogImport counts the outcome of a Ghost import.
type BlogImport struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// ImportFromGhost runs every recipe post of the blog through the extractor.
// Posts already imported, recognised by their URL, are skipped; a post the
// model cannot read is logged and counted as failed.
func (a *App) ImportFromGhost(ctx context.Context) (BlogImport, error) {
	var stats BlogImport
	if a.clipper == nil {
		return stats, ErrNoTextGenerator
	}

	posts, err := a.blog.FetchRecipes(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to fetch recipes from Ghost: %w", err)
	}

	existing, err := a.recipeRepo.List(ctx)
	if err != nil {
		return stats, err
	}
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		if r.SourceURL != "" {
			seen[r.SourceURL] = true
		}
	}

	for _, post := range posts {
		source := post.URL
		if source == "" {
			source = "ghost:" + post.ID
		}
		if seen[source] {
			stats.Skipped++
			continue
		}

		res, err := a.clipper.ClipHTML(ctx, source, post.Title, post.HTML)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			log.Printf("Warning: failed to import Ghost post '%s': %v", post.Title, err)
			stats.Failed++
			continue
		}
		a.recordMeta(ctx, res.Meta)
		seen[source] = true
		stats.Imported++
	}

	log.Printf("Ghost import: %d imported, %d skipped, %d failed", stats.Imported, stats.Skipped, stats.Failed)
	return stats, nil
}

// PublishMenu posts a week's menu to the blog, as a draft unless publish is set.
func (a *App) PublishMenu(ctx context.Context, weekID string, publish bool) (*ghost.Post, error) {
	plan, cat, err := a.planAndCatalogue(ctx, weekID)
	if err != nil {
		return nil, err
	}
	html, err := ghost.RenderMenu(plan, cat)
	if err != nil {
		return nil, err
	}
	post, err := a.blog.CreatePost(ctx, "Menu de la semaine "+weekID, html, publish)
	if err != nil {
		return nil, fmt.Errorf("failed to publish menu: %w", err)
	}
	return post, nil
}
