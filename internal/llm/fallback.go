package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// FallbackGenerator tries each generator in order and returns the first
// successful response.
type FallbackGenerator struct {
	generators []TextGenerator
}

// NewFallbackGenerator chains generators. Nil entries are skipped.
func NewFallbackGenerator(generators ...TextGenerator) *FallbackGenerator {
	f := &FallbackGenerator{}
	for _, g := range generators {
		if g != nil {
			f.generators = append(f.generators, g)
		}
	}
	return f
}

// GenerateContent implements TextGenerator.
func (f *FallbackGenerator) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	if len(f.generators) == 0 {
		return ContentResponse{}, errors.New("no text generator configured")
	}

	var errs []error
	for i, g := range f.generators {
		resp, err := g.GenerateContent(ctx, prompt)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return ContentResponse{}, ctx.Err()
		}
		log.Printf("Text generator %d failed, trying next: %v", i, err)
		errs = append(errs, err)
	}
	return ContentResponse{}, fmt.Errorf("all text generators failed: %w", errors.Join(errs...))
}
