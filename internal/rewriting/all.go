package rewriting

import (
	"context"
	"errors"
	"log"

	"golang.org/x/sync/errgroup"
)

// RewriteAllTones rewrites a post in every DefaultTones tone concurrently.
// Tones that fail are logged and left out; results keep DefaultTones order.
// An error is returned only when every tone fails.
func (r *Rewriter) RewriteAllTones(ctx context.Context, post string, intensity, maxLength int) ([]ToneRewrite, error) {
	base, err := Request{Post: post, Tone: DefaultTones[0], Intensity: intensity, MaxLength: maxLength}.normalize()
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(DefaultTones))
	errs := make([]error, len(DefaultTones))

	var g errgroup.Group
	for i, tone := range DefaultTones {
		req := base
		req.Tone = tone
		g.Go(func() error {
			// Each goroutine owns its slot; failures never cancel siblings
			texts[i], errs[i] = r.RewritePost(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	rewrites := make([]ToneRewrite, 0, len(DefaultTones))
	for i, tone := range DefaultTones {
		if errs[i] != nil {
			log.Printf("[rewrite] tone %q failed: %v", tone, errs[i])
			continue
		}
		rewrites = append(rewrites, ToneRewrite{Tone: tone, Text: texts[i]})
	}

	if len(rewrites) == 0 {
		return nil, errors.Join(errs...)
	}
	return rewrites, nil
}
