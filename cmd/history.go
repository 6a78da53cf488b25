package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"spotfave/internal/shared"
)

// History shows recorded operation outcomes, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if r.history == nil {
		return fmt.Errorf("%w: history database not configured", shared.ErrServiceUnavailable)
	}

	limit := int(cmd.Int("limit"))

	operations, err := r.history.List(limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(operations, true)
	}

	if len(operations) == 0 {
		r.writePlain("No operations recorded yet.\n")
		return nil
	}

	r.writePlain("Recent operations:\n\n")
	for _, op := range operations {
		r.writePlain("%s  %-8s %s\n", op.CreatedAt.Local().Format("2006-01-02 15:04"), op.Command, op.Target)
		if op.Detail != "" {
			r.writePlain("  %s\n", op.Detail)
		}
		r.writePlain("  succeeded: %d  failed: %d\n\n", op.Succeeded, op.Failed)
	}

	return nil
}
