package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"spotfave/internal/shared"
	"spotfave/internal/tasks"
)

// Add saves one or more tracks to every playlist in the selected genre group.
//
// A track that fails to parse or resolve is skipped with a warning; the
// remaining tracks still run.
func (r *Runner) Add(ctx context.Context, cmd *cli.Command) error {
	trackRefs := cmd.Args().Slice()
	if len(trackRefs) == 0 {
		return fmt.Errorf("%w: at least one track URL or ID is required", shared.ErrMissingArgument)
	}

	if err := r.requireCatalog(); err != nil {
		return err
	}

	opts := tasks.AddOptions{
		Genre: cmd.String("genre"),
		Force: cmd.Bool("force"),
	}

	results := make([]*tasks.MutationResult, 0, len(trackRefs))
	processed := 0

	for _, ref := range trackRefs {
		r.logger.Info("adding track", "ref", ref, "genre", opts.Genre, "force", opts.Force)

		progressCh := make(chan tasks.ProgressUpdate, 50)
		go func() {
			for update := range progressCh {
				switch update.Phase {
				case tasks.ResolveRef:
					r.writePlain("🔗 %s\n", update.Message)
				case tasks.SaveLiked:
					r.writePlain("💚 %s\n", update.Message)
				case tasks.AddTracks:
					r.writePlain("➕ %s\n", update.Message)
				case tasks.FetchPlaylists:
					r.writePlain("📥 %s\n", update.Message)
				}
			}
		}()

		result, err := r.engine.AddTrack(ctx, progressCh, ref, opts)
		if err != nil {
			if reauthed, authErr := r.handleAuthError(ctx, err); reauthed {
				if authErr != nil {
					close(progressCh)
					return authErr
				}
				result, err = r.engine.AddTrack(ctx, progressCh, ref, opts)
			}
		}
		close(progressCh)

		if err != nil {
			if errors.Is(err, shared.ErrUnknownGenre) {
				return err
			}
			r.logger.Warn("skipping track", "ref", ref, "error", err)
			r.writePlain("✗ Skipping %s: %v\n\n", ref, err)
			continue
		}

		processed++
		results = append(results, result)

		r.recordHistory("add", ref, result.Succeeded(), result.Failed(),
			fmt.Sprintf("added to %d of %d targets", result.Succeeded(), len(result.Targets)))

		if !cmd.Bool("json") {
			r.writePlain("\nAdded to %d of %d targets:\n", result.Succeeded(), len(result.Targets))
			for _, target := range result.Targets {
				switch target.Reason {
				case "":
					r.writePlain("  ✓ %s\n", target.Target)
				case tasks.ReasonLocked:
					r.writePlain("  🔒 %s (locked, skipped)\n", target.Target)
				case tasks.ReasonNotFound:
					r.writePlain("  ✗ %s (not found)\n", target.Target)
				default:
					r.writePlain("  ✗ %s (%v)\n", target.Target, target.Err)
				}
			}
			r.writePlain("\n")
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, true)
	}

	r.writePlainHeader(fmt.Sprintf("%d/%d tracks processed", processed, len(trackRefs)))

	return nil
}
