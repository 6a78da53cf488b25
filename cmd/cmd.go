// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// configFlag is the shared --config/-c flag carried by every command that
// reads or writes the configuration file.
func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles initial configuration and authorization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config file and authorize with Spotify",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "skip-auth",
				Usage: "Only create the config file, do not run the OAuth flow",
			},
		},
		Action: r.Setup,
	}
}

// addCommand saves a track to every playlist in a genre group.
func addCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add one or more tracks to all playlists in a genre group",
		ArgsUsage: "<track-url-or-id>...",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "genre",
				Aliases: []string{"g"},
				Usage:   "Genre group from config (default group when omitted)",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Write to locked playlists anyway",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the per-target results as JSON",
			},
		},
		Action: r.Add,
	}
}

// playlistsCommand groups playlist inspection, copy, export and sharing.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your playlists",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to show",
						Value: 50,
					},
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Case-insensitive name filter",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PlaylistsList,
			},
			{
				Name:  "copy",
				Usage: "Copy a playlist's tracks into a new playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "source",
					},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Name for the new playlist (default: '<source> (Copy)')",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Make the new playlist public",
					},
				},
				Action: r.PlaylistsCopy,
			},
			{
				Name:  "url",
				Usage: "Print the shareable URL for a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "playlist",
					},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.PlaylistsURL,
			},
			{
				Name:  "qr",
				Usage: "Write a QR code PNG for a playlist's share URL",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "playlist",
					},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output PNG path (default: <playlist-id>.png)",
					},
					&cli.IntFlag{
						Name:  "size",
						Usage: "Image size in pixels",
					},
				},
				Action: r.PlaylistsQR,
			},
			{
				Name:  "export",
				Usage: "Export a playlist with all tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "playlist",
					},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print raw JSON instead of writing a file",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.PlaylistsExport,
			},
			{
				Name:  "export-all",
				Usage: "Export every playlist concurrently",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output-dir",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: spotify_export_<epoch>)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate-limit",
						Usage: "Playlist fetches per second",
						Value: 5.0,
					},
				},
				Action: r.PlaylistsExportAll,
			},
		},
	}
}

// curateCommand builds a new playlist from recommendations.
func curateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "curate",
		Usage: "Create a recommendation playlist seeded from an existing one",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "source",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Name for the curated playlist",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of recommended tracks to request",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "private",
				Usage: "Make the curated playlist private (public by default)",
			},
		},
		Action: r.Curate,
	}
}

// discoverCommand surfaces listening-history insights.
func discoverCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "discover",
		Usage: "Explore your listening history for forgotten tracks and new genres",
		Commands: []*cli.Command{
			{
				Name:  "old-favorites",
				Usage: "Find long-term favorites you have stopped playing",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of suggestions",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output as JSON",
					},
				},
				Action: r.DiscoverOldFavorites,
			},
			{
				Name:  "genres",
				Usage: "Suggest genres adjacent to your current listening",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "time-range",
						Aliases: []string{"t"},
						Usage:   "Listening window: short_term, medium_term or long_term",
						Value:   "medium_term",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output as JSON",
					},
				},
				Action: r.DiscoverGenres,
			},
		},
	}
}

// locksCommand manages the playlist lock registry.
func locksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "locks",
		Usage: "Manage the playlist lock registry",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List locked playlists",
				Flags:  []cli.Flag{configFlag()},
				Action: r.LocksList,
			},
			{
				Name:  "add",
				Usage: "Lock a playlist against automated changes",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "playlist",
					},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.LocksAdd,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Unlock a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "playlist",
					},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.LocksRemove,
			},
		},
	}
}

// analyzeCommand reports BPM, key and genre information for a playlist.
func analyzeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Show BPM, key and genre breakdown for a playlist",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "playlist",
			},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Output the per-track report as CSV",
			},
			&cli.BoolFlag{
				Name:  "markdown",
				Usage: "Output the report as a Markdown table",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Analyze,
	}
}

// historyCommand shows recorded operation outcomes.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent operation history",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of entries to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist browsing and curation",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.TUI,
	}
}
