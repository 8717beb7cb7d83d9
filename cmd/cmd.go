// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/digger/internal/formatter"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

func formatFlag(value formatter.Format) cli.Flag {
	names := make([]string, 0, len(formatter.Formats))
	for _, f := range formatter.Formats {
		names = append(names, string(f))
	}
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Report format (" + strings.Join(names, ", ") + ")",
		Value:   string(value),
	}
}

// setupCommand prepares local state
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing and run database migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.RollbackDatabase,
			},
		},
	}
}

func inspectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Summarize a collection's tracks and playlists",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Inspect,
	}
}

func healthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "health",
		Usage:     "Score metadata completeness of a collection",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			configFlag(),
			formatFlag(formatter.FormatText),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the report to a file",
			},
		},
		Action: r.Health,
	}
}

func dupesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "dupes",
		Aliases:   []string{"duplicates"},
		Usage:     "Report duplicate tracks",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			configFlag(),
			formatFlag(formatter.FormatTable),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the report to a file",
			},
		},
		Action: r.Dupes,
	}
}

func tagCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tag",
		Usage:     "Fill missing genre, year and mood tags through the tagging service",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Which tracks to tag (full, genre, year)",
				Value:   "full",
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Path of the enriched collection",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Monitor the job in an interactive terminal UI",
			},
			formatFlag(formatter.FormatTable),
		},
		Action: r.Tag,
	}
}

func synthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "synth",
		Usage:     "Generate playlists from tags, duplicates and saved selections",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Path of the rewritten collection",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "Name of the generated top-level folder (defaults to synth.root_name)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the summary as JSON",
			},
		},
		Action: r.Synth,
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write a collection with normalized track locations",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Path of the exported collection",
				Required: true,
			},
		},
		Action: r.Export,
	}
}

// selectionsCommand manages saved ad-hoc playlists
func selectionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "selections",
		Aliases: []string{"sel"},
		Usage:   "Manage saved track selections",
		Commands: []*cli.Command{
			{
				Name:      "save",
				Usage:     "Save or replace a named selection of track ids",
				ArgsUsage: "NAME TRACK_ID...",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "from",
						Usage: "Collection file used to check the track ids",
					},
				},
				Action: r.SelectionsSave,
			},
			{
				Name:  "list",
				Usage: "List saved selections",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SelectionsList,
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved selection",
				ArgsUsage: "NAME",
				Flags:     []cli.Flag{configFlag()},
				Action:    r.SelectionsDelete,
			},
		},
	}
}

func jobsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "jobs",
		Usage: "Tagging job history",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent tagging jobs",
				Flags: []cli.Flag{
					configFlag(),
					formatFlag(formatter.FormatTable),
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only jobs with this status (running, completed, failed, cancelled)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of jobs to return",
						Value: 20,
					},
				},
				Action: r.JobsList,
			},
		},
	}
}
