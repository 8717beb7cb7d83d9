package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/digger/internal/collection"
	"github.com/desertthunder/digger/internal/dupes"
	"github.com/desertthunder/digger/internal/formatter"
	"github.com/desertthunder/digger/internal/health"
	"github.com/desertthunder/digger/internal/repositories"
	"github.com/desertthunder/digger/internal/synth"
	"github.com/urfave/cli/v3"
)

// CollectionSummary is the inspect command's JSON shape.
type CollectionSummary struct {
	Path         string   `json:"path"`
	Tracks       int      `json:"tracks"`
	Tagged       int      `json:"tagged"`
	MissingGenre int      `json:"missing_genre"`
	MissingYear  int      `json:"missing_year"`
	Folders      int      `json:"folders"`
	Playlists    int      `json:"playlists"`
	Inconsistent []string `json:"inconsistent,omitempty"`
}

func summarize(path string, doc *collection.Document) CollectionSummary {
	s := CollectionSummary{Path: path, Tracks: len(doc.Tracks())}
	for _, t := range doc.Tracks() {
		if _, ok := t.Analysis(); ok {
			s.Tagged++
		}
		if !t.HasGenre() {
			s.MissingGenre++
		}
		if !t.HasYear() {
			s.MissingYear++
		}
	}
	for _, p := range doc.Playlists() {
		if p.Folder {
			s.Folders++
		} else {
			s.Playlists++
		}
		if !p.Consistent() {
			s.Inconsistent = append(s.Inconsistent, strings.Join(append(append([]string{}, p.Path...), p.Name), " / "))
		}
	}
	return s
}

// Inspect prints track and playlist counts for a collection.
func (r *Runner) Inspect(ctx context.Context, cmd *cli.Command) error {
	doc, path, err := r.loadDocument(cmd)
	if err != nil {
		return err
	}
	s := summarize(path, doc)

	if cmd.Bool("json") {
		return r.writeJSON(s, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Collection: " + path)
	r.writePlain("Tracks:        %d\n", s.Tracks)
	r.writePlain("Tagged:        %d\n", s.Tagged)
	r.writePlain("Missing genre: %d\n", s.MissingGenre)
	r.writePlain("Missing year:  %d\n", s.MissingYear)
	r.writePlain("Folders:       %d\n", s.Folders)
	r.writePlain("Playlists:     %d\n", s.Playlists)
	if len(s.Inconsistent) > 0 {
		r.writePlainln("Playlists with stale counts:")
		for _, name := range s.Inconsistent {
			r.writePlain("  • %s\n", name)
		}
	}
	return nil
}

// Health scores metadata completeness.
func (r *Runner) Health(ctx context.Context, cmd *cli.Command) error {
	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	doc, _, err := r.loadDocument(cmd)
	if err != nil {
		return err
	}

	tracks := doc.Tracks()
	rep := health.Compute(tracks, dupes.Find(tracks))
	r.logger.Debug("computed health", "tracks", rep.Tracks, "score", rep.Score)

	data, err := formatter.Health(rep, f)
	if err != nil {
		return err
	}
	return r.writeReport(cmd, data)
}

// Dupes reports duplicate groups.
func (r *Runner) Dupes(ctx context.Context, cmd *cli.Command) error {
	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	doc, _, err := r.loadDocument(cmd)
	if err != nil {
		return err
	}

	res := dupes.Find(doc.Tracks())
	r.logger.Info("duplicate scan complete", "groups", len(res.Groups), "members", res.Members())

	data, err := formatter.Duplicates(res, f)
	if err != nil {
		return err
	}
	return r.writeReport(cmd, data)
}

// Export writes the collection with normalized locations.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	doc, _, err := r.loadDocument(cmd)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if err := doc.Save(output); err != nil {
		return err
	}
	r.logger.Info("collection exported", "path", output, "tracks", len(doc.Tracks()))
	return r.writePlain("✓ Exported %d tracks to %s\n", len(doc.Tracks()), output)
}

// Synth rebuilds the generated playlist folder and writes the collection.
func (r *Runner) Synth(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, _, err := r.loadDocument(cmd)
	if err != nil {
		return err
	}

	db, release, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer release()

	selections, err := repositories.NewSelectionRepository(db).List(nil)
	if err != nil {
		return err
	}

	opts := synth.Options{RootName: config.Synth.RootName, Selections: selections}
	if root := cmd.String("root"); root != "" {
		opts.RootName = root
	}
	if config.Synth.IncludeDuplicates {
		opts.DuplicateIDs = dupes.Find(doc.Tracks()).Sorted()
	}

	sum, err := synth.Synthesize(doc, doc.Tracks(), opts)
	if err != nil {
		return err
	}
	if len(sum.Missing) > 0 {
		r.logger.Warn("selections reference tracks not in the collection", "ids", sum.Missing)
	}

	output := cmd.String("output")
	if err := doc.Save(output); err != nil {
		return err
	}
	r.logger.Info("playlists synthesized", "root", sum.RootName, "playlists", sum.Playlists, "path", output)

	if cmd.Bool("json") {
		return r.writeJSON(sum, true)
	}
	return r.writeSynthSummary(sum, output)
}

func (r *Runner) writeSynthSummary(sum *synth.Summary, output string) error {
	r.writePlainHeader(fmt.Sprintf("Synthesized '%s'", sum.RootName))
	r.writePlain("Folders:    %d\n", sum.Folders)
	r.writePlain("Playlists:  %d\n", sum.Playlists)
	r.writePlain("Entries:    %d\n", sum.Entries)
	r.writePlain("Duplicates: %d\n", sum.Duplicates)
	if sum.Replaced > 0 {
		r.writePlain("Replaced %d previous folder(s)\n", sum.Replaced)
	}
	return r.writePlain("✓ Written to %s\n", output)
}
