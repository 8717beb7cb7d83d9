package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/digger/internal/collection"
	"github.com/desertthunder/digger/internal/formatter"
	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/repositories"
	"github.com/desertthunder/digger/internal/shared"
	"github.com/urfave/cli/v3"
)

// SelectionView is the JSON shape of a saved selection.
type SelectionView struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	TrackIDs []string `json:"track_ids"`
}

// SelectionsSave stores NAME with the given track ids, replacing an existing selection of that name.
func (r *Runner) SelectionsSave(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	args := cmd.Args().Slice()
	if len(args) < 2 {
		return fmt.Errorf("%w: selection name and at least one track id", shared.ErrMissingArgument)
	}
	name, ids := args[0], args[1:]

	if from := cmd.String("from"); from != "" {
		doc, err := collection.Load(from)
		if err != nil {
			return err
		}
		if _, missing := doc.Resolve(ids); len(missing) > 0 {
			return fmt.Errorf("%w: %v", shared.ErrTrackNotFound, missing)
		}
	}

	db, release, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer release()

	seq, err := repositories.NextSequence(db, "selections")
	if err != nil {
		return err
	}
	sel := models.NewSelection(seq, name, ids)
	if err := repositories.NewSelectionRepository(db).Save(sel); err != nil {
		return err
	}

	r.logger.Info("selection saved", "name", sel.Name(), "tracks", len(sel.TrackIDs()))
	return r.writePlain("✓ Saved selection '%s' (%d tracks)\n", sel.Name(), len(sel.TrackIDs()))
}

// SelectionsList prints the saved selections.
func (r *Runner) SelectionsList(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
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

	if cmd.Bool("json") {
		views := make([]SelectionView, len(selections))
		for i, s := range selections {
			views[i] = SelectionView{ID: s.ID(), Name: s.Name(), TrackIDs: s.TrackIDs()}
		}
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	if len(selections) == 0 {
		return r.writePlain("No saved selections\n")
	}
	r.writePlainHeader(fmt.Sprintf("Saved selections (%d)", len(selections)))
	for _, s := range selections {
		r.writePlain("%s (%d tracks)\n", s.Name(), len(s.TrackIDs()))
	}
	return nil
}

// SelectionsDelete removes the selection named by the first argument.
func (r *Runner) SelectionsDelete(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("%w: selection name", shared.ErrMissingArgument)
	}

	db, release, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer release()

	repo := repositories.NewSelectionRepository(db)
	sel, err := repo.GetByName(name)
	if err != nil {
		return err
	}
	if err := repo.Delete(sel.ID()); err != nil {
		return err
	}

	r.logger.Info("selection deleted", "name", name)
	return r.writePlain("✓ Deleted selection '%s'\n", name)
}

// JobsList prints recent tagging jobs.
func (r *Runner) JobsList(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	db, release, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer release()

	jobs, err := repositories.NewJobRepository(db).List(map[string]any{
		"status": cmd.String("status"),
		"limit":  int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	data, err := formatter.Jobs(jobs, f, r.now())
	if err != nil {
		return err
	}
	_, err = r.output.Write(data)
	return err
}
