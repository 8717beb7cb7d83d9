package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/digger/internal/collection"
	"github.com/desertthunder/digger/internal/formatter"
	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/repositories"
	"github.com/desertthunder/digger/internal/shared"
	"github.com/desertthunder/digger/internal/tasks"
	"github.com/desertthunder/digger/internal/ui"
	"github.com/urfave/cli/v3"
)

// Tag enriches the tracks that mode selects and writes the collection to --output.
//
// The job is recorded in the database with its final telemetry. A cancelled job still writes what it resolved.
func (r *Runner) Tag(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	mode, err := models.ParseMode(cmd.String("mode"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	doc, path, err := r.loadDocument(cmd)
	if err != nil {
		return err
	}

	db, release, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer release()

	jobs := repositories.NewJobRepository(db)
	seq, err := repositories.NextSequence(db, "tag_jobs")
	if err != nil {
		return err
	}
	job := models.NewTagJob(seq, path, mode)
	if err := jobs.Create(job); err != nil {
		return err
	}
	logger := shared.WithLogger(r.logger, "job", job.ID(), "mode", mode.String())

	opts := tasks.OptionsFromConfig(config.Scheduler)
	opts.Cache = repositories.NewAnalysisCacheAdapter(repositories.NewAnalysisRepository(db), logger)
	opts.Logger = logger
	opts.Clock = r.now
	scheduler := tasks.NewScheduler(r.taggerFor(config), doc, opts)

	pending := tasks.SelectPending(doc.Tracks(), mode)
	logger.Info("tagging collection", "path", path, "tracks", len(doc.Tracks()), "pending", len(pending))

	var tel *tasks.Telemetry
	var runErr error
	if cmd.Bool("tui") {
		tel, runErr = ui.Run(ctx, fmt.Sprintf("Tagging %s (%s)", path, mode), pending,
			func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.Telemetry, error) {
				return scheduler.RunJob(ctx, progress, pending, mode)
			})
	} else {
		tel, runErr = r.runWithProgress(ctx, scheduler, pending, mode)
	}

	if err := r.recordJob(jobs, job, tel, runErr); err != nil {
		logger.Error("failed to record job", "error", err)
	}

	if runErr != nil && !errors.Is(runErr, shared.ErrJobCancelled) {
		return runErr
	}

	output := cmd.String("output")
	if err := doc.Save(output); err != nil {
		return err
	}
	logger.Info("collection written", "path", output)

	if tel != nil {
		data, err := formatter.Telemetry(*tel, f)
		if err != nil {
			return err
		}
		if _, err := r.output.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return runErr
}

// runWithProgress runs the job and logs each progress update.
func (r *Runner) runWithProgress(
	ctx context.Context, scheduler *tasks.Scheduler, pending []*collection.Track, mode models.Mode,
) (*tasks.Telemetry, error) {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			r.logger.Info(u.Message, "phase", u.Phase.String(), "step", u.Step, "total", u.Total)
		}
	}()

	tel, err := scheduler.RunJob(ctx, progress, pending, mode)
	close(progress)
	<-done
	return tel, err
}

// recordJob stores the job's final counts and status.
func (r *Runner) recordJob(jobs *repositories.JobRepository, job *models.TagJob, tel *tasks.Telemetry, err error) error {
	if tel != nil {
		job.SetCounts(tel.ItemsTotal, tel.ItemsProcessed, len(tel.Unresolved))
		job.SetUsage(tel.Cost, tel.InputUnits, tel.OutputUnits)
		if !tel.StartedAt.IsZero() {
			job.SetStartedAt(tel.StartedAt)
		}
	}

	switch {
	case err == nil:
		job.Finish(models.JobStatusCompleted, nil)
	case errors.Is(err, shared.ErrJobCancelled):
		job.Finish(models.JobStatusCancelled, err)
	default:
		job.Finish(models.JobStatusFailed, err)
	}
	return jobs.Update(job)
}
