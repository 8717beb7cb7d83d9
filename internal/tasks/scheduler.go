package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/desertthunder/digger/internal/collection"
	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/services"
	"github.com/desertthunder/digger/internal/shared"
	"github.com/desertthunder/digger/internal/vocab"
)

// chunk is one request worth of tracks.
type chunk struct {
	tracks []*collection.Track
	req    services.Request
}

// chunkResult carries a tagger reply back to the merging goroutine.
type chunkResult struct {
	chunk chunk
	resp  *services.Response
	err   error
}

// RunJob enriches tracks under mode and returns the job telemetry.
//
// Tracks are deduplicated by id; each counts at most once towards ItemsProcessed. Items that no level resolves are
// listed in [Telemetry.Unresolved] and the job still succeeds. On cancellation or timeout the telemetry so far is
// returned together with [shared.ErrJobCancelled].
func (s *Scheduler) RunJob(ctx context.Context, progress chan<- ProgressUpdate, tracks []*collection.Track, mode models.Mode) (*Telemetry, error) {
	logger := shared.WithLogger(s.opts.Logger, "mode", mode.String())
	items := dedupe(tracks)
	tel := &Telemetry{Mode: mode, ItemsTotal: len(items), StartedAt: s.opts.Clock()}

	if s.tagger == nil {
		tel.finish(s.opts.Clock(), items, nil)
		return tel, fmt.Errorf("%w: no tagger configured", shared.ErrCollaboratorUnavailable)
	}

	if s.opts.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.JobTimeout)
		defer cancel()
	}

	resolved := make(map[string]bool, len(items))
	pending := s.lookupCache(items, mode, tel, resolved)
	if tel.CacheHits > 0 {
		logger.Info("Resolved from cache", "hits", tel.CacheHits)
		tel.tick(s.opts.Clock())
		s.sendProgress(progress, cacheUpdate(tel.snapshot()))
	}

	if c, ok := s.tagger.(services.Checker); ok && len(pending) > 0 {
		if err := c.Check(ctx); err != nil && ctx.Err() == nil {
			tel.finish(s.opts.Clock(), items, resolved)
			logger.Error("Tagging service unavailable", "service", s.tagger.Name(), "error", err)
			return tel, err
		}
	}

	for level := 0; len(pending) > 0 && level < s.opts.MaxLevels; level++ {
		if err := ctx.Err(); err != nil {
			break
		}
		size, width, strategy := s.opts.level(level, mode)
		tel.Levels = level + 1
		logger.Info("Starting level", "level", level, "pending", len(pending), "chunk_size", size, "width", width, "strategy", strategy)

		retry, err := s.runLevel(ctx, progress, tel, resolved, pending, mode, level, size, width, strategy)
		if err != nil {
			tel.finish(s.opts.Clock(), items, resolved)
			logger.Error("Job aborted", "error", err)
			return tel, err
		}
		pending = retry
	}

	tel.finish(s.opts.Clock(), items, resolved)
	if err := ctx.Err(); err != nil {
		logger.Warn("Job cancelled", "processed", tel.ItemsProcessed, "total", tel.ItemsTotal)
		if errors.Is(err, context.DeadlineExceeded) {
			return tel, fmt.Errorf("%w: %w", shared.ErrJobCancelled, shared.ErrTimeout)
		}
		return tel, fmt.Errorf("%w: %v", shared.ErrJobCancelled, err)
	}

	logger.Info("Job complete", "processed", tel.ItemsProcessed, "unresolved", len(tel.Unresolved), "requests", tel.Requests)
	s.sendProgress(progress, completeUpdate(tel.snapshot()))
	return tel, nil
}

// lookupCache applies cached results that fill the gap and returns the tracks still pending.
func (s *Scheduler) lookupCache(items []*collection.Track, mode models.Mode, tel *Telemetry, resolved map[string]bool) []*collection.Track {
	if s.opts.Cache == nil {
		return items
	}
	pending := make([]*collection.Track, 0, len(items))
	for _, t := range items {
		a, ok := s.opts.Cache.Lookup(t.Fingerprint())
		if !ok || !mode.Covers(a) {
			pending = append(pending, t)
			continue
		}
		s.doc.Apply(t, a, mode)
		resolved[t.ID()] = true
		tel.ItemsProcessed++
		tel.CacheHits++
	}
	return pending
}

// runLevel sends one level of chunks and merges replies as they complete. It returns the tracks to retry.
//
// Only [shared.ErrCollaboratorUnavailable] is returned as an error; every other failure lands in the retry list.
func (s *Scheduler) runLevel(
	ctx context.Context, progress chan<- ProgressUpdate, tel *Telemetry, resolved map[string]bool,
	pending []*collection.Track, mode models.Mode, level, size, width int, strategy models.Strategy,
) ([]*collection.Track, error) {
	chunks := split(pending, size, mode, strategy)
	s.sendProgress(progress, levelUpdate(tel.snapshot(), level, len(pending), len(chunks)))

	levelCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var limiter *rate.Limiter
	if s.opts.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(s.opts.Delay), 1)
	}

	results := make(chan chunkResult)

	go func() {
		var g errgroup.Group
		g.SetLimit(width)
		for _, c := range chunks {
			if levelCtx.Err() != nil {
				break
			}
			if limiter != nil {
				if err := limiter.Wait(levelCtx); err != nil {
					break
				}
			}
			g.Go(func() error {
				resp, err := s.tagger.Tag(levelCtx, c.req)
				select {
				case results <- chunkResult{chunk: c, resp: resp, err: err}:
				case <-levelCtx.Done():
				}
				return nil
			})
		}
		g.Wait()
		close(results)
	}()

	var (
		retry    []*collection.Track
		abortErr error
	)
	for r := range results {
		if abortErr != nil {
			continue
		}
		tel.Requests++

		if r.err != nil {
			if errors.Is(r.err, shared.ErrCollaboratorUnavailable) {
				abortErr = r.err
				cancel()
				continue
			}
			err := fmt.Errorf("%w: %w", shared.ErrChunkFailure, r.err)
			tel.FailedChunks++
			retry = append(retry, r.chunk.tracks...)
			s.opts.Logger.Warn("Chunk failed", "level", level, "size", len(r.chunk.tracks), "error", err)
			tel.tick(s.opts.Clock())
			s.sendProgress(progress, chunkFailedUpdate(tel.snapshot(), len(r.chunk.tracks), err))
			continue
		}

		if r.resp == nil || len(r.resp.Results) == 0 {
			tel.FailedChunks++
			if r.resp != nil {
				tel.addUsage(r.resp.Usage)
			}
			retry = append(retry, r.chunk.tracks...)
			s.opts.Logger.Warn("Chunk returned no results", "level", level, "size", len(r.chunk.tracks))
			tel.tick(s.opts.Clock())
			s.sendProgress(progress, chunkFailedUpdate(tel.snapshot(), len(r.chunk.tracks), shared.ErrChunkFailure))
			continue
		}

		tel.addUsage(r.resp.Usage)
		n, missed := s.merge(r.chunk, r.resp, mode, strategy, resolved)
		tel.ItemsProcessed += n
		retry = append(retry, missed...)
		s.opts.Logger.Debug("Chunk merged", "level", level, "resolved", n, "retry", len(missed))
		tel.tick(s.opts.Clock())
		s.sendProgress(progress, chunkMergedUpdate(tel.snapshot(), n, len(r.chunk.tracks)))
	}

	if abortErr != nil {
		return nil, abortErr
	}
	return retry, nil
}

// merge validates and applies the results of one chunk. Results for ids outside the chunk are ignored and the first
// result per id wins. It returns the number resolved and the tracks to retry.
func (s *Scheduler) merge(
	c chunk, resp *services.Response, mode models.Mode, strategy models.Strategy, resolved map[string]bool,
) (int, []*collection.Track) {
	byID := make(map[string]services.Result, len(resp.Results))
	for _, r := range resp.Results {
		if _, seen := byID[r.ID]; !seen {
			byID[r.ID] = r
		}
	}

	var (
		n     int
		retry []*collection.Track
	)
	for _, t := range c.tracks {
		if resolved[t.ID()] {
			continue
		}
		res, ok := byID[t.ID()]
		if !ok {
			retry = append(retry, t)
			continue
		}
		a := vocab.Validate(res.Raw())
		if !mode.Resolves(a) {
			retry = append(retry, t)
			continue
		}
		s.doc.Apply(t, a, mode)
		if s.opts.Cache != nil {
			s.opts.Cache.Store(t.Fingerprint(), a, strategy)
		}
		resolved[t.ID()] = true
		n++
	}
	return n, retry
}

// finish stamps the end time, replaces the moving rate with the job average and lists the ids not in resolved,
// in input order.
func (t *Telemetry) finish(now time.Time, items []*collection.Track, resolved map[string]bool) {
	t.FinishedAt = now
	t.samples = nil
	t.RatePerMinute, t.ETA = 0, 0
	if minutes := t.Elapsed().Minutes(); minutes > 0 {
		t.RatePerMinute = float64(t.ItemsProcessed) / minutes
	}
	t.Unresolved = nil
	for _, it := range items {
		if !resolved[it.ID()] {
			t.Unresolved = append(t.Unresolved, it.ID())
		}
	}
}

// dedupe drops repeated track ids, keeping the first occurrence.
func dedupe(tracks []*collection.Track) []*collection.Track {
	seen := make(map[string]bool, len(tracks))
	out := make([]*collection.Track, 0, len(tracks))
	for _, t := range tracks {
		if t == nil || seen[t.ID()] {
			continue
		}
		seen[t.ID()] = true
		out = append(out, t)
	}
	return out
}

// split partitions tracks into chunks of at most size items, preserving order.
func split(tracks []*collection.Track, size int, mode models.Mode, strategy models.Strategy) []chunk {
	chunks := make([]chunk, 0, (len(tracks)+size-1)/size)
	for start := 0; start < len(tracks); start += size {
		end := min(start+size, len(tracks))
		part := tracks[start:end]
		req := services.Request{Mode: mode, Strategy: strategy, Items: make([]services.Item, len(part))}
		for i, t := range part {
			req.Items[i] = toItem(t)
		}
		chunks = append(chunks, chunk{tracks: part, req: req})
	}
	return chunks
}
