package repositories

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/shared"
)

// AnalysisCacheAdapter implements tasks.AnalysisCache using AnalysisRepository.
//
// Store failures, including UNIQUE constraint races, are logged and dropped; the cache never fails a job.
type AnalysisCacheAdapter struct {
	repo   *AnalysisRepository
	logger *log.Logger
}

// NewAnalysisCacheAdapter creates a new AnalysisCacheAdapter with the given repository. A nil logger discards.
func NewAnalysisCacheAdapter(repo *AnalysisRepository, logger *log.Logger) *AnalysisCacheAdapter {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &AnalysisCacheAdapter{repo: repo, logger: logger}
}

// Lookup returns the cached analysis for fingerprint.
func (a *AnalysisCacheAdapter) Lookup(fingerprint string) (models.Analysis, bool) {
	c, err := a.repo.GetByFingerprint(fingerprint)
	if err != nil {
		if !errors.Is(err, shared.ErrAnalysisNotFound) {
			a.logger.Warn("Cache lookup failed", "fingerprint", fingerprint, "error", err)
		}
		return models.Analysis{}, false
	}
	return c.Analysis(), true
}

// Store caches an analysis. Known fields of an are merged over any earlier result for the fingerprint, so a
// narrower job never erases the tags a full job found.
func (a *AnalysisCacheAdapter) Store(fingerprint string, an models.Analysis, s models.Strategy) {
	existing, err := a.repo.GetByFingerprint(fingerprint)
	if err == nil {
		existing.SetAnalysis(existing.Analysis().Merge(an))
		existing.SetStrategy(s)
		if err := a.repo.Update(existing); err != nil {
			a.logger.Warn("Cache update failed", "fingerprint", fingerprint, "error", err)
		}
		return
	}

	if err := a.repo.Create(models.NewCachedAnalysis(0, fingerprint, an, s)); err != nil {
		a.logger.Debug("Cache store skipped", "fingerprint", fingerprint, "error", err)
	}
}
