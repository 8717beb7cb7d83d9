package repositories

import (
	"errors"
	"testing"

	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/shared"
)

func TestAnalysisRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewAnalysisRepository(db)
			if err := repo.Create(models.NewCachedAnalysis(0, "", sampleAnalysis(), models.StrategyStandard)); err == nil {
				t.Fatal("expected validation error for empty fingerprint")
			}
		})

		t.Run("DuplicateFingerprint", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewAnalysisRepository(db)
			if err := repo.Create(models.NewCachedAnalysis(0, "fp", sampleAnalysis(), models.StrategyStandard)); err != nil {
				t.Fatalf("failed to create first analysis: %v", err)
			}
			if err := repo.Create(models.NewCachedAnalysis(0, "fp", sampleAnalysis(), models.StrategyStandard)); err == nil {
				t.Fatal("expected error when creating analysis with duplicate fingerprint")
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewAnalysisRepository(db)
			c := models.NewCachedAnalysis(0, "fp", sampleAnalysis(), models.StrategyStandard)
			c.SetID("nonexistent-id")

			if err := repo.Update(c); !errors.Is(err, shared.ErrAnalysisNotFound) {
				t.Fatalf("expected ErrAnalysisNotFound, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			if err := NewAnalysisRepository(db).Delete("nonexistent-id"); !errors.Is(err, shared.ErrAnalysisNotFound) {
				t.Fatalf("expected ErrAnalysisNotFound, got %v", err)
			}
		})
	})
}

func TestSelectionRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			if err := NewSelectionRepository(db).Create(models.NewSelection(0, "  ", []string{"1"})); err == nil {
				t.Fatal("expected validation error for blank name")
			}
		})

		t.Run("DuplicateName", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSelectionRepository(db)
			if err := repo.Create(models.NewSelection(0, "Friday", []string{"1"})); err != nil {
				t.Fatalf("failed to create first selection: %v", err)
			}
			if err := repo.Create(models.NewSelection(0, "Friday", []string{"2"})); err == nil {
				t.Fatal("expected error when creating selection with duplicate name")
			}

			all, err := repo.List(nil)
			if err != nil {
				t.Fatalf("failed to list selections: %v", err)
			}
			if len(all) != 1 || all[0].TrackIDs()[0] != "1" {
				t.Error("failed create should leave the first selection untouched")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			if _, err := NewSelectionRepository(db).Get("nonexistent-id"); !errors.Is(err, shared.ErrSelectionNotFound) {
				t.Fatalf("expected ErrSelectionNotFound, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			s := models.NewSelection(0, "Friday", []string{"1"})
			s.SetID("nonexistent-id")
			if err := NewSelectionRepository(db).Update(s); !errors.Is(err, shared.ErrSelectionNotFound) {
				t.Fatalf("expected ErrSelectionNotFound, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			if err := NewSelectionRepository(db).Delete("nonexistent-id"); !errors.Is(err, shared.ErrSelectionNotFound) {
				t.Fatalf("expected ErrSelectionNotFound, got %v", err)
			}
		})
	})
}

func TestJobRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			if err := NewJobRepository(db).Create(models.NewTagJob(0, "", models.ModeFull)); err == nil {
				t.Fatal("expected validation error for empty source path")
			}
		})

		t.Run("InvalidStatus", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			job := models.NewTagJob(0, "c.xml", models.ModeFull)
			job.SetStatus("paused")
			if err := NewJobRepository(db).Create(job); err == nil {
				t.Fatal("expected validation error for unknown status")
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("Deleted", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewJobRepository(db)
			job := models.NewTagJob(0, "c.xml", models.ModeFull)
			if err := repo.Create(job); err != nil {
				t.Fatalf("failed to create job: %v", err)
			}
			if err := repo.Delete(job.ID()); err != nil {
				t.Fatalf("failed to delete job: %v", err)
			}

			if err := repo.Update(job); !errors.Is(err, shared.ErrJobNotFound) {
				t.Fatalf("expected ErrJobNotFound when updating deleted job, got %v", err)
			}
			if err := repo.Delete(job.ID()); !errors.Is(err, shared.ErrJobNotFound) {
				t.Fatalf("expected ErrJobNotFound when deleting twice, got %v", err)
			}
		})
	})

	t.Run("ClosedDatabase", func(t *testing.T) {
		db := setupTestDB(t)
		db.Close()

		repo := NewJobRepository(db)
		if err := repo.Create(models.NewTagJob(0, "c.xml", models.ModeFull)); err == nil {
			t.Error("expected error creating job on closed database")
		}
		if _, err := repo.List(nil); err == nil {
			t.Error("expected error listing jobs on closed database")
		}
	})
}
