package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func sampleAnalysis() models.Analysis {
	return models.Analysis{
		Mood:      "Chill",
		SubGenre:  "Deep House",
		MainGenre: "House",
		Situation: "Warm Up",
		Year:      2019,
		TagString: "#Chill #DeepHouse #WarmUp",
	}
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "tag_jobs")
		if err != nil {
			t.Fatalf("NextSequence() error = %v", err)
		}
		if got != want {
			t.Errorf("NextSequence() = %d, want %d", got, want)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for a table without a sequence")
	}
}

func TestAnalysisRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAnalysisRepository(db)
		c := models.NewCachedAnalysis(0, "novamidnightdrive", sampleAnalysis(), models.StrategyStandard)

		if err := repo.Create(c); err != nil {
			t.Fatalf("failed to create analysis: %v", err)
		}
		if c.ID() == "" || c.Sequence() != 1 {
			t.Errorf("expected id and sequence 1, got %q and %d", c.ID(), c.Sequence())
		}
	})

	t.Run("GetByFingerprint", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAnalysisRepository(db)
		c := models.NewCachedAnalysis(0, "novamidnightdrive", sampleAnalysis(), models.StrategyAuthoritative)
		if err := repo.Create(c); err != nil {
			t.Fatalf("failed to create analysis: %v", err)
		}

		got, err := repo.GetByFingerprint("novamidnightdrive")
		if err != nil {
			t.Fatalf("failed to get analysis: %v", err)
		}
		if got.ID() != c.ID() {
			t.Errorf("expected ID %s, got %s", c.ID(), got.ID())
		}
		if got.Analysis() != sampleAnalysis() {
			t.Errorf("analysis = %+v, want %+v", got.Analysis(), sampleAnalysis())
		}
		if got.Strategy() != models.StrategyAuthoritative {
			t.Errorf("strategy = %v, want authoritative", got.Strategy())
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAnalysisRepository(db)
		c := models.NewCachedAnalysis(0, "fp", sampleAnalysis(), models.StrategyStandard)
		if err := repo.Create(c); err != nil {
			t.Fatalf("failed to create analysis: %v", err)
		}

		a := sampleAnalysis()
		a.Year = 2001
		c.SetAnalysis(a)
		if err := repo.Update(c); err != nil {
			t.Fatalf("failed to update analysis: %v", err)
		}

		got, err := repo.Get(c.ID())
		if err != nil {
			t.Fatalf("failed to get analysis: %v", err)
		}
		if got.Analysis().Year != 2001 {
			t.Errorf("year = %d, want 2001", got.Analysis().Year)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAnalysisRepository(db)
		c := models.NewCachedAnalysis(0, "fp", sampleAnalysis(), models.StrategyStandard)
		if err := repo.Create(c); err != nil {
			t.Fatalf("failed to create analysis: %v", err)
		}
		if err := repo.Delete(c.ID()); err != nil {
			t.Fatalf("failed to delete analysis: %v", err)
		}
		if _, err := repo.Get(c.ID()); !errors.Is(err, shared.ErrAnalysisNotFound) {
			t.Errorf("expected ErrAnalysisNotFound, got %v", err)
		}
		if err := repo.Create(models.NewCachedAnalysis(0, "fp", sampleAnalysis(), models.StrategyStandard)); err != nil {
			t.Errorf("fingerprint should be reusable after delete: %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAnalysisRepository(db)
		for i, s := range []models.Strategy{models.StrategyStandard, models.StrategyAuthoritative, models.StrategyStandard} {
			c := models.NewCachedAnalysis(0, fmt.Sprintf("fp%d", i), sampleAnalysis(), s)
			if err := repo.Create(c); err != nil {
				t.Fatalf("failed to create analysis: %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list analyses: %v", err)
		}
		if len(all) != 3 || all[0].Fingerprint() != "fp0" {
			t.Errorf("expected 3 analyses in sequence order, got %d", len(all))
		}

		auth, err := repo.List(map[string]any{"strategy": "authoritative"})
		if err != nil {
			t.Fatalf("failed to list analyses: %v", err)
		}
		if len(auth) != 1 || auth[0].Fingerprint() != "fp1" {
			t.Errorf("expected only fp1, got %d results", len(auth))
		}

		n, err := repo.Count()
		if err != nil || n != 3 {
			t.Errorf("Count() = %d, %v; want 3", n, err)
		}
	})
}

func TestAnalysisCacheAdapter(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cache := NewAnalysisCacheAdapter(NewAnalysisRepository(db), nil)

	if _, ok := cache.Lookup("fp"); ok {
		t.Fatal("empty cache should miss")
	}

	cache.Store("fp", sampleAnalysis(), models.StrategyStandard)
	got, ok := cache.Lookup("fp")
	if !ok || got != sampleAnalysis() {
		t.Fatalf("Lookup() = %+v, %v", got, ok)
	}

	updated := sampleAnalysis()
	updated.Mood = "Dark"
	cache.Store("fp", updated, models.StrategyAuthoritative)

	got, _ = cache.Lookup("fp")
	if got.Mood != "Dark" {
		t.Errorf("mood = %q, want Dark", got.Mood)
	}

	n, err := NewAnalysisRepository(db).Count()
	if err != nil || n != 1 {
		t.Errorf("Count() = %d, %v; want a single row per fingerprint", n, err)
	}
}

func TestAnalysisCacheAdapter_MergesNarrowResults(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cache := NewAnalysisCacheAdapter(NewAnalysisRepository(db), nil)
	cache.Store("fp", sampleAnalysis(), models.StrategyStandard)

	yearOnly := models.UnknownAnalysis()
	yearOnly.Year = 2001
	cache.Store("fp", yearOnly, models.StrategyStandard)

	want := sampleAnalysis()
	want.Year = 2001
	got, ok := cache.Lookup("fp")
	if !ok || got != want {
		t.Errorf("Lookup() = %+v, %v; want %+v", got, ok, want)
	}
	if !models.ModeFull.Covers(got) {
		t.Error("merged entry should still cover a full job")
	}
}

func TestAnalysisCacheAdapter_IgnoresFailures(t *testing.T) {
	db := setupTestDB(t)
	cache := NewAnalysisCacheAdapter(NewAnalysisRepository(db), nil)
	db.Close()

	cache.Store("fp", sampleAnalysis(), models.StrategyStandard)
	if _, ok := cache.Lookup("fp"); ok {
		t.Error("closed database should miss")
	}
}

func TestSelectionRepository(t *testing.T) {
	t.Run("CreateAndGet", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSelectionRepository(db)
		s := models.NewSelection(0, "Friday", []string{"4", "1", "7"})
		if err := repo.Create(s); err != nil {
			t.Fatalf("failed to create selection: %v", err)
		}

		got, err := repo.Get(s.ID())
		if err != nil {
			t.Fatalf("failed to get selection: %v", err)
		}
		if got.Name() != "Friday" || !slices.Equal(got.TrackIDs(), []string{"4", "1", "7"}) {
			t.Errorf("got %s %v", got.Name(), got.TrackIDs())
		}
	})

	t.Run("Save", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSelectionRepository(db)
		if err := repo.Save(models.NewSelection(0, "Friday", []string{"1", "2"})); err != nil {
			t.Fatalf("failed to save selection: %v", err)
		}
		if err := repo.Save(models.NewSelection(0, "Friday", []string{"3"})); err != nil {
			t.Fatalf("failed to overwrite selection: %v", err)
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list selections: %v", err)
		}
		if len(all) != 1 || !slices.Equal(all[0].TrackIDs(), []string{"3"}) {
			t.Errorf("expected one selection with [3], got %d", len(all))
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSelectionRepository(db)
		for _, name := range []string{"A", "B", "C"} {
			if err := repo.Create(models.NewSelection(0, name, []string{name + "1", name + "2"})); err != nil {
				t.Fatalf("failed to create selection: %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list selections: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 selections, got %d", len(all))
		}
		if all[2].Name() != "C" || !slices.Equal(all[2].TrackIDs(), []string{"C1", "C2"}) {
			t.Errorf("last selection = %s %v", all[2].Name(), all[2].TrackIDs())
		}

		named, err := repo.List(map[string]any{"name": "B"})
		if err != nil || len(named) != 1 {
			t.Errorf("List(name=B) = %d, %v", len(named), err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSelectionRepository(db)
		s := models.NewSelection(0, "Friday", []string{"1"})
		if err := repo.Create(s); err != nil {
			t.Fatalf("failed to create selection: %v", err)
		}
		if err := repo.Delete(s.ID()); err != nil {
			t.Fatalf("failed to delete selection: %v", err)
		}

		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM selection_tracks`).Scan(&n); err != nil || n != 0 {
			t.Errorf("selection_tracks rows = %d, %v; want cascade delete", n, err)
		}
		if _, err := repo.GetByName("Friday"); !errors.Is(err, shared.ErrSelectionNotFound) {
			t.Errorf("expected ErrSelectionNotFound, got %v", err)
		}
	})
}

func TestJobRepository(t *testing.T) {
	t.Run("CreateAndGet", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewJobRepository(db)
		job := models.NewTagJob(0, "/music/collection.xml", models.ModeMissingYear)
		if err := repo.Create(job); err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		got, err := repo.Get(job.ID())
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}
		if got.SourcePath() != job.SourcePath() || got.Mode() != models.ModeMissingYear {
			t.Errorf("got %s %v", got.SourcePath(), got.Mode())
		}
		if got.Status() != models.JobStatusRunning || got.CompletedAt() != nil {
			t.Errorf("new job should be running without completion time, got %s", got.Status())
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewJobRepository(db)
		job := models.NewTagJob(0, "c.xml", models.ModeFull)
		if err := repo.Create(job); err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		job.SetCounts(10, 8, 2)
		job.SetUsage(0.25, 1000, 80)
		job.Finish(models.JobStatusCancelled, shared.ErrJobCancelled)
		if err := repo.Update(job); err != nil {
			t.Fatalf("failed to update job: %v", err)
		}

		got, err := repo.Get(job.ID())
		if err != nil {
			t.Fatalf("failed to get job: %v", err)
		}
		if got.Status() != models.JobStatusCancelled || got.ItemsProcessed() != 8 || got.ItemsUnresolved() != 2 {
			t.Errorf("got status %s, processed %d, unresolved %d", got.Status(), got.ItemsProcessed(), got.ItemsUnresolved())
		}
		if got.Cost() != 0.25 || got.InputUnits() != 1000 || got.OutputUnits() != 80 {
			t.Errorf("got usage %f/%d/%d", got.Cost(), got.InputUnits(), got.OutputUnits())
		}
		if got.ErrorMessage() != shared.ErrJobCancelled.Error() || got.CompletedAt() == nil {
			t.Errorf("got error %q, completed %v", got.ErrorMessage(), got.CompletedAt())
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewJobRepository(db)
		base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		for i, status := range []models.JobStatus{models.JobStatusCompleted, models.JobStatusFailed, models.JobStatusCompleted} {
			job := models.NewTagJob(0, fmt.Sprintf("c%d.xml", i), models.ModeFull)
			job.SetStartedAt(base.Add(time.Duration(i) * time.Hour))
			job.SetStatus(status)
			if err := repo.Create(job); err != nil {
				t.Fatalf("failed to create job: %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list jobs: %v", err)
		}
		if len(all) != 3 || all[0].SourcePath() != "c2.xml" {
			t.Errorf("expected newest first, got %d jobs", len(all))
		}

		completed, err := repo.List(map[string]any{"status": "completed", "limit": 1})
		if err != nil {
			t.Fatalf("failed to list jobs: %v", err)
		}
		if len(completed) != 1 || completed[0].SourcePath() != "c2.xml" {
			t.Errorf("expected c2.xml only, got %d jobs", len(completed))
		}
	})

	t.Run("Delete", func(t *testing.T) {
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
		if _, err := repo.Get(job.ID()); !errors.Is(err, shared.ErrJobNotFound) {
			t.Errorf("expected ErrJobNotFound, got %v", err)
		}
	})
}
