package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/desertthunder/digger/internal/dupes"
	"github.com/desertthunder/digger/internal/health"
	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/tasks"
)

// DuplicateRow is one member of a duplicate group.
type DuplicateRow struct {
	Group       int    `json:"group" yaml:"group"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	ID          string `json:"id" yaml:"id"`
	Artist      string `json:"artist" yaml:"artist"`
	Name        string `json:"name" yaml:"name"`
	Seconds     int    `json:"seconds" yaml:"seconds"`
	BitRate     int    `json:"bit_rate" yaml:"bit_rate"`
	Location    string `json:"location" yaml:"location"`
}

// DuplicateRows flattens groups into rows, numbering groups from 1.
func DuplicateRows(res dupes.Result) []DuplicateRow {
	var rows []DuplicateRow
	for i, g := range res.Groups {
		for _, t := range g.Members {
			rows = append(rows, DuplicateRow{
				Group:       i + 1,
				Fingerprint: g.Fingerprint,
				ID:          t.ID(),
				Artist:      t.Artist(),
				Name:        t.Name(),
				Seconds:     t.TotalTime(),
				BitRate:     t.BitRate(),
				Location:    t.Location(),
			})
		}
	}
	return rows
}

// Duplicates renders a duplicate review report.
func Duplicates(res dupes.Result, f Format) ([]byte, error) {
	rows := DuplicateRows(res)
	r := report{
		title: "Duplicate tracks",
		summary: [][2]string{
			{"Groups", strconv.Itoa(len(res.Groups))},
			{"Tracks", strconv.Itoa(res.Members())},
		},
		headers: []string{"Group", "ID", "Artist", "Title", "Length", "Bit rate", "Location"},
		right:   map[int]bool{0: true, 4: true, 5: true},
		value:   rows,
	}
	if f == FormatCSV {
		r.headers = []string{"group", "fingerprint", "id", "artist", "name", "seconds", "bit_rate", "location"}
	}
	for _, row := range rows {
		if f == FormatCSV {
			r.rows = append(r.rows, []string{
				strconv.Itoa(row.Group), row.Fingerprint, row.ID, row.Artist, row.Name,
				strconv.Itoa(row.Seconds), strconv.Itoa(row.BitRate), row.Location,
			})
			continue
		}
		r.rows = append(r.rows, []string{
			strconv.Itoa(row.Group), row.ID, row.Artist, row.Name, FormatSeconds(row.Seconds), bitRate(row.BitRate), row.Location,
		})
	}
	return r.render(f)
}

// Health renders a library health report.
func Health(rep health.Report, f Format) ([]byte, error) {
	r := report{
		title: "Library health",
		summary: [][2]string{
			{"Score", fmt.Sprintf("%.1f / 100", rep.Score)},
			{"Tracks", humanize.Comma(int64(rep.Tracks))},
			{"Completeness", fmt.Sprintf("%.1f%%", rep.Completeness*100)},
			{"Duplicates", fmt.Sprintf("%d tracks in %d groups", rep.DuplicateMembers, rep.DuplicateGroups)},
			{"Missing", missingSummary(rep.Missing)},
		},
		headers: []string{"ID", "Artist", "Title", "Missing"},
		value:   rep,
	}
	for _, is := range rep.Issues {
		r.rows = append(r.rows, []string{is.ID, is.Artist, is.Name, strings.Join(is.Missing, ", ")})
	}
	return r.render(f)
}

func missingSummary(m map[string]int) string {
	fields := []string{health.FieldGenre, health.FieldYear, health.FieldKey, health.FieldAnalysis, health.FieldEnergy}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s %d", f, m[f]))
	}
	return strings.Join(parts, ", ")
}

// Telemetry renders the outcome of a tagging job.
func Telemetry(tel tasks.Telemetry, f Format) ([]byte, error) {
	r := report{
		title: fmt.Sprintf("Tagging job (%s)", tel.Mode),
		summary: [][2]string{
			{"Processed", fmt.Sprintf("%d / %d", tel.ItemsProcessed, tel.ItemsTotal)},
			{"From cache", strconv.Itoa(tel.CacheHits)},
			{"Unresolved", strconv.Itoa(len(tel.Unresolved))},
			{"Requests", fmt.Sprintf("%d (%d failed)", tel.Requests, tel.FailedChunks)},
			{"Levels", strconv.Itoa(tel.Levels)},
			{"Units", fmt.Sprintf("%s in, %s out", humanize.Comma(tel.InputUnits), humanize.Comma(tel.OutputUnits))},
			{"Cost", fmt.Sprintf("%.4f", tel.Cost)},
			{"Elapsed", tel.Elapsed().Round(time.Millisecond).String()},
			{"Rate", fmt.Sprintf("%.1f tracks/min", tel.RatePerMinute)},
		},
		headers: []string{"unresolved_id"},
		value:   tel,
	}
	for _, id := range tel.Unresolved {
		r.rows = append(r.rows, []string{id})
	}
	return r.render(f)
}

// JobRow is one entry of the job history.
type JobRow struct {
	ID         string     `json:"id" yaml:"id"`
	Source     string     `json:"source" yaml:"source"`
	Mode       string     `json:"mode" yaml:"mode"`
	Status     string     `json:"status" yaml:"status"`
	Total      int        `json:"items_total" yaml:"items_total"`
	Processed  int        `json:"items_processed" yaml:"items_processed"`
	Unresolved int        `json:"items_unresolved" yaml:"items_unresolved"`
	Cost       float64    `json:"cost" yaml:"cost"`
	StartedAt  time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Error      string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Jobs renders the tagging job history. now anchors the relative start times in table and text output.
func Jobs(jobs []*models.TagJob, f Format, now time.Time) ([]byte, error) {
	rows := make([]JobRow, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, JobRow{
			ID:         j.ID(),
			Source:     j.SourcePath(),
			Mode:       j.Mode().String(),
			Status:     string(j.Status()),
			Total:      j.ItemsTotal(),
			Processed:  j.ItemsProcessed(),
			Unresolved: j.ItemsUnresolved(),
			Cost:       j.Cost(),
			StartedAt:  j.StartedAt(),
			FinishedAt: j.CompletedAt(),
			Error:      j.ErrorMessage(),
		})
	}

	r := report{
		title:   "Tagging jobs",
		summary: [][2]string{{"Jobs", strconv.Itoa(len(rows))}},
		headers: []string{"ID", "Source", "Mode", "Status", "Tracks", "Cost", "Started"},
		right:   map[int]bool{4: true, 5: true},
		value:   rows,
	}
	for _, row := range rows {
		started := humanize.RelTime(row.StartedAt, now, "ago", "from now")
		if f == FormatCSV || f == FormatMarkdown {
			started = row.StartedAt.UTC().Format(time.RFC3339)
		}
		r.rows = append(r.rows, []string{
			shortID(row.ID), row.Source, row.Mode, row.Status,
			fmt.Sprintf("%d/%d", row.Processed, row.Total), fmt.Sprintf("%.4f", row.Cost), started,
		})
	}
	return r.render(f)
}

// FormatSeconds renders a track length as m:ss, or "-" when unknown.
func FormatSeconds(s int) string {
	if s <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func bitRate(kbps int) string {
	if kbps <= 0 {
		return "-"
	}
	return humanize.SI(float64(kbps)*1000, "bps")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
