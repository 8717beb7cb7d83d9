// package services defines the Tagger interface for the external tagging service
package services

import (
	"context"

	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/vocab"
)

// Tagger classifies tracks. Implementations may return results for a subset of the requested ids.
type Tagger interface {
	// Tag sends one chunk. An error fails the whole chunk.
	Tag(ctx context.Context, req Request) (*Response, error)

	// Name returns the name of the backing service.
	Name() string
}

// Checker is implemented by taggers that can report whether the service is reachable before a job sends any chunk.
type Checker interface {
	Check(ctx context.Context) error
}

// Item describes one track to classify.
type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Artist   string  `json:"artist"`
	Bpm      float64 `json:"bpm,omitempty"`
	Key      string  `json:"key,omitempty"`
	Comments string  `json:"comments,omitempty"`
}

// Request is one chunk of work.
type Request struct {
	Items    []Item
	Mode     models.Mode
	Strategy models.Strategy
}

// IDs returns the item ids in request order.
func (r Request) IDs() []string {
	ids := make([]string, len(r.Items))
	for i, it := range r.Items {
		ids[i] = it.ID
	}
	return ids
}

// Result is the unvalidated classification of one item.
type Result struct {
	ID        string `json:"id"`
	Mood      string `json:"mood,omitempty"`
	SubGenre  string `json:"sub_genre,omitempty"`
	MainGenre string `json:"main_genre,omitempty"`
	Situation string `json:"situation,omitempty"`
	Year      int    `json:"year,omitempty"`
}

// Raw hands the result to [vocab.Validate].
func (r Result) Raw() vocab.RawAnalysis {
	return vocab.RawAnalysis{Mood: r.Mood, SubGenre: r.SubGenre, MainGenre: r.MainGenre, Situation: r.Situation, Year: r.Year}
}

// Usage is the metered cost of one request.
type Usage struct {
	InputUnits  int64   `json:"input_units"`
	OutputUnits int64   `json:"output_units"`
	Cost        float64 `json:"cost"`
}

// Response is the reply to one [Request].
type Response struct {
	Results []Result `json:"results"`
	Usage   Usage    `json:"usage"`
}
