package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Document errors
	ErrStructureMissing  = fmt.Errorf("required document section missing")
	ErrInvalidTrack      = fmt.Errorf("invalid track node")
	ErrMalformedDocument = fmt.Errorf("malformed document")
	ErrTrackNotFound     = fmt.Errorf("track not found")

	// Tagging errors
	ErrCollaboratorUnavailable = fmt.Errorf("tagging service unavailable")
	ErrChunkFailure            = fmt.Errorf("chunk failed")
	ErrJobCancelled            = fmt.Errorf("job cancelled")
	ErrTimeout                 = fmt.Errorf("operation timed out")
	ErrAPIRequest              = fmt.Errorf("API request failed")

	// Persistence errors
	ErrAnalysisNotFound  = fmt.Errorf("analysis not found")
	ErrSelectionNotFound = fmt.Errorf("selection not found")
	ErrJobNotFound       = fmt.Errorf("job not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
