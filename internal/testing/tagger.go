package testing

import (
	"context"
	"sync"
	"time"

	"github.com/desertthunder/digger/internal/services"
)

// RespondFunc produces the reply for one call. call counts from 1 across the stub's lifetime.
type RespondFunc func(call int, req services.Request) (*services.Response, error)

// StubTagger is a [services.Tagger] double that records calls and the peak number of concurrent requests.
type StubTagger struct {
	Respond RespondFunc
	Delay   time.Duration

	mu          sync.Mutex
	calls       int
	inFlight    int
	maxInFlight int
	attempts    map[string]int
	requests    []services.Request
}

// Tag records the call, waits Delay (or until ctx is done) and defers to Respond.
// Without Respond every item resolves via [EchoResults] with an empty template.
func (s *StubTagger) Tag(ctx context.Context, req services.Request) (*services.Response, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.inFlight++
	s.maxInFlight = max(s.maxInFlight, s.inFlight)
	if s.attempts == nil {
		s.attempts = make(map[string]int)
	}
	for _, it := range req.Items {
		s.attempts[it.ID]++
	}
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if s.Respond == nil {
		return EchoResults(req, services.Result{}), nil
	}
	return s.Respond(call, req)
}

func (s *StubTagger) Name() string { return "stub" }

// Calls returns how many requests were made.
func (s *StubTagger) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// MaxInFlight returns the peak number of concurrent requests.
func (s *StubTagger) MaxInFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxInFlight
}

// Attempts returns how many requests included id.
func (s *StubTagger) Attempts(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[id]
}

// Requests returns a copy of every request received, in arrival order.
func (s *StubTagger) Requests() []services.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]services.Request(nil), s.requests...)
}

// EchoResults answers every item of req with template, stamped with the item id, and one unit of usage per item.
func EchoResults(req services.Request, template services.Result) *services.Response {
	resp := &services.Response{}
	for _, it := range req.Items {
		r := template
		r.ID = it.ID
		resp.Results = append(resp.Results, r)
	}
	n := int64(len(req.Items))
	resp.Usage = services.Usage{InputUnits: n * 10, OutputUnits: n, Cost: float64(n) * 0.001}
	return resp
}
