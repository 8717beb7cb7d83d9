package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/services"
	"github.com/desertthunder/digger/internal/shared"
)

func TestNewHTTPTagger(t *testing.T) {
	t.Run("Blank BaseURL Is Unavailable", func(t *testing.T) {
		_, err := services.NewHTTPTagger(shared.TaggerConfig{}, nil)
		if !errors.Is(err, shared.ErrCollaboratorUnavailable) {
			t.Errorf("expected ErrCollaboratorUnavailable, got %v", err)
		}
	})

	t.Run("Name Is BaseURL", func(t *testing.T) {
		tagger, err := services.NewHTTPTagger(shared.TaggerConfig{BaseURL: "http://tagger.local/"}, nil)
		if err != nil {
			t.Fatalf("NewHTTPTagger() error = %v", err)
		}
		if tagger.Name() != "http://tagger.local" {
			t.Errorf("Name() = %s", tagger.Name())
		}
	})
}

func TestHTTPTaggerTag(t *testing.T) {
	req := services.Request{
		Items:    []services.Item{{ID: "1", Name: "Track", Artist: "Artist", Bpm: 124, Key: "8A"}},
		Mode:     models.ModeMissingYear,
		Strategy: models.StrategyAuthoritative,
	}

	t.Run("Decodes Results And Usage", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != services.TagPath {
				t.Errorf("expected path %s, got %s", services.TagPath, r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer secret" {
				t.Errorf("expected bearer auth, got %q", got)
			}

			var body struct {
				Items    []services.Item `json:"items"`
				Mode     string          `json:"mode"`
				Strategy string          `json:"strategy"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode request: %v", err)
			}
			if body.Mode != "year" || body.Strategy != "authoritative" || len(body.Items) != 1 {
				t.Errorf("unexpected request %+v", body)
			}

			json.NewEncoder(w).Encode(services.Response{
				Results: []services.Result{{ID: "1", Year: 2004, MainGenre: "house"}},
				Usage:   services.Usage{InputUnits: 120, OutputUnits: 30, Cost: 0.002},
			})
		}))
		defer server.Close()

		tagger, err := services.NewHTTPTagger(shared.TaggerConfig{BaseURL: server.URL, APIKey: "secret", TimeoutSeconds: 5}, nil)
		if err != nil {
			t.Fatalf("NewHTTPTagger() error = %v", err)
		}

		resp, err := tagger.Tag(context.Background(), req)
		if err != nil {
			t.Fatalf("Tag() error = %v", err)
		}
		if len(resp.Results) != 1 || resp.Results[0].Year != 2004 {
			t.Errorf("unexpected results %+v", resp.Results)
		}
		if resp.Usage.InputUnits != 120 || resp.Usage.OutputUnits != 30 {
			t.Errorf("unexpected usage %+v", resp.Usage)
		}
	})

	t.Run("Client Credentials", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse token form: %v", err)
			}
			if r.Form.Get("grant_type") != "client_credentials" {
				t.Errorf("unexpected grant_type %q", r.Form.Get("grant_type"))
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"issued","token_type":"bearer","expires_in":3600}`))
		})
		mux.HandleFunc(services.TagPath, func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer issued" {
				t.Errorf("expected issued token, got %q", got)
			}
			w.Write([]byte(`{"results":[],"usage":{}}`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		tagger, err := services.NewHTTPTagger(shared.TaggerConfig{
			BaseURL:      server.URL,
			TokenURL:     server.URL + "/oauth/token",
			ClientID:     "digger",
			ClientSecret: "shh",
		}, nil)
		if err != nil {
			t.Fatalf("NewHTTPTagger() error = %v", err)
		}

		if _, err := tagger.Tag(context.Background(), req); err != nil {
			t.Fatalf("Tag() error = %v", err)
		}
	})

	failures := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"Server Error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"Rate Limited", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }},
		{"Empty Body", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }},
		{"Bad JSON", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("{not json")) }},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			tagger, err := services.NewHTTPTagger(shared.TaggerConfig{BaseURL: server.URL}, nil)
			if err != nil {
				t.Fatalf("NewHTTPTagger() error = %v", err)
			}

			_, err = tagger.Tag(context.Background(), req)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	}
}

func TestHTTPTaggerCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"Healthy", http.StatusOK, false},
		{"No Health Endpoint", http.StatusNotFound, false},
		{"Service Down", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != services.HealthPath {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			tagger, err := services.NewHTTPTagger(shared.TaggerConfig{BaseURL: server.URL}, nil)
			if err != nil {
				t.Fatalf("NewHTTPTagger() error = %v", err)
			}

			err = tagger.Check(context.Background())
			if tt.wantErr != errors.Is(err, shared.ErrCollaboratorUnavailable) {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	t.Run("Unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		tagger, err := services.NewHTTPTagger(shared.TaggerConfig{BaseURL: url, TimeoutSeconds: 1}, nil)
		if err != nil {
			t.Fatalf("NewHTTPTagger() error = %v", err)
		}
		if err := tagger.Check(context.Background()); !errors.Is(err, shared.ErrCollaboratorUnavailable) {
			t.Errorf("expected ErrCollaboratorUnavailable, got %v", err)
		}
	})
}

func TestRequestIDs(t *testing.T) {
	r := services.Request{Items: []services.Item{{ID: "a"}, {ID: "b"}}}
	ids := r.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("IDs() = %v", ids)
	}
}
