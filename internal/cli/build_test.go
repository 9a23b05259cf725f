package cli

import (
	"io"
	"net/http"
	"testing"

	"github.com/ppiankov/scaleproof/internal/model"
	"github.com/ppiankov/scaleproof/internal/sources"
)

func TestNewSearchProvider(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(cfg *model.Config)
		wantName string
		wantErr  bool
	}{
		{"default reference", func(cfg *model.Config) {}, "reference", false},
		{"http with endpoint", func(cfg *model.Config) {
			cfg.Search.Provider = "http"
			cfg.Search.Endpoint = "https://search.example.com/?q={query}&site={site}"
		}, "http", false},
		{"http without endpoint", func(cfg *model.Config) { cfg.Search.Provider = "http" }, "", true},
		{"llm without provider", func(cfg *model.Config) { cfg.Search.Provider = "llm" }, "", true},
		{"llm with ollama", func(cfg *model.Config) {
			cfg.Search.Provider = "llm"
			cfg.LLM.Provider = "ollama"
			cfg.LLM.Model = "llama3"
		}, "llm:ollama", false},
		{"unknown", func(cfg *model.Config) { cfg.Search.Provider = "bing" }, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := model.DefaultConfig()
			tt.mutate(cfg)
			p, err := newSearchProvider(cfg, http.DefaultClient, nil)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("newSearchProvider: %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("name = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}

func TestBuildComponents(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.HTTP.RespectRobots = true
	cfg.Cache.Enabled = false

	comps, err := buildComponents(cfg, sources.DefaultRegistry(), io.Discard)
	if err != nil {
		t.Fatalf("buildComponents: %v", err)
	}
	if comps.engine == nil || comps.manager == nil || comps.citations == nil || comps.verifier == nil {
		t.Errorf("components = %+v", comps)
	}
	if comps.verifier.Provider().Name() != "reference" {
		t.Errorf("provider = %s", comps.verifier.Provider().Name())
	}
}
