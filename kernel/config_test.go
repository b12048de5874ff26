package kernel_test

import (
	"strings"
	"testing"
	"time"

	"github.com/dtsarkov/shiq/kernel"
)

func TestLoadConfigOverridesOnlyGivenFields(t *testing.T) {
	cfg, err := kernel.LoadConfig(strings.NewReader("timeout: 500\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Timeout() != 500*time.Millisecond {
		t.Fatalf("Timeout() = %v, want 500ms", cfg.Timeout())
	}
	if cfg.TopObjectRole != "topObjectRole" {
		t.Fatalf("TopObjectRole = %q, want the default, unaffected by the timeout override", cfg.TopObjectRole)
	}
}

func TestDefaultConfigHasNoTimeout(t *testing.T) {
	cfg := kernel.DefaultConfig()
	if cfg.Timeout() != 0 {
		t.Fatalf("DefaultConfig().Timeout() = %v, want 0 (unlimited)", cfg.Timeout())
	}
}

func TestLoadConfigRejectsGarbage(t *testing.T) {
	if _, err := kernel.LoadConfig(strings.NewReader("not: [valid: yaml")); err == nil {
		t.Fatalf("expected an error for malformed YAML")
	}
}
