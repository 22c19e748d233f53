package profile

import (
	"path/filepath"
	"testing"
	"time"
)

func TestValidateDefaults(t *testing.T) {
	dir := t.TempDir()

	p := &Profile{Data: dir}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"Mode defaults to demo", "demo", p.Mode},
		{"Driver defaults to sqlite", "sqlite", p.Driver},
		{"DSN defaults under data dir", filepath.Join(dir, "findify_demo.db"), p.DSN},
		{"Extractor model default", "clip-vit-base-patch16", p.ExtractorModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, tt.actual)
			}
		})
	}

	if p.ExtractorDim != 512 {
		t.Errorf("ExtractorDim: expected 512, got %d", p.ExtractorDim)
	}
	if p.RunnerInterval != 2*time.Minute {
		t.Errorf("RunnerInterval: expected 2m, got %v", p.RunnerInterval)
	}
	if p.RunnerBatchSize != 8 {
		t.Errorf("RunnerBatchSize: expected 8, got %d", p.RunnerBatchSize)
	}
	if p.RewardPoints != 10 {
		t.Errorf("RewardPoints: expected 10, got %d", p.RewardPoints)
	}
	if p.SMTPPort != 587 {
		t.Errorf("SMTPPort: expected 587, got %d", p.SMTPPort)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		setup func(*Profile)
	}{
		{
			name: "postgres without DSN",
			setup: func(p *Profile) {
				p.Driver = "postgres"
			},
		},
		{
			name: "min notify score above 100",
			setup: func(p *Profile) {
				p.MinNotifyScore = 101
			},
		},
		{
			name: "missing data dir",
			setup: func(p *Profile) {
				p.Data = filepath.Join(dir, "does-not-exist")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Profile{Data: dir}
			tt.setup(p)
			if err := p.Validate(); err == nil {
				t.Errorf("Validate() expected error, got nil")
			}
		})
	}
}

func TestIsDev(t *testing.T) {
	dir := t.TempDir()

	p := &Profile{Mode: "prod", Data: dir, Driver: "sqlite"}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if p.IsDev() {
		t.Errorf("IsDev() = true for prod mode")
	}

	p = &Profile{Mode: "dev", Data: dir}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}
	if !p.IsDev() {
		t.Errorf("IsDev() = false for dev mode")
	}
}
