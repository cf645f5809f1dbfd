package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/luki/proctemp/internal/logger"
)

func init() {
	logger.Init(logger.Config{Level: "disabled"})
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	opts, err := Load(filepath.Join(t.TempDir(), "proctemp.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if opts != Default() {
		t.Errorf("got %+v, want defaults", opts)
	}
}

func TestLoadCorruptFileGivesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proctemp.yaml")
	if err := os.WriteFile(path, []byte("fahrenheit: [not, a, bool"), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, err := Load(path)
	if err == nil {
		t.Error("expected parse error")
	}
	if opts != Default() {
		t.Errorf("got %+v, want defaults", opts)
	}
}

func TestLoadClampsRefresh(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"refresh: 10ms", MinRefresh},
		{"refresh: 5s", MaxRefresh},
		{"refresh: 250ms", 250 * time.Millisecond},
		{"refresh: 0s", DefaultRefresh},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "proctemp.yaml")
		if err := os.WriteFile(path, []byte(tt.in+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		opts, err := Load(path)
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if opts.Refresh != tt.want {
			t.Errorf("%q: got %v, want %v", tt.in, opts.Refresh, tt.want)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "proctemp.yaml")
	want := Default()
	want.Fahrenheit = true
	want.Refresh = 500 * time.Millisecond
	want.Source = "hwmon"

	if err := Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	// no temp files left behind
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the config file, got %d entries", len(entries))
	}
}

func TestSaveFailureIsWriteError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(blocker, "proctemp.yaml")

	err := Save(path, Default())
	var werr *WriteError
	if !errors.As(err, &werr) {
		t.Fatalf("expected WriteError, got %v", err)
	}
	if werr.Path != path {
		t.Errorf("path: got %q", werr.Path)
	}
}

func TestWatcherReloads(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "proctemp.yaml")
	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	got := make(chan Options, 8)
	w, err := NewWatcher(path, func(o Options) { got <- o })
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	changed := Default()
	changed.Fahrenheit = true
	if err := Save(path, changed); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(5 * time.Second)
	for done := false; !done; {
		select {
		case o := <-got:
			done = o.Fahrenheit
		case <-timeout:
			t.Fatal("no reload within 5s")
		}
	}

	if err := w.Stop(); err != nil {
		t.Errorf("stop: %v", err)
	}
}
