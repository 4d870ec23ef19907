package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
)

func TestMain(m *testing.M) {
	// keep probe output free of escape codes
	color.NoColor = true
	os.Exit(m.Run())
}

func TestRunProbe(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("Awesome"))
		case "/slow":
			time.Sleep(50 * time.Millisecond)
			_, _ = w.Write([]byte("Awesome"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	tests := []struct {
		name     string
		path     string
		text     string
		maxDur   string
		wantUp   bool
		wantLine string
	}{
		{"up", "/ok", "Awesome", "0s", true, "UP " + ts.URL + "/ok"},
		{"missing text", "/ok", "nope", "0s", false, "DOWN"},
		{"not found", "/missing", "", "0s", false, "status:   404 Not Found"},
		{"too slow", "/slow", "", "10ms", false, "DOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := executeCmd(t, "probe", ts.URL+tt.path,
				"--text", tt.text,
				"--max-duration", tt.maxDur,
				"--timeout", "2s",
			)

			if tt.wantUp && err != nil {
				t.Fatalf("probe error = %v\n%s", err, output)
			}
			if !tt.wantUp && !errors.Is(err, errTargetDown) {
				t.Fatalf("probe error = %v, want errTargetDown", err)
			}
			if !strings.Contains(output, tt.wantLine) {
				t.Errorf("output missing %q\nGot: %s", tt.wantLine, output)
			}
		})
	}
}

func TestRunProbe_InvalidURL(t *testing.T) {
	_, err := executeCmd(t, "probe", "not a url", "--text", "", "--max-duration", "0s", "--timeout", "1s")
	if err == nil {
		t.Fatal("probe expected error for invalid URL")
	}
	if errors.Is(err, errTargetDown) {
		t.Error("invalid URL should fail before any check")
	}
}
