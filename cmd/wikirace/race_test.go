package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// TestRaceCmd tests one pairing selection against stub services.
func TestRaceCmd(t *testing.T) {
	t.Parallel()

	var randomCalls atomic.Int32
	wikiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "parse":
			w.Write([]byte(`{"parse":{"title":"Dog","pageid":1,` + //nolint:errcheck
				`"text":"<p><a href=\"/wiki/Cat\">cat</a></p>","images":[]}}`))
		case "query":
			if r.URL.Query().Get("list") == "random" {
				// Alternate titles so start and end differ.
				if randomCalls.Add(1)%2 == 1 {
					w.Write([]byte(`{"query":{"random":[{"id":1,"ns":0,"title":"Dog"}]}}`)) //nolint:errcheck
					return
				}
				w.Write([]byte(`{"query":{"random":[{"id":2,"ns":0,"title":"Cat"}]}}`)) //nolint:errcheck
				return
			}
			w.Write([]byte(`{"query":{"pages":{}}}`)) //nolint:errcheck
		}
	}))
	t.Cleanup(wikiSrv.Close)

	pathsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pages":{"1":{"title":"Dog"},"2":{"title":"Cat"}},"paths":[[1,2]]}`)) //nolint:errcheck
	}))
	t.Cleanup(pathsSrv.Close)

	var buf bytes.Buffer
	cmd := NewRaceCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{
		"--wikipedia-api", wikiSrv.URL,
		"--six-degrees-api", pathsSrv.URL,
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("race command failed: %v\n%s", err, buf.String())
	}

	out := buf.String()
	for _, want := range []string{
		"Start:   Dog",
		"End:     Cat",
		"Degrees: 1",
		"Path:    Dog -> Cat",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
