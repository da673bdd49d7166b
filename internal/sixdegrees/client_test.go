package sixdegrees

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestPathClient returns a Client pointed at a httptest handler.
func newTestPathClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, WithHTTPClient(srv.Client()))
}

// TestFindPath tests path queries and resolution.
func TestFindPath(t *testing.T) {
	t.Parallel()

	t.Run("resolves node ids to titles", func(t *testing.T) {
		t.Parallel()

		client := newTestPathClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/paths" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			var req struct {
				Source string `json:"source"`
				Target string `json:"target"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req.Source != "Dog" || req.Target != "Cat" {
				t.Errorf("request = %+v", req)
			}
			w.Write([]byte(`{"pages":{"1":{"title":"Dog"},"2":{"title":"Mammal"},"3":{"title":"Cat"}},` + //nolint:errcheck
				`"paths":[[1,2,3]]}`))
		})

		path, err := client.FindPath(context.Background(), "Dog", "Cat")
		if err != nil {
			t.Fatalf("FindPath: %v", err)
		}
		want := []string{"Dog", "Mammal", "Cat"}
		if len(path) != len(want) {
			t.Fatalf("path = %v, want %v", path, want)
		}
		for i := range want {
			if path[i] != want[i] {
				t.Errorf("path[%d] = %q, want %q", i, path[i], want[i])
			}
		}
	})

	t.Run("400 is ErrUnsolvablePair", func(t *testing.T) {
		t.Parallel()

		client := newTestPathClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad pair", http.StatusBadRequest)
		})

		_, err := client.FindPath(context.Background(), "A", "B")
		if !errors.Is(err, ErrUnsolvablePair) {
			t.Errorf("err = %v, want ErrUnsolvablePair", err)
		}
	})

	t.Run("server error is transient", func(t *testing.T) {
		t.Parallel()

		client := newTestPathClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		})

		_, err := client.FindPath(context.Background(), "A", "B")
		if err == nil || errors.Is(err, ErrUnsolvablePair) {
			t.Errorf("err = %v, want generic failure", err)
		}
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		t.Parallel()

		client := newTestPathClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`)) //nolint:errcheck
		})

		if _, err := client.FindPath(context.Background(), "A", "B"); err == nil {
			t.Error("expected decode error")
		}
	})
}

// TestResolveFirstPath tests resolution edge cases.
func TestResolveFirstPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "no paths", body: `{"pages":{},"paths":[]}`},
		{name: "single-node path", body: `{"pages":{"1":{"title":"Dog"}},"paths":[[1]]}`},
		{name: "missing id in pages map", body: `{"pages":{"1":{"title":"Dog"}},"paths":[[1,2]]}`},
		{name: "empty title", body: `{"pages":{"1":{"title":"Dog"},"2":{"title":""}},"paths":[[1,2]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var decoded pathsResponse
			if err := json.Unmarshal([]byte(tt.body), &decoded); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if _, err := resolveFirstPath(&decoded); !errors.Is(err, ErrNoPath) {
				t.Errorf("err = %v, want ErrNoPath", err)
			}
		})
	}
}
