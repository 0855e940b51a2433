package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pythonicvarun/anveshak/internal/guard"
	"github.com/pythonicvarun/anveshak/internal/memory"
	"github.com/pythonicvarun/anveshak/internal/sandbox"
	"github.com/pythonicvarun/anveshak/internal/store"
)

func openGuard() *guard.Guard {
	return guard.New(guard.DefaultPolicy)
}

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry(&CallAIPipe{}, &GetMemories{List: memory.NewList(store.NewMemKV())})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	t.Run("Lookup", func(t *testing.T) {
		if _, ok := reg.Get("callAIPipe"); !ok {
			t.Error("callAIPipe not found")
		}
		if _, ok := reg.Get("noSuchTool"); ok {
			t.Error("Unknown tool resolved")
		}
	})

	t.Run("DeclarationsOrdered", func(t *testing.T) {
		decls := reg.Declarations()
		if len(decls) != 2 {
			t.Fatalf("Expected 2 declarations, got %d", len(decls))
		}
		if decls[0].Name != "callAIPipe" || decls[1].Name != "getMemories" {
			t.Errorf("Declarations out of registration order: %v", decls)
		}
		if decls[0].Parameters["type"] != "object" {
			t.Errorf("Parameters must be an object schema: %v", decls[0].Parameters)
		}
	})

	t.Run("DuplicateRejected", func(t *testing.T) {
		if err := reg.Register(&CallAIPipe{}); err == nil {
			t.Error("Duplicate registration accepted")
		}
	})
}

func TestGoogleSearch(t *testing.T) {
	t.Run("TopFiveResults", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-API-KEY") != "k" {
				t.Errorf("Missing API key header")
			}
			var req map[string]string
			json.NewDecoder(r.Body).Decode(&req)
			if req["q"] != "golang" {
				t.Errorf("Expected query golang, got %q", req["q"])
			}

			results := make([]map[string]string, 8)
			for i := range results {
				results[i] = map[string]string{"title": "t", "link": "l", "snippet": "s"}
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"organic": results})
		}))
		defer srv.Close()

		tool := NewGoogleSearch(func() string { return "k" }, openGuard())
		tool.Endpoint = srv.URL
		tool.Client = srv.Client()

		out, err := tool.Invoke(context.Background(), map[string]interface{}{"query": "golang"})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		var results []searchResult
		if err := json.Unmarshal([]byte(out), &results); err != nil {
			t.Fatalf("Invalid result JSON: %v", err)
		}
		if len(results) != 5 {
			t.Errorf("Expected top 5 results, got %d", len(results))
		}
	})

	t.Run("MissingKey", func(t *testing.T) {
		tool := NewGoogleSearch(func() string { return "" }, openGuard())
		if _, err := tool.Invoke(context.Background(), map[string]interface{}{"query": "x"}); err == nil {
			t.Error("Expected error for missing API key")
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		tool := NewGoogleSearch(func() string { return "k" }, openGuard())
		tool.Endpoint = srv.URL
		tool.Client = srv.Client()

		out, err := tool.Invoke(context.Background(), map[string]interface{}{"query": "x"})
		if err != nil {
			t.Fatalf("HTTP failure must yield an error payload, not an error: %v", err)
		}
		var payload map[string]string
		json.Unmarshal([]byte(out), &payload)
		if payload["error"] == "" {
			t.Errorf("Expected error payload, got %s", out)
		}
	})

	t.Run("BlockedHost", func(t *testing.T) {
		g := guard.New(guard.Policy{AllowedHosts: []string{"example.com"}})
		tool := NewGoogleSearch(func() string { return "k" }, g)
		if _, err := tool.Invoke(context.Background(), map[string]interface{}{"query": "x"}); err == nil {
			t.Error("Expected guard to block the search host")
		}
	})
}

func TestOpenInBrowser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var opened string
		tool := NewOpenInBrowser(openGuard())
		tool.Opener = func(ctx context.Context, url string) error {
			opened = url
			return nil
		}

		out, err := tool.Invoke(context.Background(), map[string]interface{}{"url": "https://go.dev/doc"})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if opened != "https://go.dev/doc" {
			t.Errorf("Opener got %q", opened)
		}
		var payload map[string]interface{}
		json.Unmarshal([]byte(out), &payload)
		if payload["success"] != true {
			t.Errorf("Expected success, got %s", out)
		}
	})

	t.Run("OpenerFailure", func(t *testing.T) {
		tool := NewOpenInBrowser(openGuard())
		tool.Opener = func(ctx context.Context, url string) error {
			return errors.New("no display")
		}

		out, _ := tool.Invoke(context.Background(), map[string]interface{}{"url": "https://go.dev"})
		var payload map[string]interface{}
		json.Unmarshal([]byte(out), &payload)
		if payload["success"] != false {
			t.Errorf("Expected failure payload, got %s", out)
		}
	})

	t.Run("BlockedHost", func(t *testing.T) {
		g := guard.New(guard.Policy{AllowedHosts: []string{"*.example.com"}})
		tool := NewOpenInBrowser(g)
		tool.Opener = func(ctx context.Context, url string) error {
			t.Error("Opener must not run for a blocked host")
			return nil
		}

		out, _ := tool.Invoke(context.Background(), map[string]interface{}{"url": "https://evil.dev"})
		var payload map[string]interface{}
		json.Unmarshal([]byte(out), &payload)
		if payload["success"] != false {
			t.Errorf("Expected refusal, got %s", out)
		}
	})
}

func TestMemoryTools(t *testing.T) {
	list := memory.NewList(store.NewMemKV())
	add := &AddToMemory{List: list}
	get := &GetMemories{List: list}

	t.Run("EmptyAtStart", func(t *testing.T) {
		out, _ := get.Invoke(context.Background(), nil)
		if out != "[]" {
			t.Errorf("Expected empty array, got %s", out)
		}
	})

	t.Run("AddAndRetrieve", func(t *testing.T) {
		out, err := add.Invoke(context.Background(), map[string]interface{}{"memory": "user prefers dark mode"})
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		var payload map[string]interface{}
		json.Unmarshal([]byte(out), &payload)
		if payload["success"] != true {
			t.Fatalf("Expected success, got %s", out)
		}

		out, _ = get.Invoke(context.Background(), nil)
		var entries []memory.Entry
		if err := json.Unmarshal([]byte(out), &entries); err != nil {
			t.Fatalf("Invalid memories JSON: %v", err)
		}
		if len(entries) != 1 || entries[0].Memory != "user prefers dark mode" {
			t.Errorf("Unexpected entries: %v", entries)
		}
	})

	t.Run("RejectBlank", func(t *testing.T) {
		out, _ := add.Invoke(context.Background(), map[string]interface{}{"memory": "   "})
		var payload map[string]interface{}
		json.Unmarshal([]byte(out), &payload)
		if payload["success"] != false {
			t.Errorf("Blank memory accepted: %s", out)
		}
	})
}

func TestCallAIPipe(t *testing.T) {
	out, err := (&CallAIPipe{}).Invoke(context.Background(), map[string]interface{}{"pipeline": "summarize"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if out != `{"success":true}` {
		t.Errorf("Unexpected payload: %s", out)
	}
}

func TestExecuteJavaScriptEnvelope(t *testing.T) {
	// A missing interpreter still produces a well-formed error envelope.
	engine := sandbox.NewEngine()
	engine.NodePath = "/nonexistent/node"
	tool := NewExecuteJavaScript(engine)

	out, err := tool.Invoke(context.Background(), map[string]interface{}{"code": "return 1"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("Envelope is not JSON: %v", err)
	}
	if payload["error"] == nil {
		t.Errorf("Expected error envelope, got %s", out)
	}
}
