package pathstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_PutGetDelete(t *testing.T) {
	nodes := map[string]json.RawMessage{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		key := r.URL.Path[len("/kv/"):]
		switch r.Method {
		case http.MethodPut:
			var req struct {
				Value json.RawMessage `json:"value"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			nodes[key] = req.Value
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			v, ok := nodes[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"key_path": key, "value": v})
		case http.MethodDelete:
			if _, ok := nodes[key]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			delete(nodes, key)
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)
	ctx := context.Background()

	if err := c.PutNode(ctx, "a/b", NodeRequest{Value: map[string]string{"x": "y"}}); err != nil {
		t.Fatalf("PutNode: %v", err)
	}
	node, err := c.GetNode(ctx, "a/b")
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if string(node.Value) != `{"x":"y"}` {
		t.Errorf("expected stored value, got %s", node.Value)
	}
	if err := c.DeleteNode(ctx, "a/b", false); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	if _, err := c.GetNode(ctx, "a/b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := c.DeleteNode(ctx, "a/b", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting missing key, got %v", err)
	}
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", 0)
	err := c.PutNode(context.Background(), "k", NodeRequest{Value: 1})
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected status error, got %v", err)
	}
}
