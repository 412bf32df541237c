package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExecute_InvalidConfigReturnsExitCode(t *testing.T) {
	t.Setenv("QUEUE_BACKEND", "bogus")

	if code := execute(true); code != 1 {
		t.Fatalf("code=%d, want 1", code)
	}
}

func TestExecute_ImportsIntoMemory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-WP-TotalPages", "1")
		switch r.URL.Path {
		case "/wp-json/wc/v3/customers":
			_, _ = w.Write([]byte(`[{"id":7,"email":"ada@example.com","first_name":"Ada","last_name":"Lovelace","meta_data":[]}]`))
		default:
			_, _ = w.Write([]byte(`[{"id":1,"customer_id":7,"status":"active"}]`))
		}
	}))
	t.Cleanup(srv.Close)

	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("LOCK_BACKEND", "memory")
	t.Setenv("QUEUE_BACKEND", "memory")
	t.Setenv("CHAT_BACKEND", "memory")
	t.Setenv("DIRECTORY_BACKEND", "memory")
	t.Setenv("WOOCOMMERCE_URL", srv.URL)

	if code := execute(true); code != 0 {
		t.Fatalf("code=%d, want 0", code)
	}
}

func TestExecute_ShopFailureReturnsExitCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"woocommerce_rest_cannot_view"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("LOCK_BACKEND", "memory")
	t.Setenv("QUEUE_BACKEND", "memory")
	t.Setenv("WOOCOMMERCE_URL", srv.URL)

	if code := execute(true); code != 1 {
		t.Fatalf("code=%d, want 1", code)
	}
}
