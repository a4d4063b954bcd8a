package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"cargotrack_backend/platform/apperr"
	"cargotrack_backend/platform/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New("test-key", logger.New("development"), WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	return client, server
}

func TestSheetTitles(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected api key query param, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sheets":[{"properties":{"title":"January"}},{"properties":{"title":"February"}}]}`))
	})

	titles, err := client.SheetTitles(context.Background(), "sheet-id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(titles) != 2 || titles[0] != "January" || titles[1] != "February" {
		t.Fatalf("unexpected titles: %v", titles)
	}
}

func TestValues_MixedCellTypes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"values":[["status","date","TRK-1","A77",2.5,1200],["done","", "TRK-2","B13"]]}`))
	})

	rows, err := client.Values(context.Background(), "sheet-id", "January!A:F")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][4] != "2.5" {
		t.Fatalf("expected numeric cell rendered as 2.5, got %q", rows[0][4])
	}
	if rows[0][5] != "1200" {
		t.Fatalf("expected numeric cell rendered as 1200, got %q", rows[0][5])
	}
	if len(rows[1]) != 4 {
		t.Fatalf("expected ragged row preserved with 4 cells, got %d", len(rows[1]))
	}
}

func TestValues_NotFoundIsUnavailable(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.Values(context.Background(), "sheet-id", "Missing!A:F")
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected KindUnavailable, got %v", err)
	}
}

func TestSheetTitles_ConnectionRefusedIsUnavailable(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.SheetTitles(context.Background(), "sheet-id")
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected KindUnavailable, got %v", err)
	}
}
