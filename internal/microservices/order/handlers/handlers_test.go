package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"orderboard/internal/common/logger"
	"orderboard/internal/common/validation"
	"orderboard/internal/connections/database"
	"orderboard/internal/domain"
	"orderboard/internal/microservices/order/repository"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.Open("sqlite://"+filepath.Join(t.TempDir(), "api.db"), 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	lg := logger.NewWithWriter("api-test", io.Discard)
	repo := repository.New(db)
	srv := httptest.NewServer(Router(New(repo, validation.New(), lg), lg, 0))
	t.Cleanup(srv.Close)

	resp := do(t, srv, http.MethodPost, "/api/db/init", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("db init: %d", resp.StatusCode)
	}
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv := newServer(t)
	resp := do(t, srv, http.MethodGet, "/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	body := decodeBody[map[string]any](t, resp)
	if body["status"] != "ok" {
		t.Fatalf("body: %v", body)
	}
}

func TestSeededDishesAndOrderFlow(t *testing.T) {
	srv := newServer(t)

	dishes := decodeBody[[]domain.Dish](t, do(t, srv, http.MethodGet, "/api/dishes", nil))
	if len(dishes) != 3 {
		t.Fatalf("seeded dishes: %d", len(dishes))
	}
	var margherita domain.Dish
	for _, d := range dishes {
		if d.Name == "Margherita" {
			margherita = d
		}
	}
	if margherita.ID == "" || domain.FormatMoney(margherita.Price) != "7.50" {
		t.Fatalf("margherita: %+v", margherita)
	}

	resp := do(t, srv, http.MethodPost, "/api/orders", map[string]any{
		"customerName": "Max",
		"dishes":       []map[string]any{{"id": margherita.ID, "name": "Margherita", "price": 7.5}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: %d", resp.StatusCode)
	}
	created := decodeBody[domain.Order](t, resp)
	if created.Destination != "N/A" || created.Status != domain.StatusOpen {
		t.Fatalf("created: %+v", created)
	}

	resp = do(t, srv, http.MethodPut, "/api/orders/"+created.ID, map[string]string{"status": "done"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set status: %d", resp.StatusCode)
	}

	orders := decodeBody[[]domain.Order](t, do(t, srv, http.MethodGet, "/api/orders", nil))
	if len(orders) != 1 || orders[0].Status != domain.StatusDone || len(orders[0].Lines) != 1 {
		t.Fatalf("orders: %+v", orders)
	}
	if got := domain.FormatMoney(orders[0].Lines[0].PriceSnapshot); got != "7.50" {
		t.Fatalf("price snapshot: %s", got)
	}

	resp = do(t, srv, http.MethodDelete, "/api/orders?status=done", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear done: %d", resp.StatusCode)
	}
	orders = decodeBody[[]domain.Order](t, do(t, srv, http.MethodGet, "/api/orders", nil))
	if len(orders) != 0 {
		t.Fatalf("orders after clear: %+v", orders)
	}
}

func TestValidationProblems(t *testing.T) {
	srv := newServer(t)

	cases := []struct {
		name, method, path string
		body               any
		field              string
	}{
		{"blank dish name", http.MethodPost, "/api/dishes", map[string]any{"name": "  ", "price": 3}, "name"},
		{"negative price", http.MethodPost, "/api/dishes", map[string]any{"name": "Soup", "price": -1}, "price"},
		{"missing customer", http.MethodPost, "/api/orders", map[string]any{"customerName": ""}, "customerName"},
		{"unknown status", http.MethodPut, "/api/orders/x", map[string]any{"status": "cooking"}, "status"},
		{"bad window", http.MethodGet, "/api/orders?window=soon", nil, "window"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, srv, tc.method, tc.path, tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status %d", resp.StatusCode)
			}
			p := decodeBody[Problem](t, resp)
			if p.Type != ProblemValidation {
				t.Fatalf("type %q", p.Type)
			}
			if _, ok := p.Fields[tc.field]; !ok {
				t.Fatalf("field %q missing from %v", tc.field, p.Fields)
			}
		})
	}
}

func TestMalformedBody(t *testing.T) {
	srv := newServer(t)
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/dishes", strings.NewReader("{"))
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestNotFound(t *testing.T) {
	srv := newServer(t)
	missing := "7a1f4e1c-0000-4000-8000-000000000002"

	resp := do(t, srv, http.MethodPut, "/api/dishes/"+missing, map[string]any{"name": "Soup", "price": 4})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("update dish: %d", resp.StatusCode)
	}
	resp = do(t, srv, http.MethodPut, "/api/orders/"+missing, map[string]any{"status": "done"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("set status: %d", resp.StatusCode)
	}
	resp = do(t, srv, http.MethodPost, "/api/orders", map[string]any{
		"customerName": "Max",
		"dishes":       []map[string]any{{"id": missing, "price": 1}},
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("order with unknown dish: %d", resp.StatusCode)
	}
	resp = do(t, srv, http.MethodDelete, "/api/dishes/"+missing, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete missing dish should be silent: %d", resp.StatusCode)
	}
}

func TestUnconfiguredStore(t *testing.T) {
	lg := logger.NewWithWriter("api-test", io.Discard)
	srv := httptest.NewServer(Router(New(repository.New(nil), validation.New(), lg), lg, 0))
	defer srv.Close()

	resp := do(t, srv, http.MethodGet, "/api/dishes", nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if p := decodeBody[Problem](t, resp); p.Type != ProblemConfiguration {
		t.Fatalf("type %q", p.Type)
	}
}
