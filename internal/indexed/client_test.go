package indexed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestEventsQueryAndMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("account") != "GADDR" || q.Get("limit") != "25" || q.Get("order") != "desc" {
			t.Errorf("unexpected query: %v", q)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"events": []map[string]interface{}{
				{
					"id": "0001", "tx_hash": "deadbeef", "contract_id": "CAAA",
					"ledger": 1000, "timestamp": 1710000000, "type": "transfer",
					"from": "GADDR", "to": "GBBB", "amount": "10000000",
					"direction": "sent", "counterparty": "GBBB",
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	events, err := client.Events(context.Background(), Query{Account: "GADDR", Limit: 25, Order: "desc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.ID != "0001" || ev.Ledger != 1000 || string(ev.Type) != "transfer" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Amount != "10000000" || string(ev.Direction) != "sent" || ev.Counterparty != "GBBB" {
		t.Fatalf("unexpected event fields: %+v", ev)
	}
}

func TestEventsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	if _, err := client.Events(context.Background(), Query{}); err == nil {
		t.Fatalf("expected error for 503")
	}
}

func TestHealth(t *testing.T) {
	healthy := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if !healthy {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	healthy = false
	if err := client.Health(context.Background()); err == nil {
		t.Fatalf("expected error for unhealthy source")
	}
}
