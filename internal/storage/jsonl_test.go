package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"activityScope/internal/model"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "activity.jsonl")
	sink := NewJsonlStorage(path)

	first := []model.ActivityEvent{
		{ID: "0004096-0", TxHash: "aa11", Ledger: 1000, Type: model.ActivityTransfer, Amount: "10000000"},
	}
	second := []model.ActivityEvent{
		{ID: "0004097-0", TxHash: "bb22", Ledger: 1001, Type: model.ActivityFee, Amount: "100"},
	}

	if err := sink.PutActivityBatch(first); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := sink.PutActivityBatch(second); err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if err := sink.PutActivityBatch(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var got []model.ActivityEvent
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var ev model.ActivityEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		got = append(got, ev)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != "0004096-0" || got[1].ID != "0004097-0" {
		t.Errorf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
	if got[1].Type != model.ActivityFee {
		t.Errorf("second record type = %s", got[1].Type)
	}
}
