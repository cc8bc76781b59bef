package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLite(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func implementations(t *testing.T) map[string]DB {
	return map[string]DB{
		"sqlite": newTestSQLite(t),
		"memory": NewMemoryDB(),
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, db := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := db.GetDocument(ctx, "ledger"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := db.PutDocument(ctx, "ledger", []byte(`{"balance":1}`)); err != nil {
				t.Fatal(err)
			}
			if err := db.PutDocument(ctx, "ledger", []byte(`{"balance":2}`)); err != nil {
				t.Fatal(err)
			}
			got, err := db.GetDocument(ctx, "ledger")
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != `{"balance":2}` {
				t.Errorf("got %s", got)
			}
		})
	}
}

func TestHistoryIsBoundedNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for name, db := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 55; i++ {
				e := HistoryEntry{
					ID:         fmt.Sprintf("h%02d", i),
					GameType:   "crash",
					Bet:        100,
					Won:        i%2 == 0,
					Amount:     int64(i),
					Multiplier: 1.5,
					Timestamp:  base.Add(time.Duration(i) * time.Second),
				}
				if err := db.AppendHistory(ctx, e, 50); err != nil {
					t.Fatalf("append %d: %v", i, err)
				}
			}

			entries, err := db.ListHistory(ctx, 0)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 50 {
				t.Fatalf("expected 50 entries, got %d", len(entries))
			}
			if entries[0].ID != "h54" || entries[49].ID != "h05" {
				t.Errorf("order: first=%s last=%s", entries[0].ID, entries[49].ID)
			}
			if !entries[0].Won || entries[0].Amount != 54 || !entries[0].Timestamp.Equal(base.Add(54*time.Second)) {
				t.Errorf("fields not preserved: %+v", entries[0])
			}

			top, err := db.ListHistory(ctx, 3)
			if err != nil {
				t.Fatal(err)
			}
			if len(top) != 3 || top[2].ID != "h52" {
				t.Errorf("limit 3 returned %+v", top)
			}

			if err := db.ClearHistory(ctx); err != nil {
				t.Fatal(err)
			}
			entries, _ = db.ListHistory(ctx, 0)
			if len(entries) != 0 {
				t.Errorf("history not cleared: %d", len(entries))
			}
		})
	}
}

func TestMigrateIsIdempotentOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arcade.db")

	db, err := NewSQLiteDB(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	if err := db.PutDocument(context.Background(), "ledger", []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = NewSQLiteDB(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if _, err := db.GetDocument(context.Background(), "ledger"); err != nil {
		t.Errorf("document lost across reopen: %v", err)
	}
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}
