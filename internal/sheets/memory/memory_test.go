package memory

import (
	"context"
	"testing"

	"pengluaran/internal/core"
	"pengluaran/internal/sheets"
)

func TestMirrorUpsertKeepsRowPosition(t *testing.T) {
	ctx := context.Background()
	m := New()

	_ = m.UpsertTransaction(ctx, core.Transaction{ID: "a", Description: "first"})
	_ = m.UpsertTransaction(ctx, core.Transaction{ID: "b"})
	_ = m.UpsertTransaction(ctx, core.Transaction{ID: "a", Description: "edited"})

	rows := m.Rows()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].ID != "a" || rows[0].Description != "edited" {
		t.Errorf("row 0 = %+v, want edited a in place", rows[0])
	}
}

func TestMirrorDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := New()
	_ = m.UpsertTransaction(ctx, core.Transaction{ID: "a"})

	if err := m.DeleteTransaction(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := m.DeleteTransaction(ctx, "a"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if len(m.Rows()) != 0 {
		t.Error("row not removed")
	}
}

func TestMirrorSummaryKey(t *testing.T) {
	m := New()
	s := sheets.MonthlySummary{UserID: "u1", Month: core.MustParseDate("2025-01-01")}
	_ = m.WriteMonthlySummary(context.Background(), s)

	if _, ok := m.Summary("2025-01/u1"); !ok {
		t.Error("summary not stored under 2025-01/u1")
	}
}
