package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pengluaran/internal/core"
	ports "pengluaran/internal/sheets"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{CredentialsJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sheet"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("expected credentials error, got: %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := loadCredentials("", path)
	if err != nil || !strings.Contains(string(got), "service_account") {
		t.Errorf("file credentials = %q, %v", got, err)
	}

	got, err = loadCredentials(`{"inline":true}`, path)
	if err != nil || string(got) != `{"inline":true}` {
		t.Errorf("inline should win, got %q, %v", got, err)
	}

	if _, err := loadCredentials("", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := newClient(nil, Config{SpreadsheetID: "id"})
	if c.sheetName != "Transaksi" || c.summarySheet != "Ringkasan" {
		t.Errorf("defaults = %q, %q", c.sheetName, c.summarySheet)
	}
}

func TestClient_UninitializedService(t *testing.T) {
	c := newClient(nil, Config{SpreadsheetID: "id"})
	ctx := context.Background()

	if err := c.UpsertTransaction(ctx, core.Transaction{ID: "a"}); err == nil {
		t.Error("UpsertTransaction should fail without a service")
	}
	if err := c.DeleteTransaction(ctx, "a"); err == nil {
		t.Error("DeleteTransaction should fail without a service")
	}
	if err := c.WriteMonthlySummary(ctx, ports.MonthlySummary{}); err == nil {
		t.Error("WriteMonthlySummary should fail without a service")
	}
}

func TestClient_InvalidateRows(t *testing.T) {
	c := newClient(nil, Config{SpreadsheetID: "id"})
	c.rowIndex = map[string]int{"a": 2}
	c.cachedRowCount = 2

	c.invalidateRows()

	if c.rowIndex != nil || c.cachedRowCount != 0 || !c.cacheExpiresAt.IsZero() {
		t.Error("row cache not cleared")
	}
}
