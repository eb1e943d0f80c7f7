package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"pengluaran/internal/core"
	ports "pengluaran/internal/sheets"
)

const defaultRowCacheTTL = 5 * time.Minute

// Config selects the spreadsheet and the service account used to reach it.
// CredentialsJSON wins over CredentialsFile.
type Config struct {
	SpreadsheetID    string
	SheetName        string
	SummarySheetName string
	CredentialsJSON  string
	CredentialsFile  string
}

// Client writes transaction rows into SheetName, keyed by the id in column A,
// and monthly summaries into SummarySheetName.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	summarySheet  string

	// row positions of SheetName, refreshed after cacheValidDuration and
	// dropped whenever rows shift
	mu                 sync.Mutex
	rowIndex           map[string]int
	cachedRowCount     int
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
	sheetIDs           map[string]int64
}

var _ ports.TransactionMirror = (*Client)(nil)

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := loadCredentials(cfg.CredentialsJSON, cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets mirror ready",
		"component", "sheets",
		"sheet", cfg.SheetName,
		"summary_sheet", cfg.SummarySheetName)

	return newClient(svc, cfg), nil
}

func newClient(svc *gsheet.Service, cfg Config) *Client {
	sheet := strings.TrimSpace(cfg.SheetName)
	if sheet == "" {
		sheet = "Transaksi"
	}
	summary := strings.TrimSpace(cfg.SummarySheetName)
	if summary == "" {
		summary = "Ringkasan"
	}
	return &Client{
		svc:                svc,
		spreadsheetID:      cfg.SpreadsheetID,
		sheetName:          sheet,
		summarySheet:       summary,
		cacheValidDuration: defaultRowCacheTTL,
		sheetIDs:           make(map[string]int64),
	}
}

func loadCredentials(inline, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inline) != "":
		return []byte(inline), nil
	case strings.TrimSpace(file) != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// UpsertTransaction rewrites the row holding tx.ID, or appends one.
func (c *Client) UpsertTransaction(ctx context.Context, tx core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	index, count, err := c.rows(ctx)
	if err != nil {
		return err
	}

	values := &gsheet.ValueRange{Values: [][]any{transactionRow(tx)}}
	if row, ok := index[tx.ID]; ok {
		rng := fmt.Sprintf("%s!A%d:%s%d", c.sheetName, row, lastColumn(TransactionHeader), row)
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, values).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update row %d in %s: %w", row, c.sheetName, err)
		}
		return nil
	}

	if count == 0 {
		values.Values = append([][]any{toAny(TransactionHeader)}, values.Values...)
	}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheetName+"!A:A", values).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		c.invalidateRows()
		return fmt.Errorf("append row to %s: %w", c.sheetName, err)
	}

	c.mu.Lock()
	if c.rowIndex != nil {
		c.cachedRowCount += len(values.Values)
		c.rowIndex[tx.ID] = c.cachedRowCount
	}
	c.mu.Unlock()
	return nil
}

// DeleteTransaction removes the row holding id. A missing row is not an error.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	index, _, err := c.rows(ctx)
	if err != nil {
		return err
	}
	row, ok := index[id]
	if !ok {
		return nil
	}

	sheetID, err := c.sheetID(ctx, c.sheetName)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}
	// rows below shift up either way
	c.invalidateRows()
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d from %s: %w", row, c.sheetName, err)
	}
	return nil
}

// WriteMonthlySummary upserts the row keyed by s.Key() in the summary sheet.
func (c *Client) WriteMonthlySummary(ctx context.Context, s ports.MonthlySummary) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.summarySheet+"!A:A").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", c.summarySheet, err)
	}

	values := &gsheet.ValueRange{Values: [][]any{summaryRow(s)}}
	if row := findRow(resp.Values, s.Key()); row > 0 {
		rng := fmt.Sprintf("%s!A%d:%s%d", c.summarySheet, row, lastColumn(SummaryHeader), row)
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, values).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update summary %s: %w", s.Key(), err)
		}
		return nil
	}

	if len(resp.Values) == 0 {
		values.Values = append([][]any{toAny(SummaryHeader)}, values.Values...)
	}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.summarySheet+"!A:A", values).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append summary %s: %w", s.Key(), err)
	}
	return nil
}

// rows returns the id to row map of the transaction sheet and its row count.
func (c *Client) rows(ctx context.Context) (map[string]int, int, error) {
	c.mu.Lock()
	if c.rowIndex != nil && time.Now().Before(c.cacheExpiresAt) {
		index, count := c.rowIndex, c.cachedRowCount
		c.mu.Unlock()
		return index, count, nil
	}
	c.mu.Unlock()

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.sheetName+"!A:A").Context(ctx).Do()
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", c.sheetName, err)
	}
	index := buildRowIndex(resp.Values)

	c.mu.Lock()
	c.rowIndex = index
	c.cachedRowCount = len(resp.Values)
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)
	c.mu.Unlock()
	return index, len(resp.Values), nil
}

func (c *Client) invalidateRows() {
	c.mu.Lock()
	c.rowIndex = nil
	c.cachedRowCount = 0
	c.cacheExpiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[title]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			c.mu.Lock()
			c.sheetIDs[title] = sh.Properties.SheetId
			c.mu.Unlock()
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", title)
}
