// Package google is the Google Sheets record store, the primary backend.
// Each table is one worksheet with a header row; worksheets are created
// on first write with the table's default schema.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/solomonubom54-png/biverway-finance-tracker-v2/internal/store"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64 // worksheet title -> sheetId
}

var _ store.RecordStore = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	credentials, err := credentialsFromEnv()
	if err != nil {
		return nil, err
	}
	return New(ctx, spreadsheetID, credentials)
}

// New creates a Sheets client for one spreadsheet using service-account
// credentials.
func New(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*Client, error) {
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetIDs:      make(map[string]int64),
	}, nil
}

func credentialsFromEnv() ([]byte, error) {
	if j := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); j != "" {
		return []byte(j), nil
	}
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	credentials, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return credentials, nil
}

// unavailable wraps a transport failure in the store's taxonomy so the
// UI can render it as a warning and move on.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", store.ErrStorageUnavailable, op, err)
}

// lookupSheet returns the sheetId for a worksheet title, refreshing the
// cache from the spreadsheet metadata on a miss.
func (c *Client) lookupSheet(ctx context.Context, title string) (int64, bool, error) {
	c.mu.Lock()
	if id, ok := c.sheetIDs[title]; ok {
		c.mu.Unlock()
		return id, true, nil
	}
	c.mu.Unlock()

	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, false, unavailable("get spreadsheet", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			c.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	id, ok := c.sheetIDs[title]
	return id, ok, nil
}

// ensureSheet creates the worksheet with its default header when absent.
func (c *Client) ensureSheet(ctx context.Context, table string) (int64, error) {
	id, ok, err := c.lookupSheet(ctx, table)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}

	headers := store.HeadersFor(table)
	if headers == nil {
		return 0, fmt.Errorf("unknown table %q", table)
	}

	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{
					Title:          table,
					GridProperties: &gsheet.GridProperties{RowCount: 1000, ColumnCount: 20},
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, unavailable("add sheet "+table, err)
	}

	vr := &gsheet.ValueRange{Values: [][]any{toAnyRow(headers)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, table+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return 0, unavailable("write header for "+table, err)
	}

	id = resp.Replies[0].AddSheet.Properties.SheetId
	c.mu.Lock()
	c.sheetIDs[table] = id
	c.mu.Unlock()

	slog.InfoContext(ctx, "Created worksheet", "table", table, "sheet_id", id)
	return id, nil
}

func (c *Client) Append(ctx context.Context, table string, values []string) error {
	if _, err := c.ensureSheet(ctx, table); err != nil {
		return err
	}

	header, err := c.readHeader(ctx, table)
	if err != nil {
		return err
	}
	if len(values) > len(header) {
		// Schema mismatch is auto-repaired by widening the header with
		// the table's default column names; it is never fatal.
		defaults := store.HeadersFor(table)
		for i := len(header); i < len(values); i++ {
			name := fmt.Sprintf("col_%d", i+1)
			if i < len(defaults) {
				name = defaults[i]
			}
			header = append(header, name)
		}
		vr := &gsheet.ValueRange{Values: [][]any{toAnyRow(header)}}
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, table+"!A1", vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return unavailable("repair header for "+table, err)
		}
		slog.WarnContext(ctx, "Repaired table header", "table", table, "columns", len(header))
	}

	row := make([]string, len(header))
	copy(row, values)

	vr := &gsheet.ValueRange{Values: [][]any{toAnyRow(row)}}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, table+"!A1", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return unavailable("append to "+table, err)
	}
	return nil
}

func (c *Client) readHeader(ctx context.Context, table string) ([]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, table+"!1:1").Context(ctx).Do()
	if err != nil {
		return nil, unavailable("read header of "+table, err)
	}
	if len(resp.Values) == 0 {
		return store.HeadersFor(table), nil
	}
	return toStrings(resp.Values[0]), nil
}

func (c *Client) LoadAll(ctx context.Context, table string, headers []string) ([]store.Record, error) {
	_, ok, err := c.lookupSheet(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Absent worksheets read as empty, never as an error.
		return []store.Record{}, nil
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, table+"!A:T").Context(ctx).Do()
	if err != nil {
		return nil, unavailable("read "+table, err)
	}
	if len(resp.Values) == 0 {
		return []store.Record{}, nil
	}

	header := toStrings(resp.Values[0])
	out := make([]store.Record, 0, len(resp.Values)-1)
	for _, raw := range resp.Values[1:] {
		cols := toStrings(raw)
		rec := store.Record{}
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(cols) {
				rec[h] = cols[i]
			} else {
				rec[h] = ""
			}
		}
		for _, h := range headers {
			if _, exists := rec[h]; !exists {
				rec[h] = ""
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Client) DeleteAt(ctx context.Context, table string, pos int) error {
	sheetID, ok, err := c.lookupSheet(ctx, table)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: table %s does not exist", store.ErrPositionOutOfRange, table)
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, table+"!A:A").Context(ctx).Do()
	if err != nil {
		return unavailable("count rows of "+table, err)
	}
	rowCount := len(resp.Values)
	if pos < 2 || pos > rowCount {
		return fmt.Errorf("%w: table %s position %d (rows %d)",
			store.ErrPositionOutOfRange, table, pos, rowCount)
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(pos - 1), // 0-based, header is index 0
					EndIndex:   int64(pos),
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return unavailable(fmt.Sprintf("delete row %d of %s", pos, table), err)
	}
	return nil
}

func (c *Client) Clear(ctx context.Context, table string) error {
	if _, err := c.ensureSheet(ctx, table); err != nil {
		return err
	}
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, table+"!A2:T", &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return unavailable("clear "+table, err)
	}
	return nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func toAnyRow(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
