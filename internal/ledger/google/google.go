// Package google backs the ledger with a Google spreadsheet through the
// Sheets v4 API, plus Drive v3 for sharing a freshly provisioned table with
// the operator.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	gdrive "google.golang.org/api/drive/v3"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"kopilka/internal/core"
	"kopilka/internal/ledger"
	"kopilka/internal/log"
)

const (
	spreadsheetTitle = "Финансы"
	entrySheet       = "Записи"
	registrySheet    = "Категории"
)

var entryHeader = []any{"Дата", "Тип", "Сумма", "Категория 1", "Категория 2"}
var registryHeader = []any{"Категория 1", "Категория 2"}

type Client struct {
	svc           *gsheet.Service
	drive         *gdrive.Service
	spreadsheetID string
	ownerEmail    string
}

var _ ledger.Ledger = (*Client)(nil)

// Config carries the adapter settings. SpreadsheetID may be empty before the
// first run; Provision fills it in.
type Config struct {
	SpreadsheetID string
	OwnerEmail    string
}

// New creates a Sheets-backed ledger. Credentials come from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, cfg Config) (*Client, error) {
	credentialsJSON, err := loadCredentials(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	drive, err := gdrive.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gdrive.DriveScope))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &Client{
		svc:           svc,
		drive:         drive,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		ownerEmail:    strings.TrimSpace(cfg.OwnerEmail),
	}, nil
}

func loadCredentials(ctx context.Context) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		credentialsJSON, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		log.FromContext(ctx).WithComponent(log.ComponentSheets).DebugContext(ctx, "loaded service account credentials", "path", serviceAccountFile)
		return credentialsJSON, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// SpreadsheetURL returns the browser URL of the backing table.
func SpreadsheetURL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + id
}

// Provision creates the backing spreadsheet with the entry sheet, its header
// row, and the category registry, shares it with the operator, and remembers
// its identifier on the client.
func (c *Client) Provision(ctx context.Context) (string, string, error) {
	ss := &gsheet.Spreadsheet{
		Properties: &gsheet.SpreadsheetProperties{Title: spreadsheetTitle},
		Sheets: []*gsheet.Sheet{
			{Properties: &gsheet.SheetProperties{Title: entrySheet}},
			{Properties: &gsheet.SheetProperties{Title: registrySheet}},
		},
	}
	created, err := c.svc.Spreadsheets.Create(ss).Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("create spreadsheet: %w", err)
	}
	c.spreadsheetID = created.SpreadsheetId

	if err := c.writeHeader(ctx, entrySheet, entryHeader); err != nil {
		return "", "", err
	}
	if err := c.writeHeader(ctx, registrySheet, registryHeader); err != nil {
		return "", "", err
	}

	if c.ownerEmail != "" {
		perm := &gdrive.Permission{Type: "user", Role: "writer", EmailAddress: c.ownerEmail}
		if _, err := c.drive.Permissions.Create(c.spreadsheetID, perm).Context(ctx).Do(); err != nil {
			return "", "", fmt.Errorf("share spreadsheet with %s: %w", c.ownerEmail, err)
		}
	}

	log.FromContext(ctx).WithComponent(log.ComponentSheets).InfoContext(ctx, "spreadsheet provisioned",
		"spreadsheet_id", c.spreadsheetID, "owner", c.ownerEmail)
	return c.spreadsheetID, SpreadsheetURL(c.spreadsheetID), nil
}

func (c *Client) writeHeader(ctx context.Context, sheet string, header []any) error {
	rng := fmt.Sprintf("%s!A1", sheet)
	vr := &gsheet.ValueRange{Values: [][]any{header}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", sheet, err)
	}
	return nil
}

func (c *Client) Append(ctx context.Context, e core.Entry) error {
	if err := c.ready(); err != nil {
		return err
	}
	vr := &gsheet.ValueRange{Values: [][]any{rowValues(e.Columns())}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, entryRange(), vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append entry row: %w", err)
	}
	return nil
}

func (c *Client) Recent(ctx context.Context, n int) ([]core.Entry, error) {
	rows, err := c.dataRows(ctx)
	if err != nil {
		return nil, err
	}
	if n < len(rows) {
		rows = rows[len(rows)-n:]
	}
	return rowsToEntries(ctx, rows), nil
}

func (c *Client) RowCount(ctx context.Context) (int, error) {
	rows, err := c.dataRows(ctx)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (c *Client) Update(ctx context.Context, rowNum int, e core.Entry) error {
	if err := c.ready(); err != nil {
		return err
	}
	if rowNum < 2 {
		return fmt.Errorf("update row %d: %w", rowNum, ledger.ErrRowOutOfRange)
	}
	rng := fmt.Sprintf("%s!A%d:E%d", entrySheet, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{rowValues(e.Columns())}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update row %d: %w", rowNum, err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, rowNum int) error {
	if err := c.ready(); err != nil {
		return err
	}
	if rowNum < 2 {
		return fmt.Errorf("delete row %d: %w", rowNum, ledger.ErrRowOutOfRange)
	}
	sheetID, err := c.sheetID(ctx, entrySheet)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowNum - 1), // API range is 0-based, half-open
					EndIndex:   int64(rowNum),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d: %w", rowNum, err)
	}
	return nil
}

func (c *Client) EnsureRegistry(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	if _, err := c.sheetID(ctx, registrySheet); err == nil {
		return nil
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: registrySheet},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("create registry sheet: %w", err)
	}
	return c.writeHeader(ctx, registrySheet, registryHeader)
}

func (c *Client) Categories(ctx context.Context) (map[string]core.CategoryPair, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	rng := fmt.Sprintf("%s!A2:B", registrySheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	out := make(map[string]core.CategoryPair, len(resp.Values))
	for _, row := range resp.Values {
		cols := toStrings(row)
		if len(cols) == 0 || cols[0] == "" {
			continue
		}
		p := core.CategoryPair{Primary: cols[0]}
		if len(cols) > 1 {
			p.Secondary = cols[1]
		}
		out[p.Key()] = p
	}
	return out, nil
}

func (c *Client) AddCategory(ctx context.Context, primary, secondary string) error {
	if err := c.ready(); err != nil {
		return err
	}
	vr := &gsheet.ValueRange{Values: [][]any{{primary, secondary}}}
	rng := fmt.Sprintf("%s!A:B", registrySheet)
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append registry pair: %w", err)
	}
	return nil
}

func (c *Client) ready() error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if c.spreadsheetID == "" {
		return errors.New("spreadsheet not provisioned")
	}
	return nil
}

// dataRows reads the full entry range and strips the header. Every call is a
// fresh fetch: the row count feeds destructive offset arithmetic.
func (c *Client) dataRows(ctx context.Context) ([][]string, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, entryRange()).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entryRange(), err)
	}
	if len(resp.Values) <= 1 {
		return nil, nil
	}
	rows := make([][]string, 0, len(resp.Values)-1)
	for _, row := range resp.Values[1:] {
		rows = append(rows, toStrings(row))
	}
	return rows, nil
}

func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found", title)
}

func entryRange() string {
	return fmt.Sprintf("%s!A:E", entrySheet)
}

func rowValues(cols []string) []any {
	out := make([]any, len(cols))
	for i, v := range cols {
		out[i] = v
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// rowsToEntries parses rows best-effort: malformed rows are logged and
// skipped rather than failing the whole listing.
func rowsToEntries(ctx context.Context, rows [][]string) []core.Entry {
	out := make([]core.Entry, 0, len(rows))
	for i, cols := range rows {
		e, err := core.ParseRow(cols)
		if err != nil {
			log.FromContext(ctx).WithComponent(log.ComponentSheets).WarnContext(ctx, "skipping malformed ledger row", "row", i, "error", err)
			continue
		}
		out = append(out, e)
	}
	return out
}
