package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"mysphere/internal/log"
	ports "mysphere/internal/sheets"
)

// Client appends change journal rows to a Google spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string

	mu    sync.Mutex
	known map[string]bool // tabs confirmed to exist
}

// Ensure interface conformance
var _ ports.Journal = (*Client)(nil)

// Credentials selects a service account key. JSON wins over File.
type Credentials struct {
	JSON string
	File string
}

// New creates a client authenticated with a service account key.
func New(ctx context.Context, spreadsheetID string, creds Credentials, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	credentialsJSON, err := creds.load()
	if err != nil {
		return nil, err
	}

	opts = append([]goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, opts...)
	return newClient(ctx, spreadsheetID, opts...)
}

func newClient(ctx context.Context, spreadsheetID string, opts ...goption.ClientOption) (*Client, error) {
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, known: map[string]bool{}}, nil
}

func (c Credentials) load() ([]byte, error) {
	switch {
	case strings.TrimSpace(c.JSON) != "":
		return []byte(c.JSON), nil
	case strings.TrimSpace(c.File) != "":
		data, err := os.ReadFile(c.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
}

// AppendRow appends row after the last filled row of tab. Values are stored
// as entered, so user text starting with "=" is never evaluated.
func (c *Client) AppendRow(ctx context.Context, tab string, row []any) error {
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, tab+"!A1", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", tab, err)
	}

	slog.DebugContext(ctx, "Journal row appended",
		log.FieldComponent, log.ComponentSheets,
		log.FieldSheet, tab)
	return nil
}

// EnsureTabs adds every missing tab with its header row.
func (c *Client) EnsureTabs(ctx context.Context, headers map[string][]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	missing := make([]string, 0, len(headers))
	for tab := range headers {
		if !c.known[tab] {
			missing = append(missing, tab)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			c.known[sh.Properties.Title] = true
		}
	}

	var requests []*gsheet.Request
	var created []string
	for _, tab := range missing {
		if c.known[tab] {
			continue
		}
		requests = append(requests, &gsheet.Request{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: tab}},
		})
		created = append(created, tab)
	}
	if len(requests) == 0 {
		return nil
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("add tabs %v: %w", created, err)
	}

	for _, tab := range created {
		c.known[tab] = true
		if err := c.AppendRow(ctx, tab, headers[tab]); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Journal tab created",
			log.FieldComponent, log.ComponentSheets,
			log.FieldSheet, tab)
	}
	return nil
}
