package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheets is a minimal stand-in for the Sheets v4 REST API.
type fakeSheets struct {
	mu       sync.Mutex
	tabs     []string
	appended map[string][][]any
	added    []string
	gets     int
	query    map[string]string
}

func newFakeSheets(tabs ...string) *fakeSheets {
	return &fakeSheets{tabs: tabs, appended: map[string][][]any{}, query: map[string]string{}}
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		tab := path[strings.Index(path, "/values/")+len("/values/"):]
		tab = strings.TrimSuffix(tab, "!A1:append")
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.appended[tab] = append(f.appended[tab], vr.Values...)
		f.query["valueInputOption"] = r.URL.Query().Get("valueInputOption")
		f.query["insertDataOption"] = r.URL.Query().Get("insertDataOption")
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.added = append(f.added, rq.AddSheet.Properties.Title)
				f.tabs = append(f.tabs, rq.AddSheet.Properties.Title)
			}
		}
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/v4/spreadsheets/"):
		f.gets++
		sheets := make([]map[string]any, 0, len(f.tabs))
		for _, t := range f.tabs {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})

	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := newClient(context.Background(), "sheet-id",
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c
}

func TestClient_AppendRow(t *testing.T) {
	fake := newFakeSheets("Expenses")
	c := newTestClient(t, fake)

	err := c.AppendRow(context.Background(), "Expenses", []any{"2025-03-15T12:00:00Z", "created", "abc", "=SUM(A1)"})
	require.NoError(t, err)

	require.Len(t, fake.appended["Expenses"], 1)
	assert.Equal(t, []any{"2025-03-15T12:00:00Z", "created", "abc", "=SUM(A1)"}, fake.appended["Expenses"][0])
	assert.Equal(t, "RAW", fake.query["valueInputOption"])
	assert.Equal(t, "INSERT_ROWS", fake.query["insertDataOption"])
}

func TestClient_EnsureTabs(t *testing.T) {
	fake := newFakeSheets("Expenses")
	c := newTestClient(t, fake)
	headers := map[string][]any{
		"Expenses":   {"Logged At"},
		"BodyWeight": {"Logged At", "Weight"},
		"Wholesale":  {"Logged At", "Investment"},
	}

	require.NoError(t, c.EnsureTabs(context.Background(), headers))

	added := append([]string{}, fake.added...)
	sort.Strings(added)
	assert.Equal(t, []string{"BodyWeight", "Wholesale"}, added)
	assert.Equal(t, [][]any{{"Logged At", "Weight"}}, fake.appended["BodyWeight"])
	assert.Empty(t, fake.appended["Expenses"], "existing tabs keep their rows")

	// Everything is known now; no further API calls.
	require.NoError(t, c.EnsureTabs(context.Background(), headers))
	assert.Equal(t, 1, fake.gets)
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, "  ", Credentials{JSON: "{}"})
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())

	_, err = New(ctx, "sheet-id", Credentials{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")

	_, err = New(ctx, "sheet-id", Credentials{File: filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}
