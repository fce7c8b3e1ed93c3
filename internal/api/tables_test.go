package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sqlsage/sqlsage/internal/database"
)

type fakeBrowser struct {
	tables      []string
	info        string
	sampleTable string
	sampleLimit int
	sampleErr   error
}

func (f *fakeBrowser) TableNames(context.Context) ([]string, error) {
	return f.tables, nil
}

func (f *fakeBrowser) TableInfo(context.Context) (string, error) {
	return f.info, nil
}

func (f *fakeBrowser) SampleRows(_ context.Context, table string, limit int) (database.Result, error) {
	f.sampleTable = table
	f.sampleLimit = limit
	if f.sampleErr != nil {
		return database.Result{}, f.sampleErr
	}
	return database.Result{Columns: []string{"id"}, Rows: [][]any{{1}}}, nil
}

func TestListTables(t *testing.T) {
	browser := &fakeBrowser{tables: []string{"orders", "users"}}
	h := NewHandler(testConfig(t), Dependencies{Tables: browser})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/tables", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var body struct {
		Tables []string `json:"tables"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if len(body.Tables) != 2 || body.Tables[0] != "orders" {
		t.Fatalf("tables = %v", body.Tables)
	}
}

func TestSchemaEndpoint(t *testing.T) {
	browser := &fakeBrowser{info: "CREATE TABLE users (\n\tid integer NOT NULL\n);\n"}
	h := NewHandler(testConfig(t), Dependencies{Tables: browser})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/schema", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var body struct {
		Schema string `json:"schema"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if body.Schema != browser.info {
		t.Fatalf("schema = %q", body.Schema)
	}
}

func TestSampleRowsUsesLimitParam(t *testing.T) {
	browser := &fakeBrowser{}
	h := NewHandler(testConfig(t), Dependencies{Tables: browser, SampleRows: 5})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/tables/users/sample?limit=7", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if browser.sampleTable != "users" || browser.sampleLimit != 7 {
		t.Fatalf("sample call = %q limit %d", browser.sampleTable, browser.sampleLimit)
	}
}

func TestSampleRowsClampsLimit(t *testing.T) {
	browser := &fakeBrowser{}
	h := NewHandler(testConfig(t), Dependencies{Tables: browser})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/tables/users/sample?limit=%d", maxSampleRows*10), nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if browser.sampleLimit != maxSampleRows {
		t.Fatalf("limit = %d, want %d", browser.sampleLimit, maxSampleRows)
	}
}

func TestSampleRowsRejectsInvalidLimit(t *testing.T) {
	h := NewHandler(testConfig(t), Dependencies{Tables: &fakeBrowser{}})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/tables/users/sample?limit=-1", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestSampleRowsFailure(t *testing.T) {
	browser := &fakeBrowser{sampleErr: &database.ExecutionError{Err: fmt.Errorf("no such table")}}
	h := NewHandler(testConfig(t), Dependencies{Tables: browser})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/tables/ghost/sample", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}
