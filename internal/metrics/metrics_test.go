package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRemote(t *testing.T) {
	syncOperationsTotal.Reset()
	remoteDuration.Reset()

	RecordRemote("fetch", nil, 20*time.Millisecond)
	RecordRemote("fetch", nil, 30*time.Millisecond)
	RecordRemote("fetch", errors.New("down"), time.Second)

	if got := testutil.ToFloat64(syncOperationsTotal.WithLabelValues("fetch", "success")); got != 2 {
		t.Errorf("success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(syncOperationsTotal.WithLabelValues("fetch", "failed")); got != 1 {
		t.Errorf("failed count = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(remoteDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestRecordCacheWrite(t *testing.T) {
	cacheWritesTotal.Reset()

	RecordCacheWrite("saved")
	RecordCacheWrite("skipped")
	RecordCacheWrite("saved")

	if got := testutil.ToFloat64(cacheWritesTotal.WithLabelValues("saved")); got != 2 {
		t.Errorf("saved = %v, want 2", got)
	}
	if got := testutil.ToFloat64(cacheWritesTotal.WithLabelValues("skipped")); got != 1 {
		t.Errorf("skipped = %v, want 1", got)
	}
}

func TestRecordMigration(t *testing.T) {
	migratedRecordsTotal.Reset()

	RecordMigration(3, 1)

	if got := testutil.ToFloat64(migratedRecordsTotal.WithLabelValues("success")); got != 3 {
		t.Errorf("success = %v, want 3", got)
	}
	if got := testutil.ToFloat64(migratedRecordsTotal.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	exportsTotal.Reset()
	RecordExport("docx", nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "promptvault_exports_total") {
		t.Error("expected promptvault_exports_total in output")
	}
}
