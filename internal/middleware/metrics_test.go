package middleware

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordersAreSafeBeforeInit(t *testing.T) {
	metrics = nil

	RecordDiff("default", "success", time.Second)
	RecordDiffTables("default", 1, 2, 3)
	RecordInstall("default", time.Second, 2, 1)
	UpdateConnectionHealth("default", "mysql", true)
}

func TestRecorders(t *testing.T) {
	InitMetrics()

	RecordDiff("default", "success", 10*time.Millisecond)
	RecordDiff("default", "error", 10*time.Millisecond)
	RecordDiffTables("default", 1, 2, 0)
	RecordInstall("default", 20*time.Millisecond, 3, 1)
	UpdateConnectionHealth("default", "mysql", false)

	if v := testutil.ToFloat64(metrics.DiffTotal.WithLabelValues("default", "success")); v != 1 {
		t.Errorf("expected one successful diff, got %v", v)
	}
	if v := testutil.ToFloat64(metrics.DiffTotal.WithLabelValues("default", "error")); v != 1 {
		t.Errorf("expected one failed diff, got %v", v)
	}
	if v := testutil.ToFloat64(metrics.DiffTableCount.WithLabelValues("default", "changed")); v != 2 {
		t.Errorf("expected 2 changed tables, got %v", v)
	}
	if v := testutil.ToFloat64(metrics.StatementsApplied.WithLabelValues("default")); v != 3 {
		t.Errorf("expected 3 applied statements, got %v", v)
	}
	if v := testutil.ToFloat64(metrics.StatementsFailed.WithLabelValues("default")); v != 1 {
		t.Errorf("expected 1 failed statement, got %v", v)
	}
	if v := testutil.ToFloat64(metrics.ConnectionUp.WithLabelValues("default", "mysql")); v != 0 {
		t.Errorf("expected connection gauge down, got %v", v)
	}
}
