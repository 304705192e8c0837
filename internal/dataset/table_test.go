package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// writeCSV writes content to a file in a temporary directory.
func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// TestLoadTable tests CSV loading.
func TestLoadTable(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrMissingFile", func(t *testing.T) {
		t.Parallel()
		_, err := LoadTable(filepath.Join(t.TempDir(), "absent.csv"))
		if !errors.Is(err, ErrMissingFile) {
			t.Errorf("expected ErrMissingFile, got %v", err)
		}
		if err != nil && !strings.Contains(err.Error(), "absent.csv") {
			t.Errorf("expected error to name the file, got %v", err)
		}
	})

	t.Run("empty file returns ErrEmptyTable", func(t *testing.T) {
		t.Parallel()
		_, err := LoadTable(writeCSV(t, "empty.csv", ""))
		if !errors.Is(err, ErrEmptyTable) {
			t.Errorf("expected ErrEmptyTable, got %v", err)
		}
	})

	t.Run("row labels are split from data columns", func(t *testing.T) {
		t.Parallel()
		path := writeCSV(t, "stages.csv", ",stage1,stage2\nRandomForest,100,80\nXGBoost,120,\n")
		tbl, err := LoadTable(path, WithRowLabels())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"stage1", "stage2"}, tbl.Columns()); diff != "" {
			t.Errorf("columns mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"RandomForest", "XGBoost"}, tbl.RowLabels()); diff != "" {
			t.Errorf("labels mismatch (-want +got):\n%s", diff)
		}
		col, err := tbl.Column("stage2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		values, err := col.Floats()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(values) != 2 || values[0] != 80 || !math.IsNaN(values[1]) {
			t.Errorf("expected [80 NaN], got %v", values)
		}
	})

	t.Run("BOM and surrounding spaces are ignored", func(t *testing.T) {
		t.Parallel()
		path := writeCSV(t, "bom.csv", "\xEF\xBB\xBFpanel, mae\n+X, 1.5\n")
		tbl, err := LoadTable(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !tbl.HasColumn("panel") || !tbl.HasColumn("mae") {
			t.Errorf("expected trimmed columns, got %v", tbl.Columns())
		}
	})
}

// TestTableColumn tests column access and numeric conversion.
func TestTableColumn(t *testing.T) {
	t.Parallel()

	tbl, err := ParseTable("t.csv", []byte("panel,mae\n+X,1.5\n-X,nan\n+Y,NA\n+Z,\"1,200\"\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("absent column returns ErrMissingColumn naming column and file", func(t *testing.T) {
		t.Parallel()
		_, err := tbl.Column("RandomForest")
		if !errors.Is(err, ErrMissingColumn) {
			t.Fatalf("expected ErrMissingColumn, got %v", err)
		}
		if !strings.Contains(err.Error(), "RandomForest") || !strings.Contains(err.Error(), "t.csv") {
			t.Errorf("expected error to name column and file, got %v", err)
		}
	})

	t.Run("missing tokens load as NaN", func(t *testing.T) {
		t.Parallel()
		col, err := tbl.Column("mae")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := col.Floats()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got[0] != 1.5 || !math.IsNaN(got[1]) || !math.IsNaN(got[2]) || got[3] != 1200 {
			t.Errorf("unexpected values %v", got)
		}
	})

	t.Run("malformed number returns ErrInvalidNumber", func(t *testing.T) {
		t.Parallel()
		bad, err := ParseTable("bad.csv", []byte("panel,mae\n+X,abc\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		col, err := bad.Column("mae")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := col.Floats(); !errors.Is(err, ErrInvalidNumber) {
			t.Errorf("expected ErrInvalidNumber, got %v", err)
		}
	})
}

// TestTableFilter tests row filtering.
func TestTableFilter(t *testing.T) {
	t.Parallel()

	tbl, err := ParseTable("mt.csv", []byte("panel,target,mae\n+X,Power,10\n+X,Voltage,2\n-X,Power,12\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("keeps matching rows in order", func(t *testing.T) {
		t.Parallel()
		power, err := tbl.Filter("target", "Power")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		col, _ := power.Column("panel")
		if diff := cmp.Diff([]string{"+X", "-X"}, col.Strings()); diff != "" {
			t.Errorf("panels mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no match yields empty table", func(t *testing.T) {
		t.Parallel()
		none, err := tbl.Filter("target", "Current")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if none.Len() != 0 {
			t.Errorf("expected 0 rows, got %d", none.Len())
		}
	})

	t.Run("absent filter column returns ErrMissingColumn", func(t *testing.T) {
		t.Parallel()
		if _, err := tbl.Filter("quantity", "Power"); !errors.Is(err, ErrMissingColumn) {
			t.Errorf("expected ErrMissingColumn, got %v", err)
		}
	})
}
