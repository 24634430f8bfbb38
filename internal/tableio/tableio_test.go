package tableio

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"

	"github.com/nao1215/tabclean/internal/frame"
)

const sampleCSV = `id,price,name,active,note
1,2.5,apple,true,
2,NA,banana,false,x
3,4,cherry,TRUE,7
`

func dtypeNames(t *frame.Table) []string {
	out := make([]string, 0, t.NumCols())
	for _, dt := range t.DTypes() {
		out = append(out, dt.Name())
	}
	return out
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	tbl, err := ReadCSV(strings.NewReader(sampleCSV), CSVOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r, c := tbl.Shape(); r != 3 || c != 5 {
		t.Fatalf("expected shape (3,5), got (%d,%d)", r, c)
	}
	want := []string{"int64", "float64", "object", "bool", "object"}
	if got := dtypeNames(tbl); !slices.Equal(got, want) {
		t.Errorf("expected dtypes %v, got %v", want, got)
	}
	if !frame.IsNA(tbl.Cell(1, 1)) {
		t.Errorf("expected NA token to be missing, got %#v", tbl.Cell(1, 1))
	}
	if !frame.IsNA(tbl.Cell(0, 4)) {
		t.Errorf("expected empty field to be missing, got %#v", tbl.Cell(0, 4))
	}
	if tbl.Cell(2, 4) != "7" {
		t.Errorf("expected mixed column to keep text, got %#v", tbl.Cell(2, 4))
	}
	if tbl.Cell(2, 3) != true {
		t.Errorf("expected TRUE to parse as bool, got %#v", tbl.Cell(2, 3))
	}

	t.Run("short rows are padded", func(t *testing.T) {
		t.Parallel()
		tbl, err := ReadCSV(strings.NewReader("a,b\n1\n2,3\n"), CSVOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !frame.IsNA(tbl.Cell(0, 1)) {
			t.Errorf("expected padded cell to be missing, got %#v", tbl.Cell(0, 1))
		}
	})

	t.Run("long rows are rejected", func(t *testing.T) {
		t.Parallel()
		_, err := ReadCSV(strings.NewReader("a\n1,2\n"), CSVOptions{})
		if !errors.Is(err, frame.ErrRaggedColumns) {
			t.Errorf("expected ErrRaggedColumns, got %v", err)
		}
	})

	t.Run("no header", func(t *testing.T) {
		t.Parallel()
		tbl, err := ReadCSV(strings.NewReader("1;2\n3;4\n"), CSVOptions{Comma: ';', NoHeader: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(tbl.Names(), []string{"0", "1"}) || tbl.NumRows() != 2 {
			t.Errorf("unexpected table %v with %d rows", tbl.Names(), tbl.NumRows())
		}
	})

	t.Run("mixed booleans and numbers stay text", func(t *testing.T) {
		t.Parallel()
		tbl, err := ReadCSV(strings.NewReader("a\ntrue\n5\n"), CSVOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tbl.Cell(0, 0) != "true" || tbl.Cell(1, 0) != "5" {
			t.Errorf("expected text, got %#v and %#v", tbl.Cell(0, 0), tbl.Cell(1, 0))
		}
	})

	t.Run("repeated headers are kept", func(t *testing.T) {
		t.Parallel()
		tbl, err := ReadCSV(strings.NewReader("a,a\n1,x\n"), CSVOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(tbl.Names(), []string{"a", "a"}) {
			t.Errorf("unexpected names: %v", tbl.Names())
		}
		if tbl.Cell(0, 0) != int64(1) || tbl.Cell(0, 1) != "x" {
			t.Errorf("unexpected cells: %#v %#v", tbl.Cell(0, 0), tbl.Cell(0, 1))
		}
	})
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	tbl := frame.MustNew(
		frame.NewColumn("a", 1, nil),
		frame.NewColumn("b", "x,y", 2.5),
	)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl, CSVOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "a,b\n1,\"x,y\"\n,2.5\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		format  Format
		comp    Compression
		wantErr bool
	}{
		{path: "data.csv", format: FormatCSV},
		{path: "data.CSV.gz", format: FormatCSV, comp: CompressionGzip},
		{path: "data.tsv.zst", format: FormatTSV, comp: CompressionZstd},
		{path: "data.csv.lz4", format: FormatCSV, comp: CompressionLZ4},
		{path: "book.xlsx", format: FormatXLSX},
		{path: "page.html", format: FormatHTML},
		{path: "store.sqlite", format: FormatSQLite},
		{path: "postgres://user:pw@localhost/db", format: FormatPostgres},
		{path: "book.xlsx.gz", wantErr: true},
		{path: "data.parquet", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			format, comp, err := DetectFormat(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if format != tt.format || comp != tt.comp {
				t.Errorf("expected (%q,%q), got (%q,%q)", tt.format, tt.comp, format, comp)
			}
		})
	}
}

func TestSaveAndOpen(t *testing.T) {
	t.Parallel()

	original := frame.MustNew(
		frame.NewColumn("id", 1, 2, 3),
		frame.NewColumn("score", 1.5, nil, 3.25),
		frame.NewColumn("label", "a", "b", nil),
	)

	for _, name := range []string{"out.csv", "out.tsv", "out.csv.gz", "out.csv.zst", "out.csv.lz4", "out.xlsx"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), name)
			if err := Save(path, original); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			got, err := Open(context.Background(), Source{Path: path})
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if !slices.Equal(got.Names(), original.Names()) {
				t.Errorf("expected names %v, got %v", original.Names(), got.Names())
			}
			if got.NumRows() != 3 {
				t.Fatalf("expected 3 rows, got %d", got.NumRows())
			}
			if got.Cell(2, 1) != 3.25 {
				t.Errorf("expected 3.25, got %#v", got.Cell(2, 1))
			}
			if !frame.IsNA(got.Cell(1, 1)) || !frame.IsNA(got.Cell(2, 2)) {
				t.Error("expected missing cells to survive the round trip")
			}
		})
	}

	t.Run("html cannot be written", func(t *testing.T) {
		t.Parallel()
		err := Save(filepath.Join(t.TempDir(), "out.html"), original)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Open(context.Background(), Source{Path: filepath.Join(t.TempDir(), "nope.csv")})
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})
}

func TestReadXLSXSheet(t *testing.T) {
	t.Parallel()

	tbl := frame.MustNew(frame.NewColumn("x", 1, 2))
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, tbl, XLSXOptions{Sheet: "data"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := buf.Bytes()

	got, err := ReadXLSX(bytes.NewReader(data), XLSXOptions{Sheet: "data"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.NumRows() != 2 || got.Cell(1, 0) != int64(2) {
		t.Errorf("unexpected table: %d rows, cell %#v", got.NumRows(), got.Cell(1, 0))
	}

	_, err = ReadXLSX(bytes.NewReader(data), XLSXOptions{Sheet: "other"})
	if !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("expected ErrSheetNotFound, got %v", err)
	}
}

func TestReadHTML(t *testing.T) {
	t.Parallel()

	const page = `<html><body>
<table><tr><td>ignored</td></tr></table>
<table>
  <thead><tr><th>City</th><th>Population</th></tr></thead>
  <tbody>
    <tr><td>Berlin</td><td>3645000</td></tr>
    <tr><td><b>Hamburg</b></td><td>1841000</td></tr>
    <tr><td>Unknown</td><td>n/a</td></tr>
  </tbody>
</table>
</body></html>`

	tbl, err := ReadHTML(strings.NewReader(page), HTMLOptions{TableIndex: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(tbl.Names(), []string{"City", "Population"}) {
		t.Errorf("unexpected header %v", tbl.Names())
	}
	if tbl.NumRows() != 3 {
		t.Fatalf("expected 3 rows, got %d", tbl.NumRows())
	}
	if tbl.Cell(1, 0) != "Hamburg" {
		t.Errorf("expected nested text to be read, got %#v", tbl.Cell(1, 0))
	}
	if tbl.Cell(0, 1) != int64(3645000) || !frame.IsNA(tbl.Cell(2, 1)) {
		t.Errorf("unexpected population column %v", tbl.Column(1).Values)
	}

	_, err = ReadHTML(strings.NewReader(page), HTMLOptions{TableIndex: 5})
	if !errors.Is(err, ErrNoTable) {
		t.Errorf("expected ErrNoTable, got %v", err)
	}
}

func TestReadSQL(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "source.sqlite")
	db, err := sql.Open(DriverSQLite, path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	stmts := []string{
		`CREATE TABLE sales (id INTEGER, region TEXT, amount REAL)`,
		`INSERT INTO sales VALUES (1, 'north', 10.5), (2, NULL, 7), (3, 'south', NULL)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			t.Fatalf("failed to prepare database: %v", err)
		}
	}

	tbl, err := ReadSQL(ctx, db, "SELECT id, region, amount FROM sales ORDER BY id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r, c := tbl.Shape(); r != 3 || c != 3 {
		t.Fatalf("expected shape (3,3), got (%d,%d)", r, c)
	}
	if !frame.IsNA(tbl.Cell(1, 1)) || !frame.IsNA(tbl.Cell(2, 2)) {
		t.Error("expected NULL to be missing")
	}
	if tbl.Cell(0, 2) != 10.5 {
		t.Errorf("expected 10.5, got %#v", tbl.Cell(0, 2))
	}

	t.Run("open by path", func(t *testing.T) {
		t.Parallel()
		tbl, err := Open(ctx, Source{Path: path, Query: "SELECT region FROM sales"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tbl.NumRows() != 3 {
			t.Errorf("expected 3 rows, got %d", tbl.NumRows())
		}
	})

	t.Run("query is required", func(t *testing.T) {
		t.Parallel()
		if _, err := Open(ctx, Source{Path: path}); !errors.Is(err, ErrNoQuery) {
			t.Errorf("expected ErrNoQuery, got %v", err)
		}
	})
}

func TestGotaRoundTrip(t *testing.T) {
	t.Parallel()

	tbl := frame.MustNew(
		frame.NewColumn("n", 1, 2, nil),
		frame.NewColumn("f", 0.5, nil, 1.5),
		frame.NewColumn("s", "a", nil, "c"),
	)

	df, err := ToGota(tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if df.Nrow() != 3 || df.Ncol() != 3 {
		t.Fatalf("expected 3x3 dataframe, got %dx%d", df.Nrow(), df.Ncol())
	}

	back, err := FromGota(df)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.Cell(1, 0) != int64(2) || !frame.IsNA(back.Cell(2, 0)) {
		t.Errorf("unexpected int column %v", back.Column(0).Values)
	}
	if back.Cell(2, 1) != 1.5 || !frame.IsNA(back.Cell(1, 1)) {
		t.Errorf("unexpected float column %v", back.Column(1).Values)
	}

	t.Run("records loaded by gota", func(t *testing.T) {
		t.Parallel()
		df := dataframe.LoadRecords([][]string{
			{"A", "B"},
			{"a", "4"},
			{"k", "5"},
		})
		got, err := FromGota(df)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Cell(1, 1) != int64(5) {
			t.Errorf("expected 5, got %#v", got.Cell(1, 1))
		}
	})
}
