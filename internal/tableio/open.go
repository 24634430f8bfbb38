package tableio

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/tabclean/internal/frame"
)

// Format identifies a table file format.
type Format string

const (
	// FormatCSV is comma separated text.
	FormatCSV Format = "csv"
	// FormatTSV is tab separated text.
	FormatTSV Format = "tsv"
	// FormatXLSX is an Excel workbook.
	FormatXLSX Format = "xlsx"
	// FormatHTML is an HTML document holding a <table>.
	FormatHTML Format = "html"
	// FormatSQLite is a SQLite database file.
	FormatSQLite Format = "sqlite"
	// FormatPostgres is a PostgreSQL connection string.
	FormatPostgres Format = "postgres"
)

// Source describes where a table comes from.
type Source struct {
	// Path is a file path or a database connection string.
	Path string

	// Format overrides detection from the file extension.
	Format Format

	// Query is the SQL query for database sources.
	Query string

	// Sheet selects the worksheet of a workbook.
	Sheet string

	// TableIndex selects the table of an HTML document.
	TableIndex int

	// NATokens are the cell texts read as missing. Nil means DefaultNATokens.
	NATokens []string
}

// String returns the path with any password in a connection URL masked.
func (s Source) String() string {
	if !strings.Contains(s.Path, "://") {
		return s.Path
	}
	u, err := url.Parse(s.Path)
	if err != nil {
		return s.Path
	}
	return u.Redacted()
}

// DetectFormat infers the format and compression of path from its extension.
func DetectFormat(path string) (Format, Compression, error) {
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return FormatPostgres, CompressionNone, nil
	}

	comp, base := splitCompression(path)
	ext := strings.ToLower(filepath.Ext(base))
	var format Format
	switch ext {
	case ".csv", ".txt":
		format = FormatCSV
	case ".tsv", ".tab":
		format = FormatTSV
	case ".xlsx", ".xlsm":
		format = FormatXLSX
	case ".html", ".htm":
		format = FormatHTML
	case ".sqlite", ".sqlite3", ".db":
		format = FormatSQLite
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
	if comp != CompressionNone && (format == FormatXLSX || format == FormatSQLite) {
		return "", "", fmt.Errorf("%w: compressed %s files are not supported", ErrUnsupportedFormat, format)
	}
	return format, comp, nil
}

// Open reads the table described by src.
func Open(ctx context.Context, src Source) (*frame.Table, error) {
	format, comp, err := DetectFormat(src.Path)
	if src.Format != "" {
		format, err = src.Format, nil
	}
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatPostgres:
		return OpenSQL(ctx, DriverPostgres, src.Path, src.Query)
	case FormatSQLite:
		if _, err := os.Stat(src.Path); err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", src.Path, err)
		}
		return OpenSQL(ctx, DriverSQLite, src.Path, src.Query)
	}

	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", src.Path, err)
	}
	rc, err := decompress(f, comp)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	switch format {
	case FormatCSV:
		return ReadCSV(rc, CSVOptions{NATokens: src.NATokens})
	case FormatTSV:
		return ReadCSV(rc, CSVOptions{Comma: '\t', NATokens: src.NATokens})
	case FormatXLSX:
		return ReadXLSX(rc, XLSXOptions{Sheet: src.Sheet, NATokens: src.NATokens})
	case FormatHTML:
		return ReadHTML(rc, HTMLOptions{TableIndex: src.TableIndex, NATokens: src.NATokens})
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Save writes t to path in the format implied by its extension. Missing
// cells are written as empty fields.
func Save(path string, t *frame.Table) error {
	format, comp, err := DetectFormat(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatCSV, FormatTSV, FormatXLSX:
	default:
		return fmt.Errorf("%w: cannot write %s", ErrUnsupportedFormat, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	wc, err := compress(f, comp)
	if err != nil {
		return err
	}

	switch format {
	case FormatCSV:
		err = WriteCSV(wc, t, CSVOptions{})
	case FormatTSV:
		err = WriteCSV(wc, t, CSVOptions{Comma: '\t'})
	case FormatXLSX:
		err = WriteXLSX(wc, t, XLSXOptions{})
	}
	if cerr := wc.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close %s: %w", path, cerr)
	}
	return err
}
