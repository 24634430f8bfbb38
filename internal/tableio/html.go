package tableio

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/tabclean/internal/frame"
)

// HTMLOptions configures HTML table input.
type HTMLOptions struct {
	// TableIndex selects the n-th <table> of the document, starting at 0.
	TableIndex int

	// NATokens are the cell texts read as missing. Nil means DefaultNATokens.
	NATokens []string
}

// ReadHTML reads a <table> element from an HTML document. The header comes
// from the first row made only of <th> cells, or from the first row when
// there is none.
func ReadHTML(r io.Reader, opts HTMLOptions) (*frame.Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var tables []*html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Table {
			tables = append(tables, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)

	if opts.TableIndex < 0 || opts.TableIndex >= len(tables) {
		return nil, fmt.Errorf("%w: index %d, document has %d tables", ErrNoTable, opts.TableIndex, len(tables))
	}

	rows, headerRow := tableRows(tables[opts.TableIndex])
	if len(rows) == 0 {
		return frame.MustNew(), nil
	}
	if headerRow < 0 {
		headerRow = 0
	}
	header := rows[headerRow]
	body := append(rows[:headerRow:headerRow], rows[headerRow+1:]...)

	width := len(header)
	for _, row := range body {
		width = max(width, len(row))
	}
	for len(header) < width {
		header = append(header, fmt.Sprint(len(header)))
	}

	naTokens := opts.NATokens
	if naTokens == nil {
		naTokens = DefaultNATokens
	}
	return textColumns(header, body, naTokens)
}

// tableRows collects the text of every row of a table, skipping nested
// tables, and returns the position of the first row made only of <th>.
func tableRows(table *html.Node) ([][]string, int) {
	var rows [][]string
	headerRow := -1

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Table:
				continue
			case atom.Tr:
				cells, allHeader := rowCells(c)
				if allHeader && headerRow < 0 && len(cells) > 0 {
					headerRow = len(rows)
				}
				rows = append(rows, cells)
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return rows, headerRow
}

func rowCells(tr *html.Node) ([]string, bool) {
	var cells []string
	allHeader := true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Th:
		case atom.Td:
			allHeader = false
		default:
			continue
		}
		cells = append(cells, strings.Join(strings.Fields(textOf(c)), " "))
	}
	return cells, allHeader
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Br {
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
