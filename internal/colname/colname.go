package colname

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/tabclean/internal/frame"
)

// LongNameLimit is the length above which a cleaned name is reported as hard
// to read.
const LongNameLimit = 25

// replacer maps characters that carry meaning to words and every other
// punctuation character to an underscore.
var replacer = strings.NewReplacer(
	"\n", "_",
	"(", "_",
	")", "_",
	"'", "_",
	"\"", "_",
	".", "_",
	"-", "_",
	"!", "_",
	"?", "_",
	":", "_",
	";", "_",
	"/", "_",
	"+", "_plus_",
	"*", "_times_",
	"<", "_smaller_",
	">", "_larger_",
	"=", "_equal_",
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"Ä", "Ae",
	"Ö", "Oe",
	"Ü", "Ue",
	"ß", "ss",
	"%", "_percent_",
	"$", "_dollar_",
	"€", "_euro_",
	"@", "_at_",
	"#", "_number_",
	"&", "_and_",
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	innerUpper  = regexp.MustCompile(`\B([A-Z])`)
	underscores = regexp.MustCompile(`_+`)
)

// abbreviations shortens frequent words when WithAbbreviations is set.
var abbreviations = map[string]string{
	"amount":      "amt",
	"average":     "avg",
	"column":      "col",
	"count":       "cnt",
	"customer":    "cust",
	"description": "desc",
	"identifier":  "id",
	"maximum":     "max",
	"minimum":     "min",
	"number":      "num",
	"percent":     "pct",
	"quantity":    "qty",
	"temperature": "temp",
	"value":       "val",
	"anzahl":      "anz",
	"betrag":      "btr",
	"nummer":      "nr",
}

// Rename records a column whose name changed.
type Rename struct {
	Position int    `json:"position"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// Result holds the cleaned names and the hints collected while cleaning.
type Result struct {
	// Names are the cleaned names in input order.
	Names []string `json:"names"`

	// Renamed lists every name that changed.
	Renamed []Rename `json:"renamed,omitempty"`

	// Duplicates lists the positions that received a suffix because their
	// cleaned name was already taken.
	Duplicates []int `json:"duplicates,omitempty"`

	// LongNames lists cleaned names longer than LongNameLimit characters.
	LongNames []string `json:"long_names,omitempty"`
}

// Cleaner normalizes column names.
// A Cleaner is safe for concurrent use.
type Cleaner struct {
	logger     *slog.Logger
	abbreviate bool
	hints      bool
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithLogger sets the logger used to report hints.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cleaner) {
		c.logger = logger
	}
}

// WithAbbreviations shortens common words after cleaning.
func WithAbbreviations(enabled bool) Option {
	return func(c *Cleaner) {
		c.abbreviate = enabled
	}
}

// WithHints controls whether hints about duplicate and long names are logged.
// The hints are always returned in the Result.
func WithHints(enabled bool) Option {
	return func(c *Cleaner) {
		c.hints = enabled
	}
}

// New creates a Cleaner. Hints are logged by default.
func New(opts ...Option) *Cleaner {
	c := &Cleaner{hints: true}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Normalize cleans a single name without resolving duplicates.
//
// Meaningful symbols become words ("+" becomes "plus", "$" becomes "dollar"),
// other punctuation and whitespace become underscores, German umlauts are
// transliterated and remaining accents removed. CamelCase is split with
// underscores, the result lowercased and runs of underscores collapsed.
func (c *Cleaner) Normalize(name string) string {
	s := replacer.Replace(name)
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(stripAccents, s); err == nil {
		s = stripped
	}
	s = whitespace.ReplaceAllString(s, "_")
	s = innerUpper.ReplaceAllString(s, "_${1}")
	s = underscores.ReplaceAllString(s, "_")
	s = cases.Lower(language.Und).String(s)
	s = strings.Trim(s, "_")
	if c.abbreviate {
		s = abbreviate(s)
	}
	return s
}

// Clean normalizes every name. A name that collides with an earlier cleaned
// name gets its position appended, e.g. "dupli_6".
func (c *Cleaner) Clean(names []string) Result {
	res := Result{Names: make([]string, len(names))}
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		cleaned := c.Normalize(name)
		if seen[cleaned] {
			cleaned = cleaned + "_" + strconv.Itoa(i)
			res.Duplicates = append(res.Duplicates, i)
		}
		seen[cleaned] = true
		res.Names[i] = cleaned

		if cleaned != name {
			res.Renamed = append(res.Renamed, Rename{Position: i, From: name, To: cleaned})
		}
		if utf8.RuneCountInString(cleaned) > LongNameLimit {
			res.LongNames = append(res.LongNames, cleaned)
		}
	}

	if c.hints {
		c.logHints(res)
	}
	return res
}

// Apply renames the columns of t.
func (c *Cleaner) Apply(t *frame.Table) (*frame.Table, Result, error) {
	res := c.Clean(t.Names())
	out, err := t.WithNames(res.Names)
	if err != nil {
		return nil, Result{}, fmt.Errorf("failed to rename columns: %w", err)
	}
	return out, res, nil
}

func (c *Cleaner) logHints(res Result) {
	if len(res.Duplicates) > 0 {
		dupNames := make([]string, len(res.Duplicates))
		for i, pos := range res.Duplicates {
			dupNames[i] = res.Names[pos]
		}
		c.logger.Info("duplicate column names renamed",
			"positions", res.Duplicates,
			"names", dupNames,
		)
	}
	if len(res.LongNames) > 0 {
		c.logger.Info("long column names detected, consider renaming",
			"limit", LongNameLimit,
			"names", res.LongNames,
		)
	}
}

func abbreviate(s string) string {
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if short, ok := abbreviations[p]; ok {
			parts[i] = short
		}
	}
	return strings.Join(parts, "_")
}
