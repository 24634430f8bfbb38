package colname

import (
	"bytes"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/nao1215/tabclean/internal/frame"
)

func TestCleanerClean(t *testing.T) {
	t.Parallel()

	input := []string{
		"Asd 5$ & (3€)",
		"3+3",
		"AsdFer #9",
		`"asd"`,
		"dupli",
		"also",
		"dupli",
		"also",
		"verylongColumnNamesareHardtoRead",
	}
	want := []string{
		"asd_5_dollar_and_3_euro",
		"3_plus_3",
		"asd_fer_number_9",
		"asd",
		"dupli",
		"also",
		"dupli_6",
		"also_7",
		"verylong_column_namesare_hardto_read",
	}

	for _, hints := range []bool{true, false} {
		res := New(WithHints(hints), WithLogger(slog.New(slog.DiscardHandler))).Clean(input)
		if !slices.Equal(res.Names, want) {
			t.Errorf("hints=%v: expected %v, got %v", hints, want, res.Names)
		}
		if !slices.Equal(res.Duplicates, []int{6, 7}) {
			t.Errorf("hints=%v: expected duplicates at 6 and 7, got %v", hints, res.Duplicates)
		}
		if !slices.Equal(res.LongNames, []string{"verylong_column_namesare_hardto_read"}) {
			t.Errorf("hints=%v: unexpected long names %v", hints, res.LongNames)
		}
	}
}

func TestCleanerNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "umlauts are transliterated", input: "Größe über", want: "groesse_ueber"},
		{name: "accents are removed", input: "café crème", want: "cafe_creme"},
		{name: "camel case is split", input: "customerID", want: "customer_i_d"},
		{name: "symbols become words", input: "a<b>c=d", want: "a_smaller_b_larger_c_equal_d"},
		{name: "percent and at", input: "rate % @home", want: "rate_percent_at_home"},
		{name: "newlines and tabs", input: "first\nsecond\tthird", want: "first_second_third"},
		{name: "clean names are unchanged", input: "already_clean_1", want: "already_clean_1"},
		{name: "surrounding punctuation is trimmed", input: "  (value)  ", want: "value"},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := c.Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanerIdempotent(t *testing.T) {
	t.Parallel()

	c := New(WithHints(false))
	first := c.Clean([]string{"A b", "A b", "Sales €"})
	second := c.Clean(first.Names)
	if !slices.Equal(first.Names, second.Names) {
		t.Errorf("expected %v to stay unchanged, got %v", first.Names, second.Names)
	}
	if len(second.Renamed) != 0 {
		t.Errorf("expected no renames on the second pass, got %v", second.Renamed)
	}
}

func TestWithAbbreviations(t *testing.T) {
	t.Parallel()

	c := New(WithAbbreviations(true), WithHints(false))
	if got := c.Normalize("Average Temperature"); got != "avg_temp" {
		t.Errorf("expected avg_temp, got %q", got)
	}
	if got := New(WithHints(false)).Normalize("Average Temperature"); got != "average_temperature" {
		t.Errorf("expected average_temperature without abbreviations, got %q", got)
	}
}

func TestCleanerApply(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	tbl := frame.MustNew(
		frame.NewColumn("First Name", "a", "b"),
		frame.NewColumn("first_name", "c", "d"),
	)
	out, res, err := New(WithLogger(logger)).Apply(tbl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(out.Names(), []string{"first_name", "first_name_1"}) {
		t.Errorf("unexpected names %v", out.Names())
	}
	if len(res.Renamed) != 2 {
		t.Errorf("expected 2 renames, got %v", res.Renamed)
	}
	if !slices.Equal(tbl.Names(), []string{"First Name", "first_name"}) {
		t.Error("expected input table to keep its names")
	}
	if !strings.Contains(buf.String(), "duplicate column names renamed") {
		t.Errorf("expected duplicate hint in log, got %q", buf.String())
	}
}
