package glyph

import (
	"strings"
	"testing"
)

func mustPattern(t *testing.T, rows ...string) Pattern {
	t.Helper()

	p, err := parseRows(rows)
	if err != nil {
		t.Fatalf("parseRows() error = %v", err)
	}
	return p
}

func TestMeasureTight(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want Span
	}{
		{"blank", []string{".....", ".....", "....."}, Span{0, 0}},
		{"single column", []string{"..#..", ".....", "..#.."}, Span{Offset: 2, Width: 1}},
		{"first column", []string{"#....", "#....", "....."}, Span{Offset: 0, Width: 1}},
		{"spread", []string{".#...", "...#.", "....."}, Span{Offset: 1, Width: 3}},
		{"full", []string{"#...#", ".....", "....."}, Span{Offset: 0, Width: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeasureTight(mustPattern(t, tt.rows...))
			if got != tt.want {
				t.Fatalf("MeasureTight() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMeasureTight_DigitsAreProportional(t *testing.T) {
	coarse := Coarse()
	one := MeasureTight(coarse.Resolve("1"))
	zero := MeasureTight(coarse.Resolve("0"))
	if one.Width >= zero.Width {
		t.Fatalf("width of 1 = %d, want narrower than 0 (%d)", one.Width, zero.Width)
	}
}

func TestResolve_ExactAliasAndDefault(t *testing.T) {
	std := Standard()

	upper := std.Resolve("A")
	lower := std.Resolve("a")
	if upper.String() != lower.String() {
		t.Fatalf("Resolve(a) = \n%s, want alias of A\n%s", lower, upper)
	}

	unknown := std.Resolve("☃")
	question := std.Resolve("?")
	if unknown.String() != question.String() {
		t.Fatalf("Resolve(unknown) did not fall back to ?")
	}
	if unknown.Height() != StandardRows {
		t.Fatalf("Resolve(unknown).Height() = %d, want %d", unknown.Height(), StandardRows)
	}
}

func TestResolve_AliasLoopFallsBack(t *testing.T) {
	tbl := NewTable(3, 3, "x")
	if err := tbl.Define("x", mustPattern(t, "#.#", ".#.", "#.#")); err != nil {
		t.Fatalf("Define() error = %v", err)
	}
	tbl.Alias("a", "b")
	tbl.Alias("b", "a")

	if _, ok := tbl.Lookup("a"); ok {
		t.Fatal("Lookup(a) ok = true, want false for alias loop")
	}
	if got := tbl.Resolve("a"); got.String() != tbl.Resolve("x").String() {
		t.Fatalf("Resolve(a) = \n%s, want default", got)
	}
}

func TestResolve_HopLimit(t *testing.T) {
	tbl := NewTable(1, 1, "?")
	if err := tbl.Define("end", mustPattern(t, "#")); err != nil {
		t.Fatalf("Define() error = %v", err)
	}
	// s0 -> s1 -> ... -> s8 -> end is nine hops.
	syms := []string{"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "end"}
	for i := 0; i < len(syms)-1; i++ {
		tbl.Alias(syms[i], syms[i+1])
	}

	if _, ok := tbl.Lookup("s1"); !ok {
		t.Fatal("Lookup(s1) ok = false, want true within hop limit")
	}
	if _, ok := tbl.Lookup("s0"); ok {
		t.Fatal("Lookup(s0) ok = true, want false beyond hop limit")
	}
	if got := tbl.Resolve("s0"); got.Width != 1 || got.Lit(0, 0) {
		t.Fatalf("Resolve(s0) = %+v, want blank fallback", got)
	}
}

func TestParseTable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantSub string
	}{
		{"short glyph", "glyph A\n#.#\n", "has 1 rows"},
		{"ragged rows", "glyph A\n#.#\n##\n#.#\n", "width"},
		{"bad char", "glyph A\n#.#\n#x#\n#.#\n", "unexpected"},
		{"row outside glyph", "#.#\n", "outside a glyph"},
		{"bad alias", "glyph a A\n", "must start with"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseTable(strings.NewReader(tt.src), NewTable(3, 3, "?"))
			if err == nil {
				t.Fatalf("ParseTable() error = nil, want error containing %q", tt.wantSub)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Fatalf("ParseTable() error = %q, want contains %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestParseTable_NamesAndComments(t *testing.T) {
	src := `
// three row test font
glyph space
...
...
...
glyph hash
#.#
###
#.#
glyph h @hash
`
	tbl := NewTable(3, 3, "space")
	if err := ParseTable(strings.NewReader(src), tbl); err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if _, ok := tbl.Lookup(" "); !ok {
		t.Fatal("Lookup(space) ok = false")
	}
	p, ok := tbl.Lookup("h")
	if !ok || !p.Lit(1, 1) || p.Lit(1, 0) {
		t.Fatalf("Lookup(h) = %+v, %v, want hash pattern", p, ok)
	}
}

func TestBuiltinFonts(t *testing.T) {
	std := Standard()
	for _, sym := range std.Symbols() {
		p := std.Resolve(sym)
		if p.Height() != StandardRows || p.Width != StandardWidth {
			t.Fatalf("standard %q is %dx%d", sym, p.Width, p.Height())
		}
	}

	coarse := Coarse()
	for _, sym := range []string{"0", "9", "A", "z", ":", " "} {
		if _, ok := coarse.Lookup(sym); !ok {
			t.Fatalf("coarse Lookup(%q) ok = false", sym)
		}
		if h := coarse.Resolve(sym).Height(); h != CoarseRows {
			t.Fatalf("coarse %q height = %d, want %d", sym, h, CoarseRows)
		}
	}
}

func TestStretch(t *testing.T) {
	p := mustPattern(t, "#..", ".#.", "..#")
	got := Stretch(p, 6)
	want := []string{"#..", "#..", ".#.", ".#.", "..#", "..#"}
	for y, row := range want {
		for x := 0; x < 3; x++ {
			if got.Lit(x, y) != (row[x] == '#') {
				t.Fatalf("Stretch() = \n%s, want rows %v", got, want)
			}
		}
	}
}

const testBDF = `STARTFONT 2.1
FONT -test-fixed-medium-r-normal--7-70-75-75-c-50-iso10646-1
SIZE 7 75 75
FONTBOUNDINGBOX 5 7 0 0
STARTPROPERTIES 2
FONT_ASCENT 7
FONT_DESCENT 0
ENDPROPERTIES
CHARS 1
STARTCHAR L
ENCODING 76
SWIDTH 500 0
DWIDTH 5 0
BBX 5 7 0 0
BITMAP
80
80
80
80
80
80
F8
ENDCHAR
ENDFONT
`

func TestLoadBDF(t *testing.T) {
	tbl := NewTable(StandardRows, StandardWidth, "?")

	n, err := LoadBDF([]byte(testBDF), tbl, []rune{'L', 'Q'})
	if err != nil {
		t.Fatalf("LoadBDF() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("LoadBDF() = %d glyphs, want 1", n)
	}
	p, ok := tbl.Lookup("L")
	if !ok {
		t.Fatal("Lookup(L) ok = false after LoadBDF")
	}
	if p.Width != 5 || p.Height() != StandardRows {
		t.Fatalf("L is %dx%d, want 5x%d", p.Width, p.Height(), StandardRows)
	}
	if p.Bitmap().Count() == 0 {
		t.Fatal("L has no lit lamps")
	}
}

func TestLoadBDF_Invalid(t *testing.T) {
	if _, err := LoadBDF([]byte("not a font"), NewTable(7, 5, "?"), []rune{'A'}); err == nil {
		t.Fatal("LoadBDF() error = nil, want parse error")
	}
}
