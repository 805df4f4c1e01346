// Package document lays out paginated printable documents from typed
// blocks.  A builder describes what to render as a flat block list;
// one pagination pass decides where each block lands, and the PDF
// painter only ever draws blocks that were already placed.  No block
// is ever split across a page boundary.
package document

// FontStyle selects the face variant and size a block is measured and
// drawn with.  Style uses the usual PDF flags: "" regular, "B" bold,
// "I" italic.
type FontStyle struct {
	Style string
	Size  float64
}

// Common styles used by the two document kinds.
var (
	fontTitle    = FontStyle{Style: "B", Size: 14}
	fontHeading  = FontStyle{Style: "B", Size: 11}
	fontBody     = FontStyle{Style: "", Size: 10}
	fontBodyBold = FontStyle{Style: "B", Size: 10}
	fontSmall    = FontStyle{Style: "", Size: 8}
)

// Measurer answers the two questions pagination needs: how tall one
// line of a style is, and how a paragraph wraps at a given width.
// The PDF painter implements it with real font metrics; tests use a
// deterministic fake.
type Measurer interface {
	LineHeight(f FontStyle) float64
	// WrapText splits text into the lines it will occupy when drawn
	// at the given width.
	WrapText(text string, f FontStyle, width float64) []string
}

// Block is one unit of printable content.  Height must be an exact
// prediction of the vertical space Render will consume, because the
// pagination pass breaks pages on Height alone.
type Block interface {
	Height(m Measurer, width float64) float64
}

// TextLine is a single line of text, optionally followed by a gap.
type TextLine struct {
	Text  string
	Font  FontStyle
	Align string // "L" (default), "C" or "R"
	Gap   float64
}

// Height implements Block.
func (b TextLine) Height(m Measurer, _ float64) float64 {
	return m.LineHeight(b.Font) + b.Gap
}

// Paragraph is body text wrapped to the available width.  Its height
// is discovered by pre-wrapping, so the pagination decision sees the
// true line count.
type Paragraph struct {
	Text string
	Font FontStyle
	Gap  float64
}

// Height implements Block.
func (b Paragraph) Height(m Measurer, width float64) float64 {
	lines := m.WrapText(b.Text, b.Font, width)
	return float64(len(lines))*m.LineHeight(b.Font) + b.Gap
}

// Box is a bordered block of pre-set lines, used for the
// required-documents case boxes on the convocation.  Its height
// derives from the number of lines, so a three-line case reserves
// space for three lines before the page-break decision is made.
type Box struct {
	Lines   []string
	Font    FontStyle
	Padding float64
	Gap     float64
}

// Height implements Block.
func (b Box) Height(m Measurer, _ float64) float64 {
	return float64(len(b.Lines))*m.LineHeight(b.Font) + 2*b.Padding + b.Gap
}

// Image places a pre-loaded raster asset.  A nil asset renders
// nothing and occupies no space, which is how a failed logo load
// degrades without disturbing the rest of the layout.
type Image struct {
	Asset *Asset
	W, H  float64
	Align string // "L" (default) or "C"
	Gap   float64
}

// Height implements Block.
func (b Image) Height(_ Measurer, _ float64) float64 {
	if b.Asset == nil {
		return 0
	}
	return b.H + b.Gap
}

// Spacer is vertical whitespace.
type Spacer struct {
	H float64
}

// Height implements Block.
func (b Spacer) Height(_ Measurer, _ float64) float64 { return b.H }

// Rule is a horizontal separator line with a small gap on both sides.
type Rule struct{}

// Height implements Block.
func (b Rule) Height(_ Measurer, _ float64) float64 { return 4 }

// Table is the invoice line-item grid.  ColWidths are fractions of
// the content width and must sum to 1.
type Table struct {
	Headers   []string
	Rows      [][]string
	ColWidths []float64
	Font      FontStyle
	Gap       float64
}

// rowHeight leaves breathing room around the text of one grid row.
func (b Table) rowHeight(m Measurer) float64 {
	return m.LineHeight(b.Font) + 2
}

// Height implements Block.
func (b Table) Height(m Measurer, _ float64) float64 {
	return float64(1+len(b.Rows))*b.rowHeight(m) + b.Gap
}
