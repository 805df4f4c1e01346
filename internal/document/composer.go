package document

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/avassel/stagebook/internal/model"
)

// CompanyInfo carries the registration identifiers printed in the
// footer of every document.
type CompanyInfo struct {
	Name  string
	SIRET string
	APE   string
}

// Composer renders a block list into PDF bytes.  The primary path
// renders everything; when it fails the composer falls back once to a
// reduced-fidelity rendering without images before giving up with
// model.ErrGeneration.
type Composer struct {
	geo Geometry
	log *zap.Logger
}

// NewComposer returns a Composer on A4 geometry.
func NewComposer(log *zap.Logger) *Composer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Composer{geo: A4(), log: log}
}

// Render produces the final document bytes from blocks.
func (c *Composer) Render(blocks []Block) ([]byte, error) {
	out, err := c.renderOnce(blocks)
	if err == nil {
		return out, nil
	}
	c.log.Warn("primary document rendering failed, retrying without images", zap.Error(err))
	degraded := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if _, isImage := b.(Image); isImage {
			continue
		}
		degraded = append(degraded, b)
	}
	out, err = c.renderOnce(degraded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrGeneration, err)
	}
	return out, nil
}

func (c *Composer) renderOnce(blocks []Block) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// The pagination pass owns page breaks; gofpdf must never insert
	// its own.
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	p := &painter{pdf: pdf, tr: tr, geo: c.geo}

	pages := Paginate(blocks, p, c.geo)
	for _, page := range pages {
		pdf.AddPage()
		for _, placed := range page.Blocks {
			p.draw(placed)
		}
	}
	if pdf.Err() {
		return nil, pdf.Error()
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const fontFamily = "Helvetica"

// mmPerPoint converts font sizes (points) to page units (mm).
const mmPerPoint = 25.4 / 72.0

// painter implements Measurer on real font metrics and draws placed
// blocks.  It keeps a counter so every registered image gets a
// distinct name within the PDF.
type painter struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	geo    Geometry
	images int
}

// LineHeight implements Measurer.  1.35 leading keeps paragraphs
// readable at body size without wasting the page.
func (p *painter) LineHeight(f FontStyle) float64 {
	return f.Size * mmPerPoint * 1.35
}

// WrapText implements Measurer using the font's real glyph widths.
func (p *painter) WrapText(text string, f FontStyle, width float64) []string {
	p.pdf.SetFont(fontFamily, f.Style, f.Size)
	return p.pdf.SplitText(p.tr(text), width)
}

func (p *painter) draw(placed Placed) {
	left := p.geo.MarginLeft
	width := p.geo.ContentWidth()
	y := placed.Y

	switch b := placed.Block.(type) {
	case TextLine:
		align := b.Align
		if align == "" {
			align = "L"
		}
		p.pdf.SetFont(fontFamily, b.Font.Style, b.Font.Size)
		p.pdf.SetXY(left, y)
		p.pdf.CellFormat(width, p.LineHeight(b.Font), p.tr(b.Text), "", 0, align, false, 0, "")

	case Paragraph:
		lh := p.LineHeight(b.Font)
		// WrapText already translated the text; print the lines as-is.
		for i, line := range p.WrapText(b.Text, b.Font, width) {
			p.pdf.SetXY(left, y+float64(i)*lh)
			p.pdf.CellFormat(width, lh, line, "", 0, "L", false, 0, "")
		}

	case Box:
		lh := p.LineHeight(b.Font)
		boxHeight := placed.Height - b.Gap
		p.pdf.Rect(left, y, width, boxHeight, "D")
		p.pdf.SetFont(fontFamily, b.Font.Style, b.Font.Size)
		for i, line := range b.Lines {
			p.pdf.SetXY(left+b.Padding, y+b.Padding+float64(i)*lh)
			p.pdf.CellFormat(width-2*b.Padding, lh, p.tr(line), "", 0, "L", false, 0, "")
		}

	case Image:
		if b.Asset == nil {
			return
		}
		p.images++
		name := fmt.Sprintf("asset-%d", p.images)
		opts := gofpdf.ImageOptions{ImageType: b.Asset.Format, ReadDpi: true}
		p.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(b.Asset.Data))
		x := left
		if b.Align == "C" {
			x = left + (width-b.W)/2
		}
		p.pdf.ImageOptions(name, x, y, b.W, b.H, false, opts, 0, "")

	case Spacer:
		// whitespace only

	case Rule:
		p.pdf.SetDrawColor(0, 0, 0)
		p.pdf.Line(left, y+2, left+width, y+2)

	case Table:
		p.drawTable(b, left, y, width)
	}
}

func (p *painter) drawTable(t Table, left, y, width float64) {
	rowH := t.rowHeight(p)
	p.pdf.SetFont(fontFamily, "B", t.Font.Size)
	p.pdf.SetFillColor(235, 235, 235)
	x := left
	for i, h := range t.Headers {
		w := t.ColWidths[i] * width
		p.pdf.SetXY(x, y)
		p.pdf.CellFormat(w, rowH, p.tr(h), "1", 0, "C", true, 0, "")
		x += w
	}
	p.pdf.SetFont(fontFamily, t.Font.Style, t.Font.Size)
	for r, row := range t.Rows {
		rowY := y + float64(r+1)*rowH
		x = left
		for i, cell := range row {
			w := t.ColWidths[i] * width
			align := "R"
			if i == 0 {
				align = "L"
			}
			p.pdf.SetXY(x, rowY)
			p.pdf.CellFormat(w, rowH, p.tr(cell), "1", 0, align, false, 0, "")
			x += w
		}
	}
}

// Filename builds the download name for a rendered document, encoding
// the session number and the customer surname.
func Filename(kind, sessionNumber, surname string) string {
	return fmt.Sprintf("%s_%s_%s.pdf", kind, sanitize(sessionNumber), sanitize(surname))
}

func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			out = append(out, r)
		case r == ' ', r == '_', r == '/':
			out = append(out, '-')
		}
	}
	return string(out)
}
