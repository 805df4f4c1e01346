package document

// Geometry fixes the page format the pagination pass works against.
// All values are in millimetres; A4 portrait by default.
type Geometry struct {
	PageWidth    float64
	PageHeight   float64
	MarginLeft   float64
	MarginRight  float64
	MarginTop    float64
	MarginBottom float64
}

// A4 returns the geometry both document kinds are laid out on.
func A4() Geometry {
	return Geometry{
		PageWidth:    210,
		PageHeight:   297,
		MarginLeft:   15,
		MarginRight:  15,
		MarginTop:    15,
		MarginBottom: 15,
	}
}

// ContentWidth is the horizontal space available to blocks.
func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - g.MarginLeft - g.MarginRight
}

// budget is the lowest Y a block may extend to.
func (g Geometry) budget() float64 {
	return g.PageHeight - g.MarginBottom
}

// Placed is a block with its resolved position on a page.
type Placed struct {
	Block  Block
	Y      float64
	Height float64
}

// Page is the ordered list of blocks placed on one page.
type Page struct {
	Blocks []Placed
}

// Paginate performs the single layout pass: a vertical cursor starts
// at the top margin and advances by each block's measured height;
// when a block would cross the bottom budget a new page is opened and
// the cursor reset before the block is placed.  Blocks are therefore
// never split.  A block taller than a whole page still gets a page of
// its own and overflows the margin rather than being cut in half.
func Paginate(blocks []Block, m Measurer, g Geometry) []Page {
	pages := []Page{{}}
	cursor := g.MarginTop
	width := g.ContentWidth()
	for _, b := range blocks {
		h := b.Height(m, width)
		if h == 0 {
			continue
		}
		if cursor+h > g.budget() && cursor > g.MarginTop {
			pages = append(pages, Page{})
			cursor = g.MarginTop
		}
		current := &pages[len(pages)-1]
		current.Blocks = append(current.Blocks, Placed{Block: b, Y: cursor, Height: h})
		cursor += h
	}
	return pages
}
