package tmworld

import (
	"fmt"

	"oss.terrastruct.com/texmath/tmfonts"
)

const (
	MAIN_PATH = "main.tex"

	PAGE_MARGIN = "0.5em"
	TEXT_SIZE   = "16pt"
)

// MathWorld holds exactly one source: an expression wrapped in math mode.
type MathWorld struct {
	library *Library
	catalog *tmfonts.Catalog
	source  *Source
}

var _ World = &MathWorld{}

// NewMathWorld wraps expr in the math document template. expr is neither escaped nor
// validated; mistakes surface as compiler diagnostics.
func NewMathWorld(expr string, catalog *tmfonts.Catalog) *MathWorld {
	return &MathWorld{
		library: NewLibrary(),
		catalog: catalog,
		source:  NewDetachedSource(MAIN_PATH, mathDocument(expr)),
	}
}

func mathDocument(expr string) string {
	return fmt.Sprintf("\\autopage{%s}\n\\textsize{%s}\n$%s$", PAGE_MARGIN, TEXT_SIZE, expr)
}

func (w *MathWorld) Library() *Library {
	return w.library
}

func (w *MathWorld) Book() *tmfonts.Book {
	return w.catalog.Book
}

func (w *MathWorld) Main() FileID {
	return w.source.ID()
}

func (w *MathWorld) Source(id FileID) (*Source, error) {
	if id == w.source.ID() {
		return w.source, nil
	}
	return nil, notFound(id)
}

func (w *MathWorld) File(id FileID) ([]byte, error) {
	return nil, notFound(id)
}

func (w *MathWorld) Font(index int) (*tmfonts.Face, bool) {
	return w.catalog.Font(index)
}

// Today is never known: rendering must not depend on the date.
func (w *MathWorld) Today(offset *int64) (Datetime, bool) {
	return Datetime{}, false
}
