package tmfonts

import (
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/gofont/gosmallcapsitalic"
)

const (
	FAMILY_SANS      = "Go"
	FAMILY_MEDIUM    = "Go Medium"
	FAMILY_MONO      = "Go Mono"
	FAMILY_SMALLCAPS = "Go Smallcaps"
)

// Embedded returns the bundled font blobs in a fixed order.
func Embedded() [][]byte {
	return [][]byte{
		goregular.TTF,
		goitalic.TTF,
		gobold.TTF,
		gobolditalic.TTF,
		gomedium.TTF,
		gomediumitalic.TTF,
		gomono.TTF,
		gomonoitalic.TTF,
		gomonobold.TTF,
		gomonobolditalic.TTF,
		gosmallcaps.TTF,
		gosmallcapsitalic.TTF,
	}
}
