package images

import (
	"os"

	"github.com/muesli/termenv"
)

// CanRender reports whether the terminal on stdout can show images drawn
// with half-block cells.
func CanRender() bool {
	return CanRenderProfile(termenv.NewOutput(os.Stdout).ColorProfile())
}

// CanRenderProfile reports whether p has enough colours for half-block
// images.
func CanRenderProfile(p termenv.Profile) bool {
	return p == termenv.TrueColor || p == termenv.ANSI256
}
