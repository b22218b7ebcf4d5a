// Package codec reads and writes the input bindings that are encoded as
// x86 instruction operands in a game executable.
//
// Parse locates the known instruction patterns using a layout, decodes
// their operands into a Model and Patch writes a modified Model back into
// the same byte locations.
package codec

import (
	"github.com/bindpatch/bindpatch/internal/layout"
)

// Signature words expected at the check instruction of a supported image.
const (
	signatureLow  = 0xAF23D5F7
	signatureHigh = 0x338
)

// Codec parses and patches images of one layout. It keeps no state besides
// the layout and is safe to share.
type Codec struct {
	layout *layout.Layout
}

// New returns a codec for the given layout.
func New(l *layout.Layout) *Codec {
	return &Codec{layout: l}
}

// Layout returns the layout of the codec.
func (c *Codec) Layout() *layout.Layout {
	return c.layout
}

// offset translates a virtual address to a file offset.
func (c *Codec) offset(va int64) int64 {
	return c.layout.Translation.Offset(va)
}
