package codec

import (
	"fmt"

	"github.com/bindpatch/bindpatch/internal/image"
	"github.com/bindpatch/bindpatch/internal/layout"
)

// Parse decodes all bindings of the image. If the image does not carry the
// expected signature a model with Supported set to false is returned. Bindings
// whose instructions do not match are left absent in the model.
func (c *Codec) Parse(im *image.Image) (*Model, error) {
	if !c.Supported(im) {
		return &Model{}, nil
	}

	keyAssignments, err := c.WalkKeyTable(im)
	if err != nil {
		return nil, fmt.Errorf("walking key assignment table: %w", err)
	}

	model := &Model{
		Supported:      true,
		KeyAssignments: keyAssignments,
	}

	for _, control := range layout.JoypadControls {
		fa, err := c.MatchFlagAssignment(im, c.layout.Joypad.Address(control))
		if err != nil {
			return nil, fmt.Errorf("parsing joypad %s: %w", control, err)
		}
		model.Joypad.SetControl(control, fa)
	}

	for _, modifier := range layout.Modifiers {
		fa, err := c.MatchFreestyleAssignment(im, modifier)
		if err != nil {
			return nil, fmt.Errorf("parsing freestyle %s: %w", modifier, err)
		}
		if fa != nil {
			model.Freestyle = append(model.Freestyle, *fa)
		}
	}

	model.Pov, err = c.MatchPov(im)
	if err != nil {
		return nil, fmt.Errorf("parsing pov: %w", err)
	}

	return model, nil
}

// Supported returns whether the two signature words at the check
// instruction match. An image that is too small to contain them is not
// supported.
func (c *Codec) Supported(im *image.Image) bool {
	address := int64(c.layout.CheckInstruction)

	low, err := im.Uint32(c.offset(address))
	if err != nil || low != signatureLow {
		return false
	}
	high, err := im.Uint32(c.offset(address + 4))
	if err != nil || high != signatureHigh {
		return false
	}
	return true
}
