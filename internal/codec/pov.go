package codec

import (
	"bytes"
	"fmt"

	"github.com/bindpatch/bindpatch/internal/image"
)

// povMarker is the name of the imported joystick function whose presence
// indicates that the image supports a point of view hat.
var povMarker = []byte("joyGetPosEx")

// MatchPov returns the hat values of the 4 cardinal directions if the image
// contains the joystick import marker, otherwise nil.
func (c *Codec) MatchPov(im *image.Image) (*Pov, error) {
	addresses := c.layout.Pov

	markerOffset := c.offset(int64(addresses.Marker))
	if !im.Contains(markerOffset, int64(len(povMarker))) {
		return nil, nil
	}
	marker, err := im.Slice(markerOffset, int64(len(povMarker)))
	if err != nil {
		return nil, fmt.Errorf("reading pov marker: %w", err)
	}
	if !bytes.Equal(marker, povMarker) {
		return nil, nil
	}

	var pov Pov
	fields := []struct {
		name    string
		address uint32
		value   *uint32
	}{
		{"up", addresses.Up, &pov.Up},
		{"right", addresses.Right, &pov.Right},
		{"down", addresses.Down, &pov.Down},
		{"left", addresses.Left, &pov.Left},
	}
	for _, field := range fields {
		*field.value, err = im.Uint32(c.offset(int64(field.address)))
		if err != nil {
			return nil, fmt.Errorf("reading pov %s value: %w", field.name, err)
		}
	}
	return &pov, nil
}
