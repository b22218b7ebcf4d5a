// Package image provides bounds checked little-endian access to an executable image buffer.
package image

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when an access does not fit inside the image buffer.
var ErrOutOfRange = errors.New("image: access out of range")

// Image wraps a caller owned byte buffer. Reads never modify the buffer and
// writes are done in place.
type Image struct {
	data []byte
}

// New returns an image that operates on the given buffer without copying it.
func New(data []byte) *Image {
	return &Image{data: data}
}

// Bytes returns the underlying buffer.
func (im *Image) Bytes() []byte {
	return im.data
}

// Len returns the size of the image in bytes.
func (im *Image) Len() int64 {
	return int64(len(im.data))
}

// Contains returns whether size bytes starting at offset are inside the image.
func (im *Image) Contains(offset, size int64) bool {
	return offset >= 0 && size >= 0 && offset <= int64(len(im.data))-size
}

// Slice returns size bytes starting at offset.
func (im *Image) Slice(offset, size int64) ([]byte, error) {
	if !im.Contains(offset, size) {
		return nil, fmt.Errorf("%w: reading %d bytes at offset 0x%x of 0x%x", ErrOutOfRange, size, offset, len(im.data))
	}
	return im.data[offset : offset+size], nil
}

// Uint8 reads a byte at offset.
func (im *Image) Uint8(offset int64) (uint8, error) {
	b, err := im.Slice(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Int8 reads a signed byte at offset.
func (im *Image) Int8(offset int64) (int8, error) {
	b, err := im.Uint8(offset)
	return int8(b), err
}

// Uint16 reads a little-endian 16 bit word at offset.
func (im *Image) Uint16(offset int64) (uint16, error) {
	b, err := im.Slice(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint32 reads a little-endian 32 bit word at offset.
func (im *Image) Uint32(offset int64) (uint32, error) {
	b, err := im.Slice(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Int32 reads a little-endian signed 32 bit word at offset.
func (im *Image) Int32(offset int64) (int32, error) {
	v, err := im.Uint32(offset)
	return int32(v), err
}

// Apply validates that all writes fit into the image and then performs them
// in order. If any write is out of range the image is left unchanged.
func (im *Image) Apply(writes []Write) error {
	for _, w := range writes {
		if !im.Contains(w.Offset, int64(len(w.Data))) {
			return fmt.Errorf("%w: writing %d bytes at offset 0x%x of 0x%x (%s)",
				ErrOutOfRange, len(w.Data), w.Offset, len(im.data), w.Description)
		}
	}
	for _, w := range writes {
		copy(im.data[w.Offset:], w.Data)
	}
	return nil
}
