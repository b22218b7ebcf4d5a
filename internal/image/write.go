package image

import (
	"encoding/binary"
	"fmt"
)

// Write is a pending modification of the image.
type Write struct {
	Offset      int64
	Data        []byte
	Description string
}

func (w Write) String() string {
	return fmt.Sprintf("0x%08x: % x (%s)", w.Offset, w.Data, w.Description)
}

// Byte returns a write of a single byte.
func Byte(offset int64, b byte, description string) Write {
	return Write{Offset: offset, Data: []byte{b}, Description: description}
}

// Uint32 returns a write of a little-endian 32 bit word.
func Uint32(offset int64, v uint32, description string) Write {
	data := binary.LittleEndian.AppendUint32(nil, v)
	return Write{Offset: offset, Data: data, Description: description}
}

// Int32 returns a write of a little-endian signed 32 bit word.
func Int32(offset int64, v int32, description string) Write {
	return Uint32(offset, uint32(v), description)
}
