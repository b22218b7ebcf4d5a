// Package codectest builds synthetic executable images that contain all
// instruction patterns recognized by the codec.
package codectest

import (
	"encoding/binary"

	"github.com/bindpatch/bindpatch/internal/layout"
)

// ImageSize is the size of the built images. It covers the data section of
// the test layout that is mapped above the translation boundary.
const ImageSize = 0xDF000

// Sentinel is the default word terminating the key assignment table (ret, nop).
const Sentinel = 0x90C3

// pointerArea is the virtual address where values of indirect flag
// assignments are stored.
const pointerArea = 0x4E7200

// Layout returns a layout with code addresses below and data addresses above
// the translation boundary.
func Layout() *layout.Layout {
	return &layout.Layout{
		Name:                 "synthetic",
		Translation:          layout.DefaultTranslation(),
		CheckInstruction:     0x401000,
		KeyAssignments:       0x402000,
		AdditionalConfirmMov: 0x402800,
		Joypad: layout.JoypadAddresses{
			Left:    0x403000,
			Right:   0x403010,
			Up:      0x403020,
			Down:    0x403030,
			Button1: 0x403040,
			Button2: 0x403050,
			Button3: 0x403060,
			Button4: 0x403070,
			Button5: 0x403080,
			Button6: 0x403090,
		},
		Freestyle: layout.FreestyleAddresses{
			MouseLeft:  layout.PushMov{Push: 0x404000, Mov: 0x404010},
			MouseRight: layout.PushMov{Push: 0x404020, Mov: 0x404030},
			Shift:      layout.PushMov{Push: 0x404040, Mov: 0x404050},
			Ctrl:       layout.PushMov{Push: 0x404060, Mov: 0x404070},
		},
		Pov: layout.PovAddresses{
			Marker:    0x4E7000,
			Up:        0x4E7100,
			Right:     0x4E7104,
			Down:      0x4E7108,
			Left:      0x4E710C,
			UpRight:   0x4E7110,
			RightDown: 0x4E7114,
			DownLeft:  0x4E7118,
			LeftUp:    0x4E711C,
			Up2:       0x4E7120,
		},
	}
}

// TableEntry is a key assignment table instruction.
type TableEntry struct {
	Index uint32
	Value int32
	// Wide selects the 32 bit displacement encoding.
	Wide bool
}

// Displacement returns the displacement that addresses the entry slot.
func (e TableEntry) Displacement() int32 {
	return int32(e.Index)*4 + 0xC
}

// Flag is a flag assignment instruction.
type Flag struct {
	Value int32
	// Indirect selects the mov eax, [moffs32] encoding.
	Indirect bool
}

// Key is a key code check and flag assignment pair.
type Key struct {
	KeyCode int8
	Flag    Flag
}

// Fixture describes the content of a synthetic image.
type Fixture struct {
	Unsupported bool
	Table       []TableEntry
	// Sentinel terminates the table, Sentinel is used if zero.
	Sentinel  uint16
	Extra     *TableEntry
	Joypad    map[layout.JoypadControl]Flag
	Freestyle map[layout.Modifier]Key
	// Pov contains up, right, down and left values.
	Pov *[4]uint32
}

// Default returns a fixture that uses every recognized encoding: narrow and
// wide table entries in unsorted order, direct and indirect flag
// assignments, one absent joypad button, one absent modifier and POV data.
func Default() Fixture {
	return Fixture{
		Table: []TableEntry{
			{Index: 1, Value: 0x26},
			{Index: 0, Value: 0x57},
			{Index: 8, Value: 0x28},
			{Index: 2, Value: 0x68},
			{Index: 40, Value: 0x20, Wide: true},
			{Index: 9, Value: -1},
		},
		Extra: &TableEntry{Index: 17, Value: 0x0D},
		Joypad: map[layout.JoypadControl]Flag{
			layout.JoypadLeft:    {Value: 0x01},
			layout.JoypadRight:   {Value: 0x02, Indirect: true},
			layout.JoypadUp:      {Value: 0x04},
			layout.JoypadDown:    {Value: 0x08},
			layout.JoypadButton1: {Value: 0x10, Indirect: true},
			layout.JoypadButton2: {Value: 0x20},
			layout.JoypadButton3: {Value: 0x40},
			layout.JoypadButton4: {Value: 0x80},
			layout.JoypadButton5: {Value: 0x100},
		},
		Freestyle: map[layout.Modifier]Key{
			layout.MouseLeft:  {KeyCode: 0x01, Flag: Flag{Value: 0x200}},
			layout.MouseRight: {KeyCode: 0x02, Flag: Flag{Value: 0x400, Indirect: true}},
			layout.Shift:      {KeyCode: 0x10, Flag: Flag{Value: 0x800}},
		},
		Pov: &[4]uint32{1, 2, 4, 8},
	}
}

// Build returns an image of ImageSize bytes that contains the fixture at the
// addresses of the layout. Instructions of absent bindings are filled with
// unrelated opcodes.
func Build(l *layout.Layout, f Fixture) []byte {
	b := &builder{
		layout:  l,
		data:    make([]byte, ImageSize),
		pointer: pointerArea,
	}

	if !f.Unsupported {
		b.putUint32(l.CheckInstruction, 0xAF23D5F7)
		b.putUint32(l.CheckInstruction+4, 0x338)
	}

	b.putTable(f)

	for _, control := range layout.JoypadControls {
		flag, ok := f.Joypad[control]
		b.putFlag(l.Joypad.Address(control), flag, ok)
	}

	for _, modifier := range layout.Modifiers {
		site := l.Freestyle.Site(modifier)
		key, ok := f.Freestyle[modifier]
		if ok {
			b.data[b.offset(site.Push)] = 0x6A
			b.data[b.offset(site.Push+1)] = byte(key.KeyCode)
		} else {
			b.data[b.offset(site.Push)] = 0x68 // push imm32
		}
		b.putFlag(site.Mov, key.Flag, true)
	}

	if f.Pov != nil {
		copy(b.data[b.offset(l.Pov.Marker):], "joyGetPosEx")
		b.putUint32(l.Pov.Up, f.Pov[0])
		b.putUint32(l.Pov.Right, f.Pov[1])
		b.putUint32(l.Pov.Down, f.Pov[2])
		b.putUint32(l.Pov.Left, f.Pov[3])
		b.putUint32(l.Pov.UpRight, f.Pov[0]|f.Pov[1])
		b.putUint32(l.Pov.RightDown, f.Pov[1]|f.Pov[2])
		b.putUint32(l.Pov.DownLeft, f.Pov[2]|f.Pov[3])
		b.putUint32(l.Pov.LeftUp, f.Pov[3]|f.Pov[0])
		b.putUint32(l.Pov.Up2, f.Pov[0])
	} else {
		copy(b.data[b.offset(l.Pov.Marker):], "joyGetPos\x00\x00")
	}

	return b.data
}

// Offset returns the file offset of a virtual address of the layout.
func Offset(l *layout.Layout, address uint32) int64 {
	return l.Translation.Offset(int64(address))
}

type builder struct {
	layout  *layout.Layout
	data    []byte
	pointer uint32
}

func (b *builder) offset(address uint32) int64 {
	return Offset(b.layout, address)
}

func (b *builder) putUint32(address, value uint32) {
	binary.LittleEndian.PutUint32(b.data[b.offset(address):], value)
}

func (b *builder) putTable(f Fixture) {
	pos := b.offset(b.layout.KeyAssignments)
	for _, entry := range f.Table {
		b.data[pos] = 0xC7
		if entry.Wide {
			b.data[pos+1] = 0x83
			binary.LittleEndian.PutUint32(b.data[pos+2:], uint32(entry.Displacement()))
			pos += 6
		} else {
			b.data[pos+1] = 0x43
			b.data[pos+2] = byte(int8(entry.Displacement()))
			pos += 3
		}
		binary.LittleEndian.PutUint32(b.data[pos:], uint32(entry.Value))
		pos += 4
	}

	sentinel := f.Sentinel
	if sentinel == 0 {
		sentinel = Sentinel
	}
	binary.LittleEndian.PutUint16(b.data[pos:], sentinel)

	if f.Extra != nil {
		pos = b.offset(b.layout.AdditionalConfirmMov)
		b.data[pos] = 0xC7
		b.data[pos+1] = 0x80
		binary.LittleEndian.PutUint32(b.data[pos+2:], uint32(f.Extra.Displacement()))
		binary.LittleEndian.PutUint32(b.data[pos+6:], uint32(f.Extra.Value))
	}
}

func (b *builder) putFlag(address uint32, flag Flag, present bool) {
	pos := b.offset(address)
	switch {
	case !present:
		b.data[pos] = 0x33 // xor r32, r/m32
	case flag.Indirect:
		b.data[pos] = 0xA1
		binary.LittleEndian.PutUint32(b.data[pos+1:], b.pointer)
		b.putUint32(b.pointer, uint32(flag.Value))
		b.pointer += 4
	default:
		b.data[pos] = 0xB8
		binary.LittleEndian.PutUint32(b.data[pos+1:], uint32(flag.Value))
	}
}
