package codec

import (
	"maps"
	"slices"

	"github.com/bindpatch/bindpatch/internal/layout"
)

// Model is the in-memory representation of all bindings found in an image.
// It only stores file offsets and holds no reference to the image it was
// parsed from.
type Model struct {
	// Supported is false if the signature check failed, no other field is
	// set in that case.
	Supported bool

	// KeyAssignments maps a virtual button bit mask to its assignments,
	// ordered by ascending assignment index.
	KeyAssignments map[uint32][]Assignment

	Joypad Joypad

	// Freestyle contains the modifier assignments that were found, in
	// declaration order of the modifiers.
	Freestyle []FreestyleAssignment

	// Pov is set if the image imports joyGetPosEx.
	Pov *Pov
}

// Assignment is one slot of the key assignment table.
type Assignment struct {
	Index uint32
	Value int32
	// FileOffset points at the immediate value of the mov instruction.
	FileOffset uint32
}

// VirtualButton returns the virtual button bit that the assignment belongs to.
// Every virtual button owns 8 consecutive table slots.
func (a Assignment) VirtualButton() uint32 {
	return virtualButton(a.Index)
}

func virtualButton(index uint32) uint32 {
	return 1 << (index >> 3)
}

// FlagAssignment is a mov eax instruction that sets an input flag to a constant.
type FlagAssignment struct {
	Value int32
	// FileOffset points at the 4 bytes following the opcode, which hold
	// either the immediate value or a pointer to it.
	FileOffset uint32
	// PatchB8Offset points at the opcode byte that is normalized to
	// mov eax, imm32 on patching.
	PatchB8Offset uint32
}

// FreestyleAssignment is a key code check combined with the flag assignment
// that is performed when the key is pressed.
type FreestyleAssignment struct {
	FlagAssignment

	Modifier          layout.Modifier
	KeyCode           int8
	KeyCodeFileOffset uint32
}

// Joypad contains the flag assignments of all joypad controls, nil entries
// were not found in the image.
type Joypad struct {
	Left    *FlagAssignment
	Right   *FlagAssignment
	Up      *FlagAssignment
	Down    *FlagAssignment
	Button1 *FlagAssignment
	Button2 *FlagAssignment
	Button3 *FlagAssignment
	Button4 *FlagAssignment
	Button5 *FlagAssignment
	Button6 *FlagAssignment
}

// Control returns the assignment of the given control.
func (j *Joypad) Control(control layout.JoypadControl) *FlagAssignment {
	if field := j.field(control); field != nil {
		return *field
	}
	return nil
}

// SetControl sets the assignment of the given control.
func (j *Joypad) SetControl(control layout.JoypadControl, fa *FlagAssignment) {
	if field := j.field(control); field != nil {
		*field = fa
	}
}

func (j *Joypad) field(control layout.JoypadControl) **FlagAssignment {
	switch control {
	case layout.JoypadLeft:
		return &j.Left
	case layout.JoypadRight:
		return &j.Right
	case layout.JoypadUp:
		return &j.Up
	case layout.JoypadDown:
		return &j.Down
	case layout.JoypadButton1:
		return &j.Button1
	case layout.JoypadButton2:
		return &j.Button2
	case layout.JoypadButton3:
		return &j.Button3
	case layout.JoypadButton4:
		return &j.Button4
	case layout.JoypadButton5:
		return &j.Button5
	case layout.JoypadButton6:
		return &j.Button6
	default:
		return nil
	}
}

// Pov contains the joystick hat values of the 4 cardinal directions. The
// diagonal values are derived from them when patching.
type Pov struct {
	Up    uint32
	Right uint32
	Down  uint32
	Left  uint32
}

// UpRight returns the value of the up right diagonal.
func (p Pov) UpRight() uint32 { return p.Up | p.Right }

// RightDown returns the value of the right down diagonal.
func (p Pov) RightDown() uint32 { return p.Right | p.Down }

// DownLeft returns the value of the down left diagonal.
func (p Pov) DownLeft() uint32 { return p.Down | p.Left }

// LeftUp returns the value of the left up diagonal.
func (p Pov) LeftUp() uint32 { return p.Left | p.Up }

// VirtualButtons returns the virtual buttons that have key assignments in
// ascending order.
func (m *Model) VirtualButtons() []uint32 {
	return slices.Sorted(maps.Keys(m.KeyAssignments))
}

// Assignment returns the key assignment with the given table index.
func (m *Model) Assignment(index uint32) *Assignment {
	bucket := m.KeyAssignments[virtualButton(index)]
	for i := range bucket {
		if bucket[i].Index == index {
			return &bucket[i]
		}
	}
	return nil
}

// FreestyleAssignment returns the assignment of the given modifier.
func (m *Model) FreestyleAssignment(modifier layout.Modifier) *FreestyleAssignment {
	for i := range m.Freestyle {
		if m.Freestyle[i].Modifier == modifier {
			return &m.Freestyle[i]
		}
	}
	return nil
}
