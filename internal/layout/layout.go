// Package layout describes where the input bindings of a supported executable
// version are located. A layout is a set of named virtual addresses plus the
// translation needed to turn them into file offsets.
package layout

import (
	"errors"
	"fmt"
)

// ErrInvalidLayout is returned when a layout is missing addresses or has an
// unusable address translation.
var ErrInvalidLayout = errors.New("invalid layout")

// Layout is the fixed address table of one executable version.
type Layout struct {
	Name        string      `yaml:"name"`
	Translation Translation `yaml:"translation"`

	// CheckInstruction points at the two signature words that identify
	// the executable version.
	CheckInstruction uint32 `yaml:"check_instruction"`
	// KeyAssignments is the start of the sequential key assignment table.
	KeyAssignments uint32 `yaml:"key_assignments"`
	// AdditionalConfirmMov is a key assignment outside of the table.
	AdditionalConfirmMov uint32 `yaml:"additional_confirm_mov"`

	Joypad    JoypadAddresses    `yaml:"joypad"`
	Freestyle FreestyleAddresses `yaml:"freestyle"`
	Pov       PovAddresses       `yaml:"pov"`
}

// JoypadControl names a joypad direction or button.
type JoypadControl string

// Joypad controls in declaration order.
const (
	JoypadLeft    JoypadControl = "left"
	JoypadRight   JoypadControl = "right"
	JoypadUp      JoypadControl = "up"
	JoypadDown    JoypadControl = "down"
	JoypadButton1 JoypadControl = "button1"
	JoypadButton2 JoypadControl = "button2"
	JoypadButton3 JoypadControl = "button3"
	JoypadButton4 JoypadControl = "button4"
	JoypadButton5 JoypadControl = "button5"
	JoypadButton6 JoypadControl = "button6"
)

// JoypadControls lists all joypad controls in declaration order.
var JoypadControls = []JoypadControl{
	JoypadLeft, JoypadRight, JoypadUp, JoypadDown,
	JoypadButton1, JoypadButton2, JoypadButton3, JoypadButton4, JoypadButton5, JoypadButton6,
}

// JoypadAddresses contains the flag assigning mov instruction of every joypad control.
type JoypadAddresses struct {
	Left    uint32 `yaml:"left"`
	Right   uint32 `yaml:"right"`
	Up      uint32 `yaml:"up"`
	Down    uint32 `yaml:"down"`
	Button1 uint32 `yaml:"button1"`
	Button2 uint32 `yaml:"button2"`
	Button3 uint32 `yaml:"button3"`
	Button4 uint32 `yaml:"button4"`
	Button5 uint32 `yaml:"button5"`
	Button6 uint32 `yaml:"button6"`
}

// Address returns the mov instruction address of the given control.
func (j JoypadAddresses) Address(control JoypadControl) uint32 {
	switch control {
	case JoypadLeft:
		return j.Left
	case JoypadRight:
		return j.Right
	case JoypadUp:
		return j.Up
	case JoypadDown:
		return j.Down
	case JoypadButton1:
		return j.Button1
	case JoypadButton2:
		return j.Button2
	case JoypadButton3:
		return j.Button3
	case JoypadButton4:
		return j.Button4
	case JoypadButton5:
		return j.Button5
	case JoypadButton6:
		return j.Button6
	default:
		return 0
	}
}

// Modifier names a mouse button or modifier key that has a freestyle assignment.
type Modifier string

// Modifiers in declaration order.
const (
	MouseLeft  Modifier = "mouse_left"
	MouseRight Modifier = "mouse_right"
	Shift      Modifier = "shift"
	Ctrl       Modifier = "ctrl"
)

// Modifiers lists all freestyle modifiers in declaration order.
var Modifiers = []Modifier{MouseLeft, MouseRight, Shift, Ctrl}

// PushMov is a key code check (push imm8) paired with the flag assignment
// (mov eax, imm32) that is executed when the key is pressed. The two
// instructions are not adjacent.
type PushMov struct {
	Push uint32 `yaml:"push"`
	Mov  uint32 `yaml:"mov"`
}

// FreestyleAddresses contains the instruction pairs of all freestyle modifiers.
type FreestyleAddresses struct {
	MouseLeft  PushMov `yaml:"mouse_left"`
	MouseRight PushMov `yaml:"mouse_right"`
	Shift      PushMov `yaml:"shift"`
	Ctrl       PushMov `yaml:"ctrl"`
}

// Site returns the instruction pair of the given modifier.
func (f FreestyleAddresses) Site(modifier Modifier) PushMov {
	switch modifier {
	case MouseLeft:
		return f.MouseLeft
	case MouseRight:
		return f.MouseRight
	case Shift:
		return f.Shift
	case Ctrl:
		return f.Ctrl
	default:
		return PushMov{}
	}
}

// PovAddresses contains the joystick point of view hat data locations.
// The diagonal and Up2 fields are only written, their values are derived
// from the cardinal directions.
type PovAddresses struct {
	Marker    uint32 `yaml:"marker"`
	Up        uint32 `yaml:"up"`
	Right     uint32 `yaml:"right"`
	Down      uint32 `yaml:"down"`
	Left      uint32 `yaml:"left"`
	UpRight   uint32 `yaml:"up_right"`
	RightDown uint32 `yaml:"right_down"`
	DownLeft  uint32 `yaml:"down_left"`
	LeftUp    uint32 `yaml:"left_up"`
	Up2       uint32 `yaml:"up2"`
}

// Validate checks that every address is set and that all addresses translate
// to non negative file offsets.
func (l *Layout) Validate() error {
	var errs []error
	if err := l.Translation.Validate(); err != nil {
		errs = append(errs, err)
	}

	for _, a := range l.namedAddresses() {
		if a.address == 0 {
			errs = append(errs, fmt.Errorf("%w: address %s is not set", ErrInvalidLayout, a.name))
			continue
		}
		if l.Translation.Offset(int64(a.address)) < 0 {
			errs = append(errs, fmt.Errorf("%w: address %s 0x%x translates to a negative file offset",
				ErrInvalidLayout, a.name, a.address))
		}
	}
	return errors.Join(errs...)
}

type namedAddress struct {
	name    string
	address uint32
}

func (l *Layout) namedAddresses() []namedAddress {
	addresses := []namedAddress{
		{"check_instruction", l.CheckInstruction},
		{"key_assignments", l.KeyAssignments},
		{"additional_confirm_mov", l.AdditionalConfirmMov},
	}
	for _, control := range JoypadControls {
		addresses = append(addresses, namedAddress{"joypad." + string(control), l.Joypad.Address(control)})
	}
	for _, modifier := range Modifiers {
		site := l.Freestyle.Site(modifier)
		addresses = append(addresses,
			namedAddress{"freestyle." + string(modifier) + ".push", site.Push},
			namedAddress{"freestyle." + string(modifier) + ".mov", site.Mov},
		)
	}
	p := l.Pov
	addresses = append(addresses,
		namedAddress{"pov.marker", p.Marker},
		namedAddress{"pov.up", p.Up},
		namedAddress{"pov.right", p.Right},
		namedAddress{"pov.down", p.Down},
		namedAddress{"pov.left", p.Left},
		namedAddress{"pov.up_right", p.UpRight},
		namedAddress{"pov.right_down", p.RightDown},
		namedAddress{"pov.down_left", p.DownLeft},
		namedAddress{"pov.left_up", p.LeftUp},
		namedAddress{"pov.up2", p.Up2},
	)
	return addresses
}
