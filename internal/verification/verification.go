// Package verification verifies that a patched image contains the expected
// bindings encoded as valid instructions.
package verification

import (
	"errors"
	"fmt"

	"github.com/bindpatch/bindpatch/internal/codec"
	"github.com/bindpatch/bindpatch/internal/image"
	"github.com/bindpatch/bindpatch/internal/layout"
	"github.com/retroenv/retrogolib/log"
)

// ErrMismatch is returned when the patched image does not match the model
// that was written into it.
var ErrMismatch = errors.New("patched image does not match bindings")

// Mismatch describes a binding whose patched state differs from the expected one.
type Mismatch struct {
	Binding  string
	Offset   int64
	Expected string
	Actual   string
}

// VerifyOutput parses the patched image again and compares the result
// against the model that was patched into it. Every rewritten instruction is
// decoded to check that it still is a valid instruction of the expected form.
func VerifyOutput(logger *log.Logger, c *codec.Codec, patched []byte, expected *codec.Model) error {
	im := image.New(patched)

	actual, err := c.Parse(im)
	if err != nil {
		return fmt.Errorf("parsing patched image: %w", err)
	}

	mismatches := CompareModels(expected, actual)
	mismatches = append(mismatches, CheckInstructions(im, expected)...)
	if len(mismatches) == 0 {
		return nil
	}

	for _, m := range mismatches {
		logger.Error("Binding mismatch",
			log.String("binding", m.Binding),
			log.Hex("offset", m.Offset),
			log.String("expected", m.Expected),
			log.String("got", m.Actual))
	}
	return fmt.Errorf("%w: %d mismatches, first at %s", ErrMismatch, len(mismatches), mismatches[0].Binding)
}

// CompareModels returns the differences between two models. Flag
// assignments are compared by value and location, the instruction form is
// not part of the model.
func CompareModels(expected, actual *codec.Model) []Mismatch {
	var mismatches []Mismatch
	add := func(binding string, offset int64, expected, actual any) {
		mismatches = append(mismatches, Mismatch{
			Binding:  binding,
			Offset:   offset,
			Expected: fmt.Sprint(expected),
			Actual:   fmt.Sprint(actual),
		})
	}

	if expected.Supported != actual.Supported {
		add("signature", 0, expected.Supported, actual.Supported)
		return mismatches
	}

	for _, button := range expected.VirtualButtons() {
		for _, a := range expected.KeyAssignments[button] {
			name := fmt.Sprintf("key assignment %d", a.Index)
			b := actual.Assignment(a.Index)
			switch {
			case b == nil:
				add(name, int64(a.FileOffset), a.Value, "missing")
			case *b != a:
				add(name, int64(a.FileOffset), a, *b)
			}
		}
	}

	for _, control := range layout.JoypadControls {
		compareFlagAssignments(add, "joypad "+string(control),
			expected.Joypad.Control(control), actual.Joypad.Control(control))
	}

	for _, modifier := range layout.Modifiers {
		e := expected.FreestyleAssignment(modifier)
		a := actual.FreestyleAssignment(modifier)
		name := "freestyle " + string(modifier)
		switch {
		case e == nil && a == nil:
		case e == nil || a == nil:
			add(name, 0, e != nil, a != nil)
		case e.KeyCode != a.KeyCode || e.KeyCodeFileOffset != a.KeyCodeFileOffset:
			add(name+" key code", int64(e.KeyCodeFileOffset), e.KeyCode, a.KeyCode)
		default:
			compareFlagAssignments(add, name, &e.FlagAssignment, &a.FlagAssignment)
		}
	}

	switch {
	case expected.Pov == nil && actual.Pov == nil:
	case expected.Pov == nil || actual.Pov == nil:
		add("pov", 0, expected.Pov != nil, actual.Pov != nil)
	case *expected.Pov != *actual.Pov:
		add("pov", 0, *expected.Pov, *actual.Pov)
	}

	return mismatches
}

func compareFlagAssignments(add func(string, int64, any, any), name string, expected, actual *codec.FlagAssignment) {
	switch {
	case expected == nil && actual == nil:
	case expected == nil || actual == nil:
		add(name, 0, expected != nil, actual != nil)
	case *expected != *actual:
		add(name, int64(expected.PatchB8Offset), *expected, *actual)
	}
}
