package codec

import (
	"fmt"

	"github.com/bindpatch/bindpatch/internal/image"
	"github.com/bindpatch/bindpatch/internal/layout"
)

// MatchFlagAssignment decodes a mov eax instruction at the given virtual
// address. Both the direct immediate form and the indirect memory load form
// are recognized, for the indirect form the value is read from the
// referenced memory. A nil assignment is returned if the instruction at the
// address is neither, no further bytes are read in that case.
func (c *Codec) MatchFlagAssignment(im *image.Image, address uint32) (*FlagAssignment, error) {
	opcodeOffset := c.offset(int64(address))
	operandOffset := c.offset(int64(address) + 1)

	opcode, err := im.Uint8(opcodeOffset)
	if err != nil {
		return nil, fmt.Errorf("reading flag assignment opcode at address 0x%x: %w", address, err)
	}

	var value uint32
	switch opcode {
	case opMovEaxMoffs32:
		pointer, err := im.Uint32(operandOffset)
		if err != nil {
			return nil, fmt.Errorf("reading flag assignment pointer at address 0x%x: %w", address+1, err)
		}
		value, err = im.Uint32(c.offset(int64(pointer)))
		if err != nil {
			return nil, fmt.Errorf("dereferencing flag assignment pointer 0x%x: %w", pointer, err)
		}

	case opMovEaxImm32:
		value, err = im.Uint32(operandOffset)
		if err != nil {
			return nil, fmt.Errorf("reading flag assignment value at address 0x%x: %w", address+1, err)
		}

	default:
		return nil, nil
	}

	return &FlagAssignment{
		Value:         int32(value),
		FileOffset:    uint32(operandOffset),
		PatchB8Offset: uint32(opcodeOffset),
	}, nil
}

// KeyCodeCheck is a push of a virtual key code that is passed to a key state check.
type KeyCodeCheck struct {
	KeyCode           int8
	KeyCodeFileOffset uint32
}

// MatchKeyCodeCheck decodes a push imm8 instruction at the given virtual
// address. A nil check is returned if the instruction is a different one.
func (c *Codec) MatchKeyCodeCheck(im *image.Image, address uint32) (*KeyCodeCheck, error) {
	opcode, err := im.Uint8(c.offset(int64(address)))
	if err != nil {
		return nil, fmt.Errorf("reading key code check opcode at address 0x%x: %w", address, err)
	}
	if opcode != opPushImm8 {
		return nil, nil
	}

	operandOffset := c.offset(int64(address) + 1)
	keyCode, err := im.Int8(operandOffset)
	if err != nil {
		return nil, fmt.Errorf("reading key code at address 0x%x: %w", address+1, err)
	}

	return &KeyCodeCheck{
		KeyCode:           keyCode,
		KeyCodeFileOffset: uint32(operandOffset),
	}, nil
}

// MatchFreestyleAssignment decodes the key code check and flag assignment
// pair of a modifier. Only if both instructions match an assignment is returned.
func (c *Codec) MatchFreestyleAssignment(im *image.Image, modifier layout.Modifier) (*FreestyleAssignment, error) {
	site := c.layout.Freestyle.Site(modifier)

	check, err := c.MatchKeyCodeCheck(im, site.Push)
	if err != nil || check == nil {
		return nil, err
	}
	flag, err := c.MatchFlagAssignment(im, site.Mov)
	if err != nil || flag == nil {
		return nil, err
	}

	return &FreestyleAssignment{
		FlagAssignment:    *flag,
		Modifier:          modifier,
		KeyCode:           check.KeyCode,
		KeyCodeFileOffset: check.KeyCodeFileOffset,
	}, nil
}
