package codec

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bindpatch/bindpatch/internal/image"
)

// ErrCorruptTable is returned when the key assignment table can not be
// walked without leaving the image or produces impossible slot indices.
var ErrCorruptTable = errors.New("corrupt key assignment table")

const (
	// tableBase is the displacement of the first slot inside the input
	// structure that the table instructions write to.
	tableBase = 0xC
	// minTableEntrySize is the size of the shortest table instruction:
	// opcode, ModRM, disp8 and imm32.
	minTableEntrySize = 7
	// maxVirtualButtons is the width of the virtual button bit mask.
	maxVirtualButtons = 32
)

// tableEntry is a decoded mov dword [reg+disp], imm32 instruction.
type tableEntry struct {
	displacement int32
	value        int32
	valueOffset  int64
}

// WalkKeyTable decodes the sequential key assignment table and the
// additional assignment outside of it and returns the assignments grouped by
// virtual button. The table ends at the first instruction that is not a mov
// with 8 or 32 bit displacement. A slot that is written more than once keeps
// the value of the last write.
func (c *Codec) WalkKeyTable(im *image.Image) (map[uint32][]Assignment, error) {
	byIndex := map[uint32]Assignment{}
	add := func(entry tableEntry) error {
		index, err := slotIndex(entry.displacement)
		if err != nil {
			return fmt.Errorf("%w: instruction at offset 0x%x: %w", ErrCorruptTable, entry.valueOffset, err)
		}
		byIndex[index] = Assignment{
			Index:      index,
			Value:      entry.value,
			FileOffset: uint32(entry.valueOffset),
		}
		return nil
	}

	entries, err := c.readTable(im)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if err := add(entry); err != nil {
			return nil, err
		}
	}

	extra, err := c.readAdditionalAssignment(im)
	if err != nil {
		return nil, err
	}
	if extra != nil {
		if err := add(*extra); err != nil {
			return nil, err
		}
	}

	return groupByVirtualButton(byIndex), nil
}

// readTable reads table instructions until the terminating instruction. The
// number of entries is bounded by the image size, running out of the image
// before the terminator is found is reported as a corrupt table.
func (c *Codec) readTable(im *image.Image) ([]tableEntry, error) {
	var entries []tableEntry
	maxEntries := im.Len()/minTableEntrySize + 1
	pos := c.offset(int64(c.layout.KeyAssignments))

	for len(entries) <= int(maxEntries) {
		opcode, err := im.Uint16(pos)
		if err != nil {
			return nil, fmt.Errorf("%w: reading opcode of entry %d: %w", ErrCorruptTable, len(entries), err)
		}
		pos += 2

		var displacement int32
		switch opcode {
		case opMovEbxDisp8:
			disp, err := im.Int8(pos)
			if err != nil {
				return nil, fmt.Errorf("%w: reading displacement of entry %d: %w", ErrCorruptTable, len(entries), err)
			}
			displacement = int32(disp)
			pos++

		case opMovEbxDisp32:
			displacement, err = im.Int32(pos)
			if err != nil {
				return nil, fmt.Errorf("%w: reading displacement of entry %d: %w", ErrCorruptTable, len(entries), err)
			}
			pos += 4

		default:
			return entries, nil
		}

		value, err := im.Int32(pos)
		if err != nil {
			return nil, fmt.Errorf("%w: reading value of entry %d: %w", ErrCorruptTable, len(entries), err)
		}
		entries = append(entries, tableEntry{
			displacement: displacement,
			value:        value,
			valueOffset:  pos,
		})
		pos += 4
	}

	return nil, fmt.Errorf("%w: no terminator found after %d entries", ErrCorruptTable, len(entries))
}

// readAdditionalAssignment reads the mov dword [eax+disp32], imm32 that
// assigns a slot outside of the table. Nil is returned if the instruction
// does not match.
func (c *Codec) readAdditionalAssignment(im *image.Image) (*tableEntry, error) {
	address := int64(c.layout.AdditionalConfirmMov)

	opcode, err := im.Uint16(c.offset(address))
	if err != nil {
		return nil, fmt.Errorf("reading additional assignment opcode at address 0x%x: %w", address, err)
	}
	if opcode != opMovEaxDisp32 {
		return nil, nil
	}

	displacement, err := im.Int32(c.offset(address + 2))
	if err != nil {
		return nil, fmt.Errorf("reading additional assignment displacement: %w", err)
	}
	valueOffset := c.offset(address + 6)
	value, err := im.Int32(valueOffset)
	if err != nil {
		return nil, fmt.Errorf("reading additional assignment value: %w", err)
	}

	return &tableEntry{
		displacement: displacement,
		value:        value,
		valueOffset:  valueOffset,
	}, nil
}

// slotIndex returns the table slot index that a displacement writes to.
// Displacements below the first slot or past the last slot of the 32 bit
// virtual button mask are rejected. The shift count is never wrapped, so
// slot 256 does not alias a slot of button 1.
func slotIndex(displacement int32) (uint32, error) {
	index := (int64(displacement) - tableBase) >> 2
	if index < 0 {
		return 0, fmt.Errorf("displacement %d is before the first slot", displacement)
	}
	if index>>3 >= maxVirtualButtons {
		return 0, fmt.Errorf("displacement %d is after the last virtual button", displacement)
	}
	return uint32(index), nil
}

func groupByVirtualButton(byIndex map[uint32]Assignment) map[uint32][]Assignment {
	grouped := map[uint32][]Assignment{}
	for _, a := range byIndex {
		button := a.VirtualButton()
		grouped[button] = append(grouped[button], a)
	}
	for _, bucket := range grouped {
		slices.SortFunc(bucket, func(a, b Assignment) int {
			return int(a.Index) - int(b.Index)
		})
	}
	return grouped
}
