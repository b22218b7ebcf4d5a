package verification

import (
	"fmt"

	"github.com/bindpatch/bindpatch/internal/codec"
	"github.com/bindpatch/bindpatch/internal/image"
	"github.com/bindpatch/bindpatch/internal/layout"
	"golang.org/x/arch/x86/x86asm"
)

const (
	decodeMode   = 32
	maxInstrSize = 15
	// tableBase is the displacement of the first key assignment slot.
	tableBase = 0xC
)

// CheckInstructions decodes the instructions of all bindings of the model
// and checks that they encode the model values: key assignments as
// mov dword [reg+disp], imm32 addressing their slot, flag assignments as
// mov eax, imm32 and key code checks as push imm8.
func CheckInstructions(im *image.Image, model *codec.Model) []Mismatch {
	if !model.Supported {
		return nil
	}

	var mismatches []Mismatch
	check := func(name string, offset int64, err error) {
		if err != nil {
			mismatches = append(mismatches, Mismatch{
				Binding:  name,
				Offset:   offset,
				Expected: "valid instruction",
				Actual:   err.Error(),
			})
		}
	}

	for _, button := range model.VirtualButtons() {
		for _, a := range model.KeyAssignments[button] {
			check(fmt.Sprintf("key assignment %d", a.Index), int64(a.FileOffset), checkKeyAssignment(im, a))
		}
	}

	for _, control := range layout.JoypadControls {
		if fa := model.Joypad.Control(control); fa != nil {
			check("joypad "+string(control), int64(fa.PatchB8Offset), checkFlagAssignment(im, *fa))
		}
	}

	for _, fa := range model.Freestyle {
		name := "freestyle " + string(fa.Modifier)
		check(name+" key code", int64(fa.KeyCodeFileOffset)-1, checkKeyCodeCheck(im, fa))
		check(name, int64(fa.PatchB8Offset), checkFlagAssignment(im, fa.FlagAssignment))
	}

	return mismatches
}

func decode(im *image.Image, offset int64) (x86asm.Inst, error) {
	size := min(im.Len()-offset, maxInstrSize)
	b, err := im.Slice(offset, size)
	if err != nil {
		return x86asm.Inst{}, err
	}
	inst, err := x86asm.Decode(b, decodeMode)
	if err != nil {
		return x86asm.Inst{}, fmt.Errorf("decoding instruction at offset 0x%x: %w", offset, err)
	}
	return inst, nil
}

// checkKeyAssignment accepts the 8 and 32 bit displacement encodings that
// end right after the assignment value.
func checkKeyAssignment(im *image.Image, a codec.Assignment) error {
	valueEnd := int64(a.FileOffset) + 4
	for _, headerSize := range []int64{3, 6} {
		offset := int64(a.FileOffset) - headerSize
		inst, err := decode(im, offset)
		if err != nil || inst.Op != x86asm.MOV || int64(inst.Len) != valueEnd-offset {
			continue
		}
		mem, ok := inst.Args[0].(x86asm.Mem)
		if !ok {
			continue
		}
		imm, ok := inst.Args[1].(x86asm.Imm)
		if !ok {
			continue
		}

		if index := (mem.Disp - tableBase) >> 2; index != int64(a.Index) {
			return fmt.Errorf("instruction %s addresses slot %d", inst, index)
		}
		if imm != x86asm.Imm(a.Value) {
			return fmt.Errorf("instruction %s does not assign %d", inst, a.Value)
		}
		return nil
	}
	return fmt.Errorf("no mov dword [reg+disp], imm32 ends at offset 0x%x", valueEnd)
}

func checkFlagAssignment(im *image.Image, fa codec.FlagAssignment) error {
	inst, err := decode(im, int64(fa.PatchB8Offset))
	if err != nil {
		return err
	}
	if inst.Op != x86asm.MOV || inst.Args[0] != x86asm.EAX {
		return fmt.Errorf("instruction %s is not mov eax, imm32", inst)
	}
	if imm, ok := inst.Args[1].(x86asm.Imm); !ok || imm != x86asm.Imm(fa.Value) {
		return fmt.Errorf("instruction %s does not load %d", inst, fa.Value)
	}
	return nil
}

func checkKeyCodeCheck(im *image.Image, fa codec.FreestyleAssignment) error {
	inst, err := decode(im, int64(fa.KeyCodeFileOffset)-1)
	if err != nil {
		return err
	}
	if inst.Op != x86asm.PUSH || inst.Len != 2 {
		return fmt.Errorf("instruction %s is not push imm8", inst)
	}
	if imm, ok := inst.Args[0].(x86asm.Imm); !ok || imm != x86asm.Imm(fa.KeyCode) {
		return fmt.Errorf("instruction %s does not push key code %d", inst, fa.KeyCode)
	}
	return nil
}
