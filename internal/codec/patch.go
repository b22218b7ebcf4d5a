package codec

import (
	"fmt"

	"github.com/bindpatch/bindpatch/internal/image"
	"github.com/bindpatch/bindpatch/internal/layout"
)

// Patch writes all bindings of the model into the image. Nothing is written
// for an unsupported model. All writes are checked against the image size
// before the first byte is modified.
func (c *Codec) Patch(im *image.Image, model *Model) error {
	if err := im.Apply(c.Plan(model)); err != nil {
		return fmt.Errorf("patching image: %w", err)
	}
	return nil
}

// Plan returns the writes that Patch performs for the model. Flag
// assignments are always written as mov eax, imm32, which turns indirect
// loads into immediate loads of the same value.
func (c *Codec) Plan(model *Model) []image.Write {
	if !model.Supported {
		return nil
	}

	var writes []image.Write

	for _, button := range model.VirtualButtons() {
		for _, a := range model.KeyAssignments[button] {
			writes = append(writes, image.Int32(int64(a.FileOffset), a.Value,
				fmt.Sprintf("key assignment %d", a.Index)))
		}
	}

	for _, control := range layout.JoypadControls {
		fa := model.Joypad.Control(control)
		if fa == nil {
			continue
		}
		writes = append(writes, flagAssignmentWrites(*fa, "joypad "+string(control))...)
	}

	for _, fa := range model.Freestyle {
		name := "freestyle " + string(fa.Modifier)
		writes = append(writes, image.Byte(int64(fa.KeyCodeFileOffset), byte(fa.KeyCode), name+" key code"))
		writes = append(writes, flagAssignmentWrites(fa.FlagAssignment, name)...)
	}

	if model.Pov != nil {
		writes = append(writes, c.povWrites(*model.Pov)...)
	}

	return writes
}

func flagAssignmentWrites(fa FlagAssignment, name string) []image.Write {
	return []image.Write{
		image.Byte(int64(fa.PatchB8Offset), opMovEaxImm32, name+" opcode"),
		image.Int32(int64(fa.FileOffset), fa.Value, name+" value"),
	}
}

func (c *Codec) povWrites(pov Pov) []image.Write {
	addresses := c.layout.Pov
	fields := []struct {
		name    string
		address uint32
		value   uint32
	}{
		{"up", addresses.Up, pov.Up},
		{"up right", addresses.UpRight, pov.UpRight()},
		{"right", addresses.Right, pov.Right},
		{"right down", addresses.RightDown, pov.RightDown()},
		{"down", addresses.Down, pov.Down},
		{"down left", addresses.DownLeft, pov.DownLeft()},
		{"left", addresses.Left, pov.Left},
		{"left up", addresses.LeftUp, pov.LeftUp()},
		{"up copy", addresses.Up2, pov.Up},
	}

	writes := make([]image.Write, 0, len(fields))
	for _, field := range fields {
		writes = append(writes, image.Uint32(c.offset(int64(field.address)), field.value, "pov "+field.name))
	}
	return writes
}
