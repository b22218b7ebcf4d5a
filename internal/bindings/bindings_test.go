package bindings

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bindpatch/bindpatch/internal/codec"
	"github.com/bindpatch/bindpatch/internal/codec/codectest"
	"github.com/bindpatch/bindpatch/internal/image"
	"github.com/bindpatch/bindpatch/internal/layout"
	"github.com/retroenv/retrogolib/assert"
)

func parseDefault(t *testing.T) *codec.Model {
	t.Helper()

	l := codectest.Layout()
	model, err := codec.New(l).Parse(image.New(codectest.Build(l, codectest.Default())))
	assert.NoError(t, err)
	return model
}

func TestExport(t *testing.T) {
	doc := Export(parseDefault(t), "synthetic")

	assert.Equal(t, "synthetic", doc.Layout)
	assert.Equal(t, 7, len(doc.Keys))
	assert.Equal(t, Key{Button: 1, Index: 0, Value: 0x57}, doc.Keys[0])
	assert.Equal(t, Key{Button: 32, Index: 40, Value: 0x20}, doc.Keys[6])

	assert.Equal(t, 9, len(doc.Joypad))
	assert.Equal(t, int32(0x02), doc.Joypad[layout.JoypadRight])
	_, ok := doc.Joypad[layout.JoypadButton6]
	assert.False(t, ok)

	assert.Equal(t, []Freestyle{
		{Modifier: layout.MouseLeft, KeyCode: 0x01, Value: 0x200},
		{Modifier: layout.MouseRight, KeyCode: 0x02, Value: 0x400},
		{Modifier: layout.Shift, KeyCode: 0x10, Value: 0x800},
	}, doc.Freestyle)

	assert.Equal(t, Pov{Up: 1, Right: 2, Down: 4, Left: 8}, *doc.Pov)
}

func TestApply(t *testing.T) {
	model := parseDefault(t)

	doc, err := Decode(strings.NewReader(`
keys:
  - {button: 1, index: 2, value: 65}
  - {index: 17, value: 13}
joypad:
  up: 4096
freestyle:
  - {modifier: shift, key_code: 17, value: 2048}
pov: {up: 16, right: 32, down: 64, left: 128}
`))
	assert.NoError(t, err)
	assert.NoError(t, Apply(doc, model))

	assert.Equal(t, int32(65), model.Assignment(2).Value)
	assert.Equal(t, int32(13), model.Assignment(17).Value)
	assert.Equal(t, int32(4096), model.Joypad.Up.Value)
	assert.Equal(t, int8(17), model.FreestyleAssignment(layout.Shift).KeyCode)
	assert.Equal(t, codec.Pov{Up: 16, Right: 32, Down: 64, Left: 128}, *model.Pov)

	// untouched bindings keep their values
	assert.Equal(t, int32(0x57), model.Assignment(0).Value)
	assert.Equal(t, int32(0x01), model.Joypad.Left.Value)
}

func TestApplyUnknownBindingsLeavesModelUnchanged(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{"missing key slot", Document{Keys: []Key{{Index: 3, Value: 1}}}},
		{"absent joypad button", Document{Joypad: map[layout.JoypadControl]int32{layout.JoypadButton6: 1}}},
		{"unknown joypad control", Document{Joypad: map[layout.JoypadControl]int32{"jump": 1}}},
		{"absent modifier", Document{Freestyle: []Freestyle{{Modifier: layout.Ctrl, KeyCode: 0x11}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := parseDefault(t)
			tt.doc.Keys = append(tt.doc.Keys, Key{Index: 0, Value: 99})

			err := Apply(&tt.doc, model)
			assert.True(t, errors.Is(err, ErrUnknownBinding))
			assert.Equal(t, int32(0x57), model.Assignment(0).Value)
		})
	}
}

func TestApplyButtonMismatch(t *testing.T) {
	model := parseDefault(t)
	err := Apply(&Document{Keys: []Key{{Button: 2, Index: 0, Value: 1}}}, model)
	assert.ErrorContains(t, err, "belongs to virtual button")
}

func TestApplyPovWithoutPovSupport(t *testing.T) {
	l := codectest.Layout()
	f := codectest.Default()
	f.Pov = nil
	model, err := codec.New(l).Parse(image.New(codectest.Build(l, f)))
	assert.NoError(t, err)

	err = Apply(&Document{Pov: &Pov{Up: 1}}, model)
	assert.True(t, errors.Is(err, ErrUnknownBinding))
}

func TestApplyUnsupportedModel(t *testing.T) {
	assert.Error(t, Apply(&Document{}, &codec.Model{}))
}

func TestSaveLoad(t *testing.T) {
	doc := Export(parseDefault(t), "synthetic")
	path := filepath.Join(t.TempDir(), "bindings.yaml")

	assert.NoError(t, doc.Save(path))
	loaded, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, *doc, *loaded)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("keyz: []\n")))
	assert.Error(t, err)
}
