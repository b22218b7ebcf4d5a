package verification

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/bindpatch/bindpatch/internal/codec"
	"github.com/bindpatch/bindpatch/internal/codec/codectest"
	"github.com/bindpatch/bindpatch/internal/image"
	"github.com/bindpatch/bindpatch/internal/layout"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func patchedDefault(t *testing.T) (*codec.Codec, []byte, *codec.Model) {
	t.Helper()

	l := codectest.Layout()
	c := codec.New(l)
	data := codectest.Build(l, codectest.Default())
	model, err := c.Parse(image.New(data))
	assert.NoError(t, err)

	model.Assignment(8).Value = 0x25
	model.Joypad.Right.Value = 0x4000
	model.FreestyleAssignment(layout.Shift).KeyCode = -2
	model.Pov.Left = 0x80

	assert.NoError(t, c.Patch(image.New(data), model))
	return c, data, model
}

// mismatchLogger returns a logger for tests that expect mismatches to be
// logged, the test logger fails a test on every error record.
func mismatchLogger() *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ErrorLevel
	return log.NewWithConfig(cfg)
}

func TestVerifyOutput(t *testing.T) {
	logger := log.NewTestLogger(t)
	c, data, model := patchedDefault(t)

	assert.NoError(t, VerifyOutput(logger, c, data, model))
}

func TestVerifyOutputDetectsValueChange(t *testing.T) {
	logger := mismatchLogger()
	c, data, model := patchedDefault(t)

	binary.LittleEndian.PutUint32(data[model.Joypad.Up.FileOffset:], 0x99)
	err := VerifyOutput(logger, c, data, model)
	assert.True(t, errors.Is(err, ErrMismatch))
	assert.ErrorContains(t, err, "joypad up")
}

func TestVerifyOutputDetectsBrokenSignature(t *testing.T) {
	logger := mismatchLogger()
	c, data, model := patchedDefault(t)
	l := c.Layout()

	data[codectest.Offset(l, l.CheckInstruction)] = 0
	err := VerifyOutput(logger, c, data, model)
	assert.True(t, errors.Is(err, ErrMismatch))
	assert.ErrorContains(t, err, "signature")
}

func TestCheckInstructions(t *testing.T) {
	_, data, model := patchedDefault(t)
	assert.Equal(t, 0, len(CheckInstructions(image.New(data), model)))
}

func TestCheckInstructionsRejectsIndirectLoad(t *testing.T) {
	l := codectest.Layout()
	data := codectest.Build(l, codectest.Default())
	model, err := codec.New(l).Parse(image.New(data))
	assert.NoError(t, err)

	// the unpatched image still loads these values from memory
	mismatches := CheckInstructions(image.New(data), model)
	var names []string
	for _, m := range mismatches {
		names = append(names, m.Binding)
	}
	assert.Equal(t, []string{"joypad right", "joypad button1", "freestyle mouse_right"}, names)
}

func TestCheckInstructionsRejectsWrongSlot(t *testing.T) {
	_, data, model := patchedDefault(t)

	a := model.Assignment(0)
	// 0x10 addresses slot 1 instead of slot 0
	data[a.FileOffset-1] = 0x10
	mismatches := CheckInstructions(image.New(data), model)
	assert.Equal(t, 1, len(mismatches))
	assert.Equal(t, "key assignment 0", mismatches[0].Binding)
}

func TestCompareModels(t *testing.T) {
	_, _, expected := patchedDefault(t)
	_, _, actual := patchedDefault(t)
	assert.Equal(t, 0, len(CompareModels(expected, actual)))

	actual.Joypad.Button6 = &codec.FlagAssignment{Value: 1}
	actual.Pov = nil
	actual.Assignment(40).Value = 0
	mismatches := CompareModels(expected, actual)
	assert.Equal(t, 3, len(mismatches))
	assert.Equal(t, "key assignment 40", mismatches[0].Binding)
	assert.Equal(t, "joypad button6", mismatches[1].Binding)
	assert.Equal(t, "pov", mismatches[2].Binding)
}
