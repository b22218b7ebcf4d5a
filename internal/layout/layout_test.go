package layout

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestTranslationOffset(t *testing.T) {
	tr := DefaultTranslation()

	tests := []struct {
		va     int64
		offset int64
	}{
		{0x401000, 0x400},
		{0x4E5FFF, 0xE53FF},
		{0x4E6000, 0xDDA00},
		{0x4E7100, 0xDEB00},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.offset, tr.Offset(tt.va))
	}
}

func TestLoad(t *testing.T) {
	l, err := Load(filepath.Join("testdata", "synthetic.yaml"))
	assert.NoError(t, err)
	assert.Equal(t, "synthetic", l.Name)
	assert.Equal(t, DefaultTranslation(), l.Translation)
	assert.Equal(t, uint32(0x401000), l.CheckInstruction)
	assert.Equal(t, uint32(0x403090), l.Joypad.Address(JoypadButton6))
	assert.Equal(t, PushMov{Push: 0x404040, Mov: 0x404050}, l.Freestyle.Site(Shift))
	assert.Equal(t, uint32(0x4E7120), l.Pov.Up2)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDecodeDefaultTranslation(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "synthetic.yaml"))
	assert.NoError(t, err)

	var lines []string
	skip := false
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "translation:") {
			skip = true
			continue
		}
		if skip && strings.HasPrefix(line, "  ") {
			continue
		}
		skip = false
		lines = append(lines, line)
	}

	l, err := Decode(strings.NewReader(strings.Join(lines, "\n")))
	assert.NoError(t, err)
	assert.Equal(t, DefaultTranslation(), l.Translation)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "synthetic.yaml"))
	assert.NoError(t, err)

	_, err = Decode(bytes.NewReader(append(data, []byte("unknown_field: 1\n")...)))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	l, err := Load(filepath.Join("testdata", "synthetic.yaml"))
	assert.NoError(t, err)
	assert.NoError(t, l.Validate())

	missing := *l
	missing.Joypad.Button3 = 0
	missing.Freestyle.Ctrl.Mov = 0
	err = missing.Validate()
	assert.True(t, errors.Is(err, ErrInvalidLayout))
	assert.ErrorContains(t, err, "joypad.button3")
	assert.ErrorContains(t, err, "freestyle.ctrl.mov")

	negative := *l
	negative.KeyAssignments = 0x400000
	assert.True(t, errors.Is(negative.Validate(), ErrInvalidLayout))

	badTranslation := *l
	badTranslation.Translation.BaseHigh = 0x500000
	assert.True(t, errors.Is(badTranslation.Validate(), ErrInvalidLayout))
}

func TestEncodeDecode(t *testing.T) {
	l, err := Load(filepath.Join("testdata", "synthetic.yaml"))
	assert.NoError(t, err)

	var buf bytes.Buffer
	assert.NoError(t, l.Encode(&buf))
	decoded, err := Decode(&buf)
	assert.NoError(t, err)
	assert.Equal(t, *l, *decoded)
}
