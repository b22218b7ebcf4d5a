// Package bindings converts the codec model into an editable document and
// applies edited documents back onto a model.
package bindings

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bindpatch/bindpatch/internal/codec"
	"github.com/bindpatch/bindpatch/internal/layout"
	"gopkg.in/yaml.v3"
)

// ErrUnknownBinding is returned when a document references a binding that
// does not exist in the image.
var ErrUnknownBinding = errors.New("unknown binding")

// Document is the editable form of all bindings of an image. Only values can
// be changed, the set of bindings is defined by the image.
type Document struct {
	Layout    string                         `yaml:"layout,omitempty"`
	Keys      []Key                          `yaml:"keys,omitempty"`
	Joypad    map[layout.JoypadControl]int32 `yaml:"joypad,omitempty"`
	Freestyle []Freestyle                    `yaml:"freestyle,omitempty"`
	Pov       *Pov                           `yaml:"pov,omitempty"`
}

// Key is a key assignment table slot. Button is the virtual button the slot
// belongs to and is informational only.
type Key struct {
	Button uint32 `yaml:"button"`
	Index  uint32 `yaml:"index"`
	Value  int32  `yaml:"value"`
}

// Freestyle is the key code and flag value of a modifier.
type Freestyle struct {
	Modifier layout.Modifier `yaml:"modifier"`
	KeyCode  int8            `yaml:"key_code"`
	Value    int32           `yaml:"value"`
}

// Pov contains the hat values of the cardinal directions.
type Pov struct {
	Up    uint32 `yaml:"up"`
	Right uint32 `yaml:"right"`
	Down  uint32 `yaml:"down"`
	Left  uint32 `yaml:"left"`
}

// Export returns the document of a supported model.
func Export(model *codec.Model, layoutName string) *Document {
	doc := &Document{Layout: layoutName}

	for _, button := range model.VirtualButtons() {
		for _, a := range model.KeyAssignments[button] {
			doc.Keys = append(doc.Keys, Key{Button: button, Index: a.Index, Value: a.Value})
		}
	}

	for _, control := range layout.JoypadControls {
		fa := model.Joypad.Control(control)
		if fa == nil {
			continue
		}
		if doc.Joypad == nil {
			doc.Joypad = map[layout.JoypadControl]int32{}
		}
		doc.Joypad[control] = fa.Value
	}

	for _, fa := range model.Freestyle {
		doc.Freestyle = append(doc.Freestyle, Freestyle{
			Modifier: fa.Modifier,
			KeyCode:  fa.KeyCode,
			Value:    fa.Value,
		})
	}

	if model.Pov != nil {
		p := Pov(*model.Pov)
		doc.Pov = &p
	}
	return doc
}

// Apply sets the values of the document in the model. All referenced
// bindings are checked before the model is modified, the model is left
// unchanged if any of them does not exist.
func Apply(doc *Document, model *codec.Model) error {
	if !model.Supported {
		return errors.New("image is not supported")
	}

	var (
		errs    []error
		changes []func()
	)

	for _, key := range doc.Keys {
		a := model.Assignment(key.Index)
		switch {
		case a == nil:
			errs = append(errs, fmt.Errorf("%w: key assignment %d", ErrUnknownBinding, key.Index))
		case key.Button != 0 && key.Button != a.VirtualButton():
			errs = append(errs, fmt.Errorf("key assignment %d belongs to virtual button 0x%x, not 0x%x",
				key.Index, a.VirtualButton(), key.Button))
		default:
			value := key.Value
			changes = append(changes, func() { a.Value = value })
		}
	}

	for control, value := range doc.Joypad {
		fa := model.Joypad.Control(control)
		if fa == nil {
			errs = append(errs, fmt.Errorf("%w: joypad %s", ErrUnknownBinding, control))
			continue
		}
		changes = append(changes, func() { fa.Value = value })
	}

	for _, fs := range doc.Freestyle {
		fa := model.FreestyleAssignment(fs.Modifier)
		if fa == nil {
			errs = append(errs, fmt.Errorf("%w: freestyle %s", ErrUnknownBinding, fs.Modifier))
			continue
		}
		changes = append(changes, func() {
			fa.KeyCode = fs.KeyCode
			fa.Value = fs.Value
		})
	}

	if doc.Pov != nil {
		if model.Pov == nil {
			errs = append(errs, fmt.Errorf("%w: pov", ErrUnknownBinding))
		} else {
			pov := codec.Pov(*doc.Pov)
			changes = append(changes, func() { *model.Pov = pov })
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	for _, change := range changes {
		change()
	}
	return nil
}

// Encode writes the document in YAML format.
func (d *Document) Encode(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(d); err != nil {
		return fmt.Errorf("encoding bindings: %w", err)
	}
	return encoder.Close()
}

// Decode reads a document in YAML format, unknown keys are rejected.
func Decode(r io.Reader) (*Document, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding bindings: %w", err)
	}
	return &doc, nil
}

// Load reads a bindings file.
func Load(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening bindings file '%s': %w", path, err)
	}
	defer func() { _ = file.Close() }()

	doc, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("reading bindings file '%s': %w", path, err)
	}
	return doc, nil
}

// Save writes a bindings file.
func (d *Document) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating bindings file '%s': %w", path, err)
	}
	if err := d.Encode(file); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing bindings file '%s': %w", path, err)
	}
	return nil
}
