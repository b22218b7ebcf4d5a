package layout

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a layout file.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout file '%s': %w", path, err)
	}
	l, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("loading layout file '%s': %w", path, err)
	}
	return l, nil
}

// Decode reads a layout in YAML format. Unknown keys are rejected and a
// missing translation section is replaced by the default translation.
func Decode(r io.Reader) (*Layout, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var l Layout
	if err := decoder.Decode(&l); err != nil {
		return nil, fmt.Errorf("decoding layout: %w", err)
	}
	if l.Translation == (Translation{}) {
		l.Translation = DefaultTranslation()
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Encode writes the layout in YAML format.
func (l *Layout) Encode(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(l); err != nil {
		return fmt.Errorf("encoding layout: %w", err)
	}
	return encoder.Close()
}
