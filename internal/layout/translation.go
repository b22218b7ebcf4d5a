package layout

import "fmt"

// Default address translation of the supported executables. Code and data
// before the boundary are mapped with a different section alignment than the
// sections after it.
const (
	DefaultBoundary = 0x4E6000
	DefaultBaseLow  = 0x400C00
	DefaultBaseHigh = 0x408600
)

// Translation maps virtual addresses to file offsets.
type Translation struct {
	Boundary uint32 `yaml:"boundary"`
	BaseLow  uint32 `yaml:"base_low"`
	BaseHigh uint32 `yaml:"base_high"`
}

// DefaultTranslation returns the translation used by the supported executables.
func DefaultTranslation() Translation {
	return Translation{
		Boundary: DefaultBoundary,
		BaseLow:  DefaultBaseLow,
		BaseHigh: DefaultBaseHigh,
	}
}

// Offset returns the file offset of a virtual address. The result is only
// meaningful for addresses that are part of the mapped sections.
func (t Translation) Offset(va int64) int64 {
	if va < int64(t.Boundary) {
		return va - int64(t.BaseLow)
	}
	return va - int64(t.BaseHigh)
}

// Validate checks that both bases are below the boundary.
func (t Translation) Validate() error {
	if t.Boundary == 0 {
		return fmt.Errorf("%w: translation boundary is not set", ErrInvalidLayout)
	}
	if t.BaseLow >= t.Boundary || t.BaseHigh >= t.Boundary {
		return fmt.Errorf("%w: translation bases 0x%x/0x%x must be below boundary 0x%x",
			ErrInvalidLayout, t.BaseLow, t.BaseHigh, t.Boundary)
	}
	return nil
}
