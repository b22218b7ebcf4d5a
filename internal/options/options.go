// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input    string `flag:"i" usage:"input executable file"`
	Output   string `flag:"o" usage:"output executable file (default: <input>.patched<ext>)"`
	Layout   string `flag:"layout" usage:"layout file describing the binding addresses (env BINDPATCH_LAYOUT)"`
	Bindings string `flag:"bindings" usage:"bindings file to apply to the executable"`
	Export   string `flag:"export" usage:"write the current bindings of the executable to this file"`
	Batch    string `flag:"batch" usage:"batch process files matching pattern (e.g. *.exe)"`
}

// Flags contains behavior options.
type Flags struct {
	Verify bool `flag:"verify" usage:"verify the patched output by parsing and decoding it again"`
	DryRun bool `flag:"dry-run" usage:"log the writes without creating an output file"`
	Debug  bool `flag:"debug" usage:"enable debug logging"`
	Quiet  bool `flag:"q" usage:"quiet mode"`
}

// Program options of the patcher.
type Program struct {
	Parameters
	Flags
}

// Patches returns whether the options request an output image. Only
// bindings to apply or an explicit output name do, batch runs without
// bindings only parse and report.
func (p Program) Patches() bool {
	return p.Bindings != "" || p.Output != ""
}
