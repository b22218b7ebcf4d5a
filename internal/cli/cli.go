// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/bindpatch/bindpatch/internal/options"
	"github.com/xyproto/env/v2"
)

// LayoutEnv is the environment variable that provides the default layout file.
const LayoutEnv = "BINDPATCH_LAYOUT"

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "" && opts.Batch == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(flags, args); err != nil {
		return opts, err
	}

	if opts.Input == "" && opts.Batch == "" {
		opts.Input = args[0]
	}

	if err := validateOptionCombinations(opts); err != nil {
		return opts, err
	}

	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: bindpatch [options] <executable>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(flags *flag.FlagSet, args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				flags: flags,
				msg:   fmt.Sprintf("Potential argument %s found after executable, please pass the executable as last argument", arg),
			}
		}
	}
	return nil
}

// validateOptionCombinations checks for incompatible option combinations.
func validateOptionCombinations(opts options.Program) error {
	if opts.Layout == "" {
		return fmt.Errorf("no layout file given, use -layout or set %s", LayoutEnv)
	}
	if opts.Batch != "" && opts.Output != "" {
		return errors.New("-o can not be used together with -batch, output names are generated")
	}
	if opts.Batch != "" && opts.Export != "" {
		return errors.New("-export can not be used together with -batch")
	}
	if opts.Verify && !opts.Patches() {
		return errors.New("-verify requires -bindings or -o")
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input executable file")
	flags.StringVar(&opts.Output, "o", "", "name of the patched output file, <input>.patched<ext> if not given")
	flags.StringVar(&opts.Layout, "layout", env.Str(LayoutEnv), "layout file describing the binding addresses of the executable version")
	flags.StringVar(&opts.Bindings, "bindings", "", "bindings file to apply to the executable")
	flags.StringVar(&opts.Export, "export", "", "write the current bindings of the executable to this file")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask, for example *.exe")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the patched output by parsing and decoding it again")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "log the writes without creating an output file")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
