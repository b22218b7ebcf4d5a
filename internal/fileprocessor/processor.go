// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bindpatch/bindpatch/internal/bindings"
	"github.com/bindpatch/bindpatch/internal/codec"
	"github.com/bindpatch/bindpatch/internal/image"
	"github.com/bindpatch/bindpatch/internal/layout"
	"github.com/bindpatch/bindpatch/internal/loader"
	"github.com/bindpatch/bindpatch/internal/options"
	"github.com/bindpatch/bindpatch/internal/verification"
	"github.com/retroenv/retrogolib/log"
)

// ErrUnsupported is returned for executables that do not carry the
// signature of the layout.
var ErrUnsupported = errors.New("executable version is not supported by the layout")

// ProcessFiles runs ProcessFile for every file with the same options. Output
// names are generated per input file unless an output is given. Failed files
// do not stop the batch, their errors are returned joined. Cancellation stops
// processing immediately.
func ProcessFiles(ctx context.Context, logger *log.Logger, opts options.Program, c *codec.Codec, files []string) error {
	var errs []error
	for _, file := range files {
		opts.Input = file
		if err := ProcessFile(ctx, logger, opts, c); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			errs = append(errs, fmt.Errorf("processing '%s': %w", file, err))
		}
	}
	return errors.Join(errs...)
}

// ProcessFile handles the complete file processing workflow
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, c *codec.Codec) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ldr := loader.New()
	file, err := ldr.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading executable: %w", err)
	}

	im := image.New(file.Data)
	model, err := c.Parse(im)
	if err != nil {
		return fmt.Errorf("parsing bindings: %w", err)
	}
	if !model.Supported {
		return fmt.Errorf("%w '%s'", ErrUnsupported, c.Layout().Name)
	}
	logSummary(logger, opts.Input, model)

	if opts.Export != "" {
		if err := bindings.Export(model, c.Layout().Name).Save(opts.Export); err != nil {
			return fmt.Errorf("exporting bindings: %w", err)
		}
		logger.Info("Bindings exported", log.String("file", opts.Export))
	}

	if !opts.Patches() {
		return nil
	}

	if opts.Bindings != "" {
		doc, err := bindings.Load(opts.Bindings)
		if err != nil {
			return fmt.Errorf("loading bindings: %w", err)
		}
		if err := bindings.Apply(doc, model); err != nil {
			return fmt.Errorf("applying bindings: %w", err)
		}
	}

	writes := c.Plan(model)
	for _, w := range writes {
		logger.Debug("Write", log.Hex("offset", w.Offset), log.String("data", fmt.Sprintf("% x", w.Data)),
			log.String("binding", w.Description))
	}
	if opts.DryRun {
		logger.Info("Dry run, no output written", log.Int("writes", len(writes)))
		return nil
	}

	if err := c.Patch(im, model); err != nil {
		return err
	}

	if opts.Verify {
		if err := verification.VerifyOutput(logger, c, file.Data, model); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		logger.Info("Verification successful")
	}

	output := opts.Output
	if output == "" {
		output = GenerateOutputFilename(opts.Input)
	}
	if err := ldr.Save(file, output); err != nil {
		return fmt.Errorf("saving patched executable: %w", err)
	}
	logger.Info("Patched executable written", log.String("file", output), log.Int("writes", len(writes)))

	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".patched" + ext
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("bindpatch", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}

func logSummary(logger *log.Logger, input string, model *codec.Model) {
	keys := 0
	for _, bucket := range model.KeyAssignments {
		keys += len(bucket)
	}
	joypad := 0
	for _, control := range layout.JoypadControls {
		if model.Joypad.Control(control) != nil {
			joypad++
		}
	}

	logger.Info("Bindings parsed",
		log.String("file", input),
		log.Int("key_assignments", keys),
		log.Int("virtual_buttons", len(model.KeyAssignments)),
		log.Int("joypad", joypad),
		log.Int("freestyle", len(model.Freestyle)),
		log.String("pov", fmt.Sprint(model.Pov != nil)))
}
