// Package main implements the main entry point for the binding patcher
package main

import (
	"context"
	"errors"
	"os"

	"github.com/bindpatch/bindpatch/internal/cli"
	"github.com/bindpatch/bindpatch/internal/config"
	"github.com/bindpatch/bindpatch/internal/fileprocessor"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	c, err := config.CreateCodec(logger, opts.Layout)
	if err != nil {
		logger.Fatal(err.Error())
	}

	files, err := fileprocessor.GetFilesToProcess(&opts)
	if err != nil {
		logger.Fatal(err.Error())
	}

	if err := fileprocessor.ProcessFiles(ctx, logger, opts, c, files); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Error("Patching failed", log.Err(err))
		os.Exit(1)
	}
}
