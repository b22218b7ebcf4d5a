// Package config handles application configuration and setup
package config

import (
	"fmt"

	"github.com/bindpatch/bindpatch/internal/codec"
	"github.com/bindpatch/bindpatch/internal/layout"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateCodec loads the layout file and returns a codec for it.
func CreateCodec(logger *log.Logger, layoutFile string) (*codec.Codec, error) {
	l, err := layout.Load(layoutFile)
	if err != nil {
		return nil, fmt.Errorf("loading layout: %w", err)
	}

	logger.Debug("Layout loaded",
		log.String("name", l.Name),
		log.String("file", layoutFile),
		log.Hex("boundary", l.Translation.Boundary),
		log.Hex("base_low", l.Translation.BaseLow),
		log.Hex("base_high", l.Translation.BaseHigh))

	return codec.New(l), nil
}
