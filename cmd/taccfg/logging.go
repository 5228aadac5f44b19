package main

import (
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/paritytech/revive-sub001/ir"
)

var logOutputFile io.WriteCloser

// setupLogging installs the root logger: a terminal handler on stderr, coloured
// when stderr is a terminal, optionally teed into a rotating file.
func setupLogging(cfg logConfig) error {
	var (
		output   = io.Writer(os.Stderr)
		useColor = (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	)
	if useColor {
		output = colorable.NewColorableStderr()
	}
	if cfg.File != "" {
		logOutputFile = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
		output = io.MultiWriter(os.Stderr, logOutputFile)
		useColor = false
	}
	glogger := log.NewGlogHandler(log.NewTerminalHandler(output, useColor))
	glogger.Verbosity(log.FromLegacyLevel(cfg.Verbosity))
	log.SetDefault(log.NewLogger(glogger))

	ir.EnableDebugLogs(cfg.Debug)
	log.Debug("Logging configured", "verbosity", cfg.Verbosity, "file", cfg.File, "debug", cfg.Debug)
	return nil
}

func closeLogging() {
	if logOutputFile != nil {
		logOutputFile.Close()
		logOutputFile = nil
	}
}
