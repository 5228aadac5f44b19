package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"unicode"

	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"

	"github.com/paritytech/revive-sub001/compiler"
)

const configKey = "config"

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type logConfig struct {
	Verbosity int
	// File enables a rotating log file next to stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	Compress   bool
	// Debug turns on the per-block IR logs.
	Debug bool
}

type tacConfig struct {
	Compiler compiler.Config
	Log      logConfig
}

func defaultConfig() tacConfig {
	cfg := tacConfig{
		Compiler: compiler.Defaults,
		Log: logConfig{
			Verbosity:  3,
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
	cfg.Compiler.Workers = runtime.GOMAXPROCS(0)
	return cfg
}

func loadConfig(file string, cfg *tacConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads the config file, if any, and applies the global flags.
func makeConfig(ctx *cli.Context) (tacConfig, error) {
	cfg := defaultConfig()
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if ctx.IsSet(verbosityFlag.Name) {
		cfg.Log.Verbosity = ctx.Int(verbosityFlag.Name)
	}
	if ctx.IsSet(logFileFlag.Name) {
		cfg.Log.File = ctx.String(logFileFlag.Name)
	}
	if ctx.IsSet(debugFlag.Name) {
		cfg.Log.Debug = ctx.Bool(debugFlag.Name)
	}
	return cfg, nil
}

// configOf returns the configuration prepared before the command ran, with the
// command's own flags applied.
func configOf(ctx *cli.Context) tacConfig {
	cfg, ok := ctx.App.Metadata[configKey].(tacConfig)
	if !ok {
		cfg = defaultConfig()
	}
	if ctx.IsSet(optimizeFlag.Name) {
		cfg.Compiler.Optimize = ctx.Bool(optimizeFlag.Name)
	}
	return cfg
}

func dumpConfig(ctx *cli.Context) error {
	out, err := tomlSettings.Marshal(configOf(ctx))
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write(out)
	return err
}
