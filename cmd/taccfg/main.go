// taccfg builds the three-address-code control-flow graph of EVM bytecode and
// prints it as IR, GraphViz DOT/SVG or per-block statistics.
package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value: 3,
	}
	logFileFlag = &cli.StringFlag{
		Name:  "log.file",
		Usage: "Write logs to a rotating file as well",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable per-block logs of the IR builder and passes",
	}

	codeFlag = &cli.StringFlag{
		Name:  "code",
		Usage: "Contract bytecode as hex (with or without 0x prefix)",
	}
	fileFlag = &cli.StringFlag{
		Name:      "file",
		Usage:     "File containing contract bytecode hex",
		TakesFile: true,
	}
	optimizeFlag = &cli.BoolFlag{
		Name:  "optimize",
		Usage: "Run the optimization passes (overrides the config file)",
		Value: true,
	}
	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Block contents in the graph: none, bytecode or ir",
		Value: "ir",
	}
	outFlag = &cli.StringFlag{
		Name:      "out",
		Usage:     "Output file (.dot or .svg); DOT goes to stdout when empty",
		TakesFile: true,
	}

	inputFlags = []cli.Flag{codeFlag, fileFlag, optimizeFlag}
)

func newApp() *cli.App {
	app := &cli.App{
		Name:  "taccfg",
		Usage: "EVM bytecode to three-address-code control-flow graph",
		Flags: []cli.Flag{
			configFileFlag,
			verbosityFlag,
			logFileFlag,
			debugFlag,
		},
		Commands: []*cli.Command{
			irCommand,
			dotCommand,
			statsCommand,
			disasmCommand,
			dumpConfigCommand,
		},
		Before: func(ctx *cli.Context) error {
			cfg, err := makeConfig(ctx)
			if err != nil {
				return err
			}
			if err := setupLogging(cfg.Log); err != nil {
				return err
			}
			ctx.App.Metadata = map[string]interface{}{configKey: cfg}
			return nil
		},
		After: func(ctx *cli.Context) error {
			closeLogging()
			return nil
		},
	}
	return app
}

func main() {
	// The default worker count follows GOMAXPROCS, which honours the
	// container CPU quota once maxprocs has run.
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.Debug(fmt.Sprintf(format, args...))
	}))
	if err != nil {
		log.Warn("Failed to set GOMAXPROCS", "err", err)
	}
	defer undo()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "taccfg: %v\n", err)
		undo()
		os.Exit(1)
	}
}
