// Package cli provides the command-line interface for pagekit.
package cli

import (
	"fmt"
	"os"

	"github.com/devicelab-dev/pagekit/pkg/logger"
	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to workspace config.yaml (default: config.yaml in the pagekit home)",
		EnvVars: []string{"PAGEKIT_CONFIG"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable debug logging (to stderr unless --log-file is set)",
		EnvVars: []string{"PAGEKIT_VERBOSE"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write logs to this file",
		EnvVars: []string{"PAGEKIT_LOG"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// NewApp builds the command-line application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "pagekit",
		Usage:   "Page objects for browser and mobile automation sessions",
		Version: Version,
		Description: `pagekit binds declared pages and elements to WebDriver, Appium and
Playwright sessions.

Examples:
  pagekit locator "#login" "Sign in" //button
  pagekit locator --backend mobile com.example:id/toolbar
  pagekit --config config.yaml check --open
  pagekit check --session chrome --with-url`,
		Flags:  GlobalFlags,
		Before: setup,
		After:  teardown,
		Commands: []*cli.Command{
			locatorCommand,
			checkCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup configures logging and colors from the global flags.
func setup(c *cli.Context) error {
	if c.Bool("no-ansi") {
		colorsEnabled = false
	}

	if path := c.String("log-file"); path != "" {
		if err := logger.Init(path); err != nil {
			return err
		}
	} else if c.Bool("verbose") {
		logger.SetOutput(c.App.ErrWriter)
	}

	if c.Bool("verbose") {
		logger.SetLevel(logger.LevelDebug)
	}
	return nil
}

func teardown(c *cli.Context) error {
	logger.Close()
	return nil
}
