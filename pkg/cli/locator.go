package cli

import (
	"fmt"
	"io"

	"github.com/devicelab-dev/pagekit/pkg/locator"
	"github.com/devicelab-dev/pagekit/pkg/platform"
	"github.com/urfave/cli/v2"
)

var locatorCommand = &cli.Command{
	Name:      "locator",
	Usage:     "Show how locators are normalized for a backend",
	ArgsUsage: "<locator>...",
	Description: `Print the value sent to the backend, the detected dialect, the W3C
location strategy and the log form of each locator.

Examples:
  pagekit locator "#login" "Sign in" //button
  pagekit locator --backend engine "text=Sign in"
  pagekit locator --type xpath "//div[@id='main']"`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "Backend kind (remote, mobile, engine)",
			Value:   "remote",
		},
		&cli.StringFlag{
			Name:  "type",
			Usage: "Declared dialect (css, xpath, id, text or a driver strategy)",
		},
	},
	Action: runLocator,
}

func runLocator(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one locator is required")
	}

	kind, err := platform.ParseKind(c.String("backend"))
	if err != nil {
		return err
	}
	normalize := locator.For(kind)
	override := locator.Dialect(c.String("type")).Canonical()

	for i, raw := range c.Args().Slice() {
		if i > 0 {
			fmt.Fprintln(c.App.Writer)
		}
		printNormalized(c.App.Writer, raw, normalize(raw, override))
	}
	return nil
}

func printNormalized(w io.Writer, raw string, n locator.Normalized) {
	using := n.Using
	if using == "" {
		using = "-"
	}
	fmt.Fprintln(w, paint(colorBold, raw))
	fmt.Fprintf(w, "  value:    %s\n", n.Value)
	fmt.Fprintf(w, "  dialect:  %s\n", n.Dialect)
	fmt.Fprintf(w, "  strategy: %s\n", using)
	fmt.Fprintf(w, "  log:      %s\n", n.Log)
}
