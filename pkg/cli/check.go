package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/devicelab-dev/pagekit/pkg/config"
	"github.com/devicelab-dev/pagekit/pkg/driver"
	"github.com/devicelab-dev/pagekit/pkg/driver/appium"
	"github.com/devicelab-dev/pagekit/pkg/driver/playwright"
	"github.com/devicelab-dev/pagekit/pkg/driver/webdriver"
	"github.com/devicelab-dev/pagekit/pkg/logger"
	"github.com/devicelab-dev/pagekit/pkg/pageobject"
	"github.com/devicelab-dev/pagekit/pkg/platform"
	"github.com/devicelab-dev/pagekit/pkg/session"
	"github.com/urfave/cli/v2"
)

var checkCommand = &cli.Command{
	Name:  "check",
	Usage: "Check that declared pages are opened in each configured session",
	Description: `Connect the configured sessions, load the page definitions and report
whether every page is opened: its anchor is displayed and every child
declared visible is displayed.

Examples:
  pagekit check
  pagekit check --open
  pagekit check --session pixel --pages mobile-pages.yaml --with-url`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "pages",
			Usage: "Page definitions file (default: pages from the config)",
		},
		&cli.StringFlag{
			Name:    "session",
			Aliases: []string{"s"},
			Usage:   "Only check this configured session",
		},
		&cli.BoolFlag{
			Name:  "open",
			Usage: "Navigate to each page URL and wait for it to load first",
		},
		&cli.BoolFlag{
			Name:  "with-url",
			Usage: "Also require the session URL to equal the page URL",
		},
	},
	Action: runCheck,
}

// connect opens a backend for a configured session.
var connect = connectBackend

func connectBackend(sc config.SessionConfig) (driver.Backend, error) {
	kind, err := sc.Kind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case platform.KindRemote:
		b, err := webdriver.New(sc.URL, sc.Capabilities)
		if err != nil {
			return nil, err
		}
		return b, nil
	case platform.KindMobile:
		b, err := appium.New(sc.URL, sc.Capabilities)
		if err != nil {
			return nil, err
		}
		return b, nil
	case platform.KindEngine:
		dir := sc.DriverDir
		if dir == "" {
			dir = config.GetDriversDir("playwright")
		}
		b, err := playwright.Launch(playwright.LaunchOptions{
			Browser:   sc.Browser,
			Headless:  sc.Headless,
			Viewport:  sc.Viewport,
			Mobile:    sc.Mobile,
			Tablet:    sc.Tablet,
			DriverDir: dir,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("unsupported backend %q", sc.Backend)
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	return config.LoadFromDir(config.GetHome())
}

// selectSessions returns the configured sessions to check.
func selectSessions(cfg *config.Config, name string) ([]config.SessionConfig, error) {
	if name != "" {
		sc, ok := cfg.Session(name)
		if !ok {
			return nil, fmt.Errorf("session %q is not configured", name)
		}
		return []config.SessionConfig{sc}, nil
	}
	if len(cfg.Sessions) == 0 {
		return nil, fmt.Errorf("no sessions configured")
	}
	return cfg.Sessions, nil
}

func runCheck(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	pageobject.DefaultWait = cfg.Timeouts.Element
	pageobject.DefaultPageWait = cfg.Timeouts.Page

	pagesPath := c.String("pages")
	if pagesPath == "" {
		pagesPath = cfg.PagesPath()
	}
	if pagesPath == "" {
		return fmt.Errorf("no page definitions: set pages in the config or pass --pages")
	}
	pages, err := pageobject.LoadBlueprintsFile(pagesPath)
	if err != nil {
		return err
	}

	configs, err := selectSessions(cfg, c.String("session"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	failed := 0
	for _, sc := range configs {
		logger.Info("Connecting session %q (%s)", sc.Name, sc.Backend)
		backend, err := connect(sc)
		if err != nil {
			fmt.Fprintf(w, "%s %s: %v\n", failMark(), sc.Name, err)
			failed += len(pages)
			continue
		}
		s := session.RegisterNamed(sc.Name, backend)

		fmt.Fprintf(w, "%s %s\n", paint(colorBold, sc.Name),
			paint(colorGray, fmt.Sprintf("(%s, %s)", s.Label(), s.Facts())))
		for _, bp := range pages {
			if !checkPage(w, bp, s, c.Bool("open"), c.Bool("with-url")) {
				failed++
			}
		}

		if err := s.Close(); err != nil {
			logger.Warn("Failed to close session %s: %v", s.Label(), err)
		}
	}

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d page check(s) failed", failed), 1)
	}
	return nil
}

// checkPage reports one page on one session and returns true when it is
// opened.
func checkPage(w io.Writer, bp *pageobject.Blueprint, s *session.Session, open, withURL bool) bool {
	obj, err := bp.Instantiate(pageobject.WithSession(s))
	if err != nil {
		return report(w, bp.Name(), false, err)
	}
	page, ok := obj.(*pageobject.Page)
	if !ok {
		return report(w, bp.Name(), false, fmt.Errorf("%s is not a page", obj))
	}

	if open && page.URL() != "" {
		if err := page.Open(""); err != nil {
			return report(w, page.Name(), false, err)
		}
	}

	opened, err := page.IsPageOpened(true, withURL)
	return report(w, page.Name(), opened, err)
}

func report(w io.Writer, name string, opened bool, err error) bool {
	switch {
	case err != nil:
		fmt.Fprintf(w, "  %s %s: %v\n", failMark(), name, flatten(err))
	case opened:
		fmt.Fprintf(w, "  %s %s\n", passMark(), name)
	default:
		fmt.Fprintf(w, "  %s %s: not opened\n", warnMark(), name)
	}
	return err == nil && opened
}

// flatten joins multi-error messages on one line.
func flatten(err error) string {
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return err.Error()
	}
	msg := ""
	for i, e := range joined.Unwrap() {
		if i > 0 {
			msg += "; "
		}
		msg += e.Error()
	}
	return msg
}
