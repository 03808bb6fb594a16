package pageobject

import (
	"errors"
	"time"

	"github.com/devicelab-dev/pagekit/pkg/core"
	"github.com/devicelab-dev/pagekit/pkg/logger"
)

func orDefaultPage(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultPageWait
	}
	return timeout
}

// WaitPageLoaded waits for the anchor to become visible, then checks every
// child with a wait policy. The anchor wait comes first and a failure ends
// the call; child waits all run and their failures are joined.
func (p *Page) WaitPageLoaded(timeout time.Duration) error {
	timeout = orDefaultPage(timeout)
	logger.Info("Wait until page %q loaded", p.name)

	if err := p.anchor.WaitVisible(timeout); err != nil {
		return err
	}

	var errs []error
	for _, c := range p.children {
		n := c.node()
		switch n.wait {
		case WaitVisible:
			if err := n.WaitVisible(timeout); err != nil {
				errs = append(errs, err)
			}
		case WaitHidden:
			if err := n.WaitHidden(timeout); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// IsPageOpened reports whether the anchor is displayed and, optionally,
// every child that must be visible is displayed and the session URL
// equals the page URL. Pages without a URL skip the URL check. Failing
// children are logged, not returned.
func (p *Page) IsPageOpened(withElements, withURL bool) (bool, error) {
	displayed, err := p.anchor.IsDisplayed()
	if err != nil {
		return false, err
	}
	opened := displayed
	if !displayed {
		logger.Debug("Page %q anchor is not displayed. %s", p.name, p.SelectorInfo())
	}

	if withElements {
		for _, c := range p.children {
			n := c.node()
			if n.wait != WaitVisible {
				continue
			}
			ok, err := n.IsDisplayed()
			if err != nil {
				logger.Debug("Page %q: %q check failed: %v", p.name, n.name, err)
				opened = false
				continue
			}
			if !ok {
				logger.Debug("Page %q: %q is not displayed. %s", p.name, n.name, n.SelectorInfo())
				opened = false
			}
		}
	}

	if withURL && p.url != "" {
		current, err := p.backend.CurrentURL()
		if err != nil {
			return false, core.ErrBackend.WithMessage("current url").WithCause(err)
		}
		if current != p.url {
			logger.Debug("Page %q: url %q, expected %q", p.name, current, p.url)
			opened = false
		}
	}
	return opened, nil
}

// Open navigates to url, or to the declared page URL when url is empty,
// and waits for the page to load.
func (p *Page) Open(url string) error {
	if err := p.ensureBound(); err != nil {
		return err
	}
	if url == "" {
		url = p.url
	}
	if url == "" {
		return ErrDeclaration.WithMessagef("page %q has no url", p.name)
	}

	logger.Info("Open %s for page %q", url, p.name)
	if err := p.backend.Navigate(url); err != nil {
		return core.ErrBackend.WithMessagef("open %q", p.name).WithCause(err)
	}
	return p.WaitPageLoaded(DefaultPageWait)
}

// Reload refreshes the page, optionally waiting for it to load.
func (p *Page) Reload(wait bool) error {
	if err := p.ensureBound(); err != nil {
		return err
	}

	logger.Info("Reload page %q", p.name)
	if err := p.backend.Refresh(); err != nil {
		return core.ErrBackend.WithMessagef("reload %q", p.name).WithCause(err)
	}
	if wait {
		return p.WaitPageLoaded(DefaultPageWait)
	}
	return nil
}
