// Package browser owns the authenticated catalog session: launching
// Chrome, logging in, selecting the store context and recycling the
// whole stack when it goes stale.
package browser

import (
	"context"
	"errors"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/catalog-audit-cli/internal/config"
	"github.com/sells-group/catalog-audit-cli/internal/navigate"
	"github.com/sells-group/catalog-audit-cli/internal/resilience"
)

var (
	// ErrAuthentication marks a login flow that never produced a usable
	// search surface.
	ErrAuthentication = errors.New("browser: authentication failed")

	// ErrContextSelection marks a store code that could not be selected.
	ErrContextSelection = errors.New("browser: store selection failed")
)

type session struct {
	launch  *launcher.Launcher
	browser *rod.Browser
	main    *rod.Page
	mainID  proto.TargetTargetID
}

// Controller manages the lifecycle of one browser session. It is not
// safe for concurrent use; parallel runs get one Controller each.
type Controller struct {
	catalog config.CatalogConfig
	cfg     config.BrowserConfig
	locs    Locators
	budget  *resilience.Budget
	log     *zap.Logger

	sess *session
}

func NewController(catalog config.CatalogConfig, cfg config.BrowserConfig, locs Locators, budget *resilience.Budget) *Controller {
	return &Controller{
		catalog: catalog,
		cfg:     cfg,
		locs:    locs,
		budget:  budget,
		log:     zap.L().Named("browser"),
	}
}

// Budget exposes the restart budget shared with the run driver.
func (c *Controller) Budget() *resilience.Budget {
	return c.budget
}

// Start launches Chrome, authenticates, selects the store context and
// returns a surface positioned on the catalog landing page.
func (c *Controller) Start(ctx context.Context) (navigate.Surface, error) {
	sess, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	c.sess = sess

	if err := c.login(ctx); err != nil {
		c.teardown()
		return nil, err
	}
	if err := c.selectStore(ctx); err != nil {
		c.teardown()
		return nil, err
	}
	if err := c.awaitSearch(ctx); err != nil {
		c.teardown()
		return nil, err
	}

	c.log.Info("session ready",
		zap.String("store", c.catalog.StoreCode),
		zap.Bool("headless", c.cfg.Headless))

	return newDriver(sess, c.locs, c.catalog.BaseURL, c.cfg.NavTimeout()), nil
}

// IsAlive probes the DevTools connection. A dead browser process or a
// dropped websocket both report false.
func (c *Controller) IsAlive() bool {
	if c.sess == nil {
		return false
	}
	_, err := c.sess.browser.Version()
	return err == nil
}

// Restart consumes one unit of the restart budget, discards the current
// session and builds a fresh one. The caller checks the budget before
// asking for a restart.
func (c *Controller) Restart(ctx context.Context) (navigate.Surface, error) {
	used := c.budget.Consume()
	c.log.Warn("restarting browser session",
		zap.Int("restarts_used", used),
		zap.Int("restarts_max", c.budget.Max()))

	c.teardown()
	return c.Start(ctx)
}

// Close tears the session down without touching the budget.
func (c *Controller) Close() {
	c.teardown()
}

func (c *Controller) open(ctx context.Context) (*session, error) {
	l := launcher.New().
		Headless(c.cfg.Headless).
		Set(flags.Flag("ignore-certificate-errors")).
		Set(flags.Flag("disable-extensions")).
		Set(flags.Flag("disable-dev-shm-usage")).
		Set(flags.NoSandbox)
	if c.cfg.Bin != "" {
		l = l.Bin(c.cfg.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, eris.Wrap(err, "browser: launch chrome")
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, eris.Wrap(err, "browser: connect to chrome")
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: c.catalog.BaseURL})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, eris.Wrapf(err, "browser: open %s", c.catalog.BaseURL)
	}
	if err := page.Timeout(c.cfg.NavTimeout()).WaitLoad(); err != nil {
		_ = b.Close()
		l.Kill()
		return nil, eris.Wrap(err, "browser: load landing page")
	}

	return &session{launch: l, browser: b, main: page, mainID: page.TargetID}, nil
}

// login fills the credential form when it is shown. An absent form means
// the identity provider already holds a session, which is fine.
func (c *Controller) login(ctx context.Context) error {
	page := c.sess.main.Context(ctx)

	userEl, err := page.Timeout(c.cfg.LoginTimeout()).Element(c.locs.Username)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.log.Debug("login form not shown, assuming existing session")
			return nil
		}
		return eris.Wrap(err, "browser: locate username field")
	}
	if err := userEl.Input(c.catalog.Username); err != nil {
		return eris.Wrap(err, "browser: enter username")
	}

	passEl, err := page.Timeout(c.cfg.LoginTimeout()).Element(c.locs.Password)
	if err != nil {
		return eris.Wrap(err, "browser: locate password field")
	}
	if err := passEl.Input(c.catalog.Password); err != nil {
		return eris.Wrap(err, "browser: enter password")
	}
	if err := passEl.Type(input.Enter); err != nil {
		return eris.Wrap(err, "browser: submit credentials")
	}

	return nil
}

// selectStore opens the store dropdown and picks the entry whose store
// number starts with the configured code.
func (c *Controller) selectStore(ctx context.Context) error {
	if c.catalog.StoreCode == "" {
		return nil
	}
	page := c.sess.main.Context(ctx)

	toggle, err := page.Timeout(c.cfg.LoginTimeout()).Element(c.locs.StoreToggle)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return eris.Wrap(ErrAuthentication, "store selector never appeared after login")
		}
		return eris.Wrap(err, "browser: locate store selector")
	}
	if err := toggle.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return eris.Wrap(err, "browser: open store dropdown")
	}

	list, err := page.Timeout(c.cfg.LoginTimeout()).Element(c.locs.StoreListbox)
	if err != nil {
		return eris.Wrap(err, "browser: locate store list")
	}
	items, err := list.Elements("a")
	if err != nil {
		return eris.Wrap(err, "browser: list store entries")
	}

	for _, item := range items {
		span, err := item.Element(c.locs.StoreNumber)
		if err != nil {
			continue
		}
		number, err := span.Text()
		if err != nil {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(number), c.catalog.StoreCode) {
			if err := item.Click(proto.InputMouseButtonLeft, 1); err != nil {
				return eris.Wrap(err, "browser: pick store entry")
			}
			return nil
		}
	}

	return eris.Wrapf(ErrContextSelection, "store %q not in dropdown", c.catalog.StoreCode)
}

func (c *Controller) awaitSearch(ctx context.Context) error {
	page := c.sess.main.Context(ctx)
	if _, err := page.Timeout(c.cfg.LoginTimeout()).Element(c.locs.SearchBox); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return eris.Wrap(ErrAuthentication, "search box never appeared after login")
		}
		return eris.Wrap(err, "browser: locate search box")
	}
	return nil
}

func (c *Controller) teardown() {
	if c.sess == nil {
		return
	}
	if err := c.sess.browser.Close(); err != nil {
		c.log.Debug("closing browser", zap.Error(err))
	}
	c.sess.launch.Kill()
	c.sess = nil
}
