package browser

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/catalog-audit-cli/internal/model"
	"github.com/sells-group/catalog-audit-cli/internal/navigate"
	"github.com/sells-group/catalog-audit-cli/internal/textutil"
)

// driver adapts a live rod session to the navigate.Surface interface.
// Transient windows are every target except the main page; the catalog
// opens product detail as a popup window holding an iframe.
type driver struct {
	browser    *rod.Browser
	main       *rod.Page
	mainID     proto.TargetTargetID
	locs       Locators
	home       string
	navTimeout time.Duration
	log        *zap.Logger
}

func newDriver(sess *session, locs Locators, home string, navTimeout time.Duration) *driver {
	return &driver{
		browser:    sess.browser,
		main:       sess.main,
		mainID:     sess.mainID,
		locs:       locs,
		home:       home,
		navTimeout: navTimeout,
		log:        zap.L().Named("browser"),
	}
}

func (d *driver) FocusMain(ctx context.Context) error {
	if _, err := d.main.Context(ctx).Activate(); err != nil {
		return eris.Wrap(err, "browser: activate main window")
	}
	return nil
}

func (d *driver) CurrentURL(ctx context.Context) (string, error) {
	info, err := d.main.Context(ctx).Info()
	if err != nil {
		return "", eris.Wrap(err, "browser: read page info")
	}
	return info.URL, nil
}

func (d *driver) EnsureSearchInput(ctx context.Context, timeout time.Duration) error {
	if _, err := d.main.Context(ctx).Timeout(timeout).Element(d.locs.SearchBox); err != nil {
		return eris.Wrap(err, "browser: search box not present")
	}
	return nil
}

func (d *driver) ReloadHome(ctx context.Context) error {
	page := d.main.Context(ctx).Timeout(d.navTimeout)
	if err := page.Navigate(d.home); err != nil {
		return eris.Wrapf(err, "browser: navigate to %s", d.home)
	}
	if err := page.WaitLoad(); err != nil {
		return eris.Wrap(err, "browser: wait for landing page")
	}
	return nil
}

func (d *driver) SubmitSearch(ctx context.Context, identifier string, timeout time.Duration) error {
	el, err := d.main.Context(ctx).Timeout(timeout).Element(d.locs.SearchBox)
	if err != nil {
		return eris.Wrap(err, "browser: locate search box")
	}
	// Replace, never append: leftovers from the previous identifier would
	// silently corrupt the query.
	if err := el.SelectAllText(); err != nil {
		return eris.Wrap(err, "browser: select search text")
	}
	if err := el.Input(identifier); err != nil {
		return eris.Wrap(err, "browser: type identifier")
	}
	if err := el.Type(input.Enter); err != nil {
		return eris.Wrap(err, "browser: submit search")
	}
	return nil
}

func (d *driver) Transients(ctx context.Context) ([]navigate.Focus, error) {
	pages, err := d.browser.Context(ctx).Pages()
	if err != nil {
		return nil, eris.Wrap(err, "browser: list targets")
	}
	var out []navigate.Focus
	for _, p := range pages {
		if p.TargetID == d.mainID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (d *driver) Frames(ctx context.Context, transient navigate.Focus, timeout time.Duration) ([]navigate.Focus, error) {
	page, ok := transient.(*rod.Page)
	if !ok {
		return nil, eris.New("browser: transient focus is not a page")
	}
	page = page.Context(ctx)

	if _, err := page.Timeout(timeout).Element(d.locs.DetailFrame); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "browser: wait for detail frame")
	}

	els, err := page.Elements(d.locs.DetailFrame)
	if err != nil {
		return nil, eris.Wrap(err, "browser: list frames")
	}

	var frames []navigate.Focus
	for i, el := range els {
		frame, err := el.Frame()
		if err != nil {
			d.log.Debug("skipping unreadable frame", zap.Int("index", i), zap.Error(err))
			continue
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// Probe reads one detail field. Absence within the timeout is reported
// as a zero Field, not an error; the classifier decides what a missing
// field means.
func (d *driver) Probe(ctx context.Context, f navigate.Focus, kind navigate.FieldKind, timeout time.Duration) (model.Field, error) {
	page, ok := f.(*rod.Page)
	if !ok {
		return model.Field{}, eris.New("browser: probe focus is not a page")
	}
	scoped := page.Context(ctx).Timeout(timeout)

	sel := d.selector(kind)
	var el *rod.Element
	var err error
	if strings.HasPrefix(sel, "/") {
		el, err = scoped.ElementX(sel)
	} else {
		el, err = scoped.Element(sel)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return model.Field{}, nil
		}
		return model.Field{}, eris.Wrapf(err, "browser: probe %s", kind)
	}

	// Status and order quantity live in containers that stay in the DOM
	// while hidden; presence alone is not a signal for those.
	if kind == navigate.FieldStatus || kind == navigate.FieldOrderQty {
		visible, err := el.Visible()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return model.Field{}, nil
			}
			return model.Field{}, eris.Wrapf(err, "browser: check %s visibility", kind)
		}
		if !visible {
			return model.Field{}, nil
		}
	}

	text, err := el.Text()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return model.Field{}, nil
		}
		return model.Field{}, eris.Wrapf(err, "browser: read %s text", kind)
	}

	return model.Field{Found: true, Text: textutil.Clean(text)}, nil
}

func (d *driver) CloseTransients(ctx context.Context) error {
	pages, err := d.browser.Context(ctx).Pages()
	if err != nil {
		return eris.Wrap(err, "browser: list targets")
	}
	for _, p := range pages {
		if p.TargetID == d.mainID {
			continue
		}
		if err := p.Close(); err != nil {
			d.log.Debug("closing transient window", zap.Error(err))
		}
	}
	return nil
}

func (d *driver) selector(kind navigate.FieldKind) string {
	switch kind {
	case navigate.FieldStatus:
		return d.locs.Status
	case navigate.FieldDiscovery:
		return d.locs.Discovery
	case navigate.FieldDiscoveryLink:
		return d.locs.DiscoveryLink
	case navigate.FieldOrderQty:
		return d.locs.OrderQty
	case navigate.FieldLocation:
		return d.locs.Location
	}
	return ""
}
