package navigate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/catalog-audit-cli/internal/classify"
	"github.com/sells-group/catalog-audit-cli/internal/model"
	"github.com/sells-group/catalog-audit-cli/internal/resilience"
)

// State labels a stage of the per-identifier walk. Exposed mostly for
// logging; Process always runs the stages in order.
type State string

const (
	StateIdle            State = "idle"
	StateSearching       State = "searching"
	StateRedirected      State = "redirected"
	StateNoPopup         State = "no_popup"
	StatePopupWait       State = "popup_wait"
	StateFrameSearch     State = "frame_search"
	StateFieldExtraction State = "field_extraction"
	StateDone            State = "done"
)

// Config carries the timing knobs for one walk of the state machine.
type Config struct {
	SettleDelay      time.Duration
	FirstSettleDelay time.Duration
	SearchTimeout    time.Duration
	ProbeTimeout     time.Duration
	StatusTimeout    time.Duration

	DiscoveryAttempts      int
	FirstDiscoveryAttempts int
	DiscoveryBackoff       time.Duration

	// HomeURL is the catalog landing page; leaving it after cleanup
	// triggers a reload so the next search starts from a known place.
	HomeURL string

	// NoResultsFragment marks the search-results URL the catalog
	// redirects to when an identifier matches nothing.
	NoResultsFragment string
}

// Machine walks one identifier through search, popup discovery, frame
// selection and field extraction.
type Machine struct {
	cfg Config
	log *zap.Logger
}

func NewMachine(cfg Config) *Machine {
	return &Machine{cfg: cfg, log: zap.L().Named("navigate")}
}

// Process runs the full walk for one identifier and returns whatever was
// extracted. Expected dead ends (redirect to search results, no popup,
// no detail frame) come back as a partial Extraction with a nil error;
// an error means the session itself misbehaved and the caller should
// treat it as suspect.
func (m *Machine) Process(ctx context.Context, s Surface, identifier string, first bool) (model.Extraction, error) {
	var ex model.Extraction

	defer m.cleanup(ctx, s)

	if err := s.FocusMain(ctx); err != nil {
		return ex, eris.Wrapf(err, "navigate: focus main window for %q", identifier)
	}

	if err := m.ensureSearch(ctx, s); err != nil {
		return ex, eris.Wrapf(err, "navigate: search box unavailable for %q", identifier)
	}

	m.log.Debug("submitting search", zap.String("identifier", identifier), zap.String("state", string(StateSearching)))
	if err := s.SubmitSearch(ctx, identifier, m.cfg.SearchTimeout); err != nil {
		return ex, eris.Wrapf(err, "navigate: submit search for %q", identifier)
	}

	if err := m.settle(ctx, first); err != nil {
		return ex, err
	}

	url, err := s.CurrentURL(ctx)
	if err != nil {
		return ex, eris.Wrapf(err, "navigate: read url after search for %q", identifier)
	}
	if m.cfg.NoResultsFragment != "" && strings.Contains(url, m.cfg.NoResultsFragment) {
		m.log.Debug("search redirected", zap.String("identifier", identifier), zap.String("state", string(StateRedirected)))
		ex.Redirected = true
		return ex, nil
	}

	transients, err := s.Transients(ctx)
	if err != nil {
		return ex, eris.Wrapf(err, "navigate: list windows for %q", identifier)
	}
	if len(transients) == 0 {
		m.log.Debug("no detail window", zap.String("identifier", identifier), zap.String("state", string(StateNoPopup)))
		return ex, nil
	}
	ex.PopupFound = true

	frame, discovery, ok, err := m.findFrame(ctx, s, transients, first)
	if err != nil {
		return ex, eris.Wrapf(err, "navigate: locate detail frame for %q", identifier)
	}
	if !ok {
		m.log.Debug("no detail frame", zap.String("identifier", identifier), zap.String("state", string(StateFrameSearch)))
		return ex, nil
	}
	ex.FrameFound = true
	ex.Discovery = discovery

	if err := m.extract(ctx, s, frame, identifier, &ex); err != nil {
		return ex, err
	}

	m.log.Debug("extraction complete", zap.String("identifier", identifier), zap.String("state", string(StateDone)))
	return ex, nil
}

// ensureSearch waits for the search box, reloading the landing page once
// if it never shows up.
func (m *Machine) ensureSearch(ctx context.Context, s Surface) error {
	err := s.EnsureSearchInput(ctx, m.cfg.SearchTimeout)
	if err == nil {
		return nil
	}
	m.log.Warn("search box missing, reloading home", zap.Error(err))
	if rerr := s.ReloadHome(ctx); rerr != nil {
		return rerr
	}
	return s.EnsureSearchInput(ctx, m.cfg.SearchTimeout)
}

func (m *Machine) settle(ctx context.Context, first bool) error {
	d := m.cfg.SettleDelay
	if first {
		d = m.cfg.FirstSettleDelay
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "navigate: settle interrupted")
	case <-t.C:
		return nil
	}
}

// findFrame sweeps the transient windows for a frame carrying the
// discovery region and returns the frame together with the field read
// from it. The sweep retries since the grid renders noticeably later
// than the rest of the detail view. A detail window where no frame ever
// carries the region means the catalog has no page for the identifier.
func (m *Machine) findFrame(ctx context.Context, s Surface, transients []Focus, first bool) (Focus, model.Field, bool, error) {
	attempts := m.cfg.DiscoveryAttempts
	if first {
		attempts = m.cfg.FirstDiscoveryAttempts
	}

	var frame Focus
	var discovery model.Field
	cfg := resilience.ProbeRetry(attempts, m.cfg.DiscoveryBackoff)
	cfg.OnRetry = func(attempt int, err error) {
		m.log.Debug("discovery not rendered yet", zap.Int("attempt", attempt))
	}

	err := resilience.Do(ctx, cfg, func(ctx context.Context) error {
		for _, t := range transients {
			fs, err := s.Frames(ctx, t, m.cfg.SearchTimeout)
			if err != nil {
				return err
			}
			for _, f := range fs {
				field, perr := s.Probe(ctx, f, FieldDiscovery, m.cfg.ProbeTimeout)
				if perr != nil {
					return perr
				}
				if field.Found {
					frame = f
					discovery = field
					return nil
				}
			}
		}
		return resilience.ErrAbsent
	})
	if errors.Is(err, resilience.ErrAbsent) {
		return nil, model.Field{}, false, nil
	}
	if err != nil {
		return nil, model.Field{}, false, err
	}
	return frame, discovery, true, nil
}

// extract probes the remaining detail fields; the discovery region was
// already read while locating the frame. A terminal status
// short-circuits the rest since it cannot change the classification.
func (m *Machine) extract(ctx context.Context, s Surface, frame Focus, identifier string, ex *model.Extraction) error {
	var err error

	ex.Status, err = s.Probe(ctx, frame, FieldStatus, m.cfg.StatusTimeout)
	if err != nil {
		return eris.Wrapf(err, "navigate: probe status for %q", identifier)
	}
	if ex.Status.Found && classify.ExclusiveStatus(ex.Status.Text) {
		m.log.Debug("terminal status, skipping remaining probes",
			zap.String("identifier", identifier),
			zap.String("status", ex.Status.Text))
		return nil
	}

	ex.Link, err = s.Probe(ctx, frame, FieldDiscoveryLink, m.cfg.ProbeTimeout)
	if err != nil {
		return eris.Wrapf(err, "navigate: probe discovery link for %q", identifier)
	}

	ex.OrderQty, err = s.Probe(ctx, frame, FieldOrderQty, m.cfg.StatusTimeout)
	if err != nil {
		return eris.Wrapf(err, "navigate: probe order quantity for %q", identifier)
	}

	ex.Location, err = s.Probe(ctx, frame, FieldLocation, m.cfg.ProbeTimeout)
	if err != nil {
		return eris.Wrapf(err, "navigate: probe location for %q", identifier)
	}

	return nil
}

// cleanup restores the session to the landing page between identifiers.
// Failures here are logged and otherwise ignored; the liveness check
// before the next identifier catches a broken session.
func (m *Machine) cleanup(parent context.Context, s Surface) {
	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	if err := s.CloseTransients(ctx); err != nil {
		m.log.Warn("closing detail windows", zap.Error(err))
	}
	if err := s.FocusMain(ctx); err != nil {
		m.log.Warn("refocusing main window", zap.Error(err))
		return
	}
	url, err := s.CurrentURL(ctx)
	if err != nil {
		m.log.Warn("reading url during cleanup", zap.Error(err))
		return
	}
	if m.cfg.HomeURL != "" && !atURL(url, m.cfg.HomeURL) {
		if err := s.ReloadHome(ctx); err != nil {
			m.log.Warn("reloading landing page", zap.Error(err))
		}
	}
}

// atURL compares two page URLs ignoring a trailing slash. A prefix
// match is not enough here: every catalog page shares the site root, so
// only exact equality proves the window is back on the landing page.
func atURL(current, want string) bool {
	return strings.TrimSuffix(current, "/") == strings.TrimSuffix(want, "/")
}
