// Package navigate drives the catalog UI from a search submission to a
// fully probed product detail view.
package navigate

import (
	"context"
	"time"

	"github.com/sells-group/catalog-audit-cli/internal/model"
)

// FieldKind names a probe target on the product detail view.
type FieldKind int

const (
	FieldStatus FieldKind = iota
	FieldDiscovery
	FieldDiscoveryLink
	FieldOrderQty
	FieldLocation
)

func (k FieldKind) String() string {
	switch k {
	case FieldStatus:
		return "status"
	case FieldDiscovery:
		return "discovery"
	case FieldDiscoveryLink:
		return "discovery_link"
	case FieldOrderQty:
		return "order_qty"
	case FieldLocation:
		return "location"
	}
	return "unknown"
}

// Focus is an opaque handle to a window or frame owned by the Surface.
type Focus any

// Surface is the minimal browsing interface the machine needs. The
// production implementation wraps a live browser session; tests swap in
// a scripted stub.
type Surface interface {
	// FocusMain brings the primary catalog window to the foreground.
	FocusMain(ctx context.Context) error

	// CurrentURL returns the main window's current location.
	CurrentURL(ctx context.Context) (string, error)

	// EnsureSearchInput waits for a usable search box on the main window.
	EnsureSearchInput(ctx context.Context, timeout time.Duration) error

	// ReloadHome navigates the main window back to the catalog landing page.
	ReloadHome(ctx context.Context) error

	// SubmitSearch replaces the search box contents with the identifier
	// and submits the query.
	SubmitSearch(ctx context.Context, identifier string, timeout time.Duration) error

	// Transients lists windows opened since the session started, newest last.
	Transients(ctx context.Context) ([]Focus, error)

	// Frames lists the detail frames embedded in a transient window.
	Frames(ctx context.Context, transient Focus, timeout time.Duration) ([]Focus, error)

	// Probe reads one field inside the given focus. Absence within the
	// timeout is not an error: it returns a zero Field.
	Probe(ctx context.Context, f Focus, kind FieldKind, timeout time.Duration) (model.Field, error)

	// CloseTransients closes every window except the main one.
	CloseTransients(ctx context.Context) error
}
