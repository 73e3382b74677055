// Package classify maps raw extraction signals to anomaly categories.
package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/catalog-audit-cli/internal/model"
	"github.com/sells-group/catalog-audit-cli/internal/textutil"
)

var (
	// Status phrasings marking an item as not carried by the retail
	// support center.
	rscRe = regexp.MustCompile(`(?i)not\s+carried\s+in\s+your\s+rsc|not\s+carried\s+by\s+rsc|not\s+in\s+rsc`)

	// Cancellation and closeout variants.
	cancelRe = regexp.MustCompile(`(?i)cancel(?:led|lation)?|close(?:out|-out|d out)`)

	// A replacement or discontinued note suppresses the cancellation rule:
	// the item is superseded, not gone.
	replacementRe = regexp.MustCompile(`(?i)replacement|discontinued`)
)

// Categories evaluates the classification rules over one extraction and
// returns every category that applies, in a stable order.
//
// Precedence: an extraction that never reached the product detail page
// yields only NotInCatalog. A not-in-RSC status yields only NotInRSC,
// and a cancellation without a replacement note yields only Cancelled;
// both make the structural checks meaningless. The remaining four rules
// are independent observations about a live listing and may co-occur.
func Categories(ex model.Extraction) []model.Category {
	if !ex.Reached() {
		return []model.Category{model.CategoryNotInCatalog}
	}

	if status := statusText(ex); status != "" {
		if rscRe.MatchString(status) {
			return []model.Category{model.CategoryNotInRSC}
		}
		if cancelRe.MatchString(status) && !replacementRe.MatchString(status) {
			return []model.Category{model.CategoryCancelled}
		}
	}

	var cats []model.Category

	if !ex.Discovery.Found || textutil.Blank(ex.Discovery.Text) {
		cats = append(cats, model.CategoryNoDiscovery)
	}

	if ex.Link.Found {
		if link := textutil.Clean(ex.Link.Text); link != "" && !strings.Contains(link, "*") {
			cats = append(cats, model.CategoryNoAsterisk)
		}
	}

	if ex.OrderQty.Found {
		if qty, err := strconv.ParseFloat(textutil.Clean(ex.OrderQty.Text), 64); err == nil && qty > 0 {
			cats = append(cats, model.CategoryOnOrder)
		}
	}

	if !ex.Location.Found || textutil.Blank(ex.Location.Text) {
		cats = append(cats, model.CategoryNoLocation)
	}

	return cats
}

// ExclusiveStatus reports whether the status text alone decides the
// classification, letting the navigation machine skip the remaining
// field probes for the identifier.
func ExclusiveStatus(text string) bool {
	s := textutil.Clean(text)
	if s == "" {
		return false
	}
	if rscRe.MatchString(s) {
		return true
	}
	return cancelRe.MatchString(s) && !replacementRe.MatchString(s)
}

func statusText(ex model.Extraction) string {
	if !ex.Status.Found {
		return ""
	}
	return textutil.Clean(ex.Status.Text)
}
