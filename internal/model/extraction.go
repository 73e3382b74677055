package model

// Field is one probed value from the product detail view. Found is
// false when the element never appeared or stayed hidden within its
// wait budget.
type Field struct {
	Found bool
	Text  string
}

// Extraction is everything the navigation walk learned about one
// identifier.
type Extraction struct {
	// Redirected is true when the search bounced to the no-results page.
	Redirected bool
	// PopupFound is true when a product detail window opened.
	PopupFound bool
	// FrameFound is true when a detail frame was located inside it.
	FrameFound bool

	Status    Field
	Discovery Field
	Link      Field
	OrderQty  Field
	Location  Field
}

// Reached reports whether the walk made it to the product detail view.
// Anything short of that classifies as not-in-catalog.
func (e Extraction) Reached() bool {
	return !e.Redirected && e.PopupFound && e.FrameFound
}
