package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/catalog-audit-cli/internal/model"
)

func reached() model.Extraction {
	return model.Extraction{
		PopupFound: true,
		FrameFound: true,
	}
}

func TestCategories_NotReached(t *testing.T) {
	ex := model.Extraction{Redirected: true}
	assert.Equal(t, []model.Category{model.CategoryNotInCatalog}, Categories(ex))

	ex = model.Extraction{PopupFound: false}
	assert.Equal(t, []model.Category{model.CategoryNotInCatalog}, Categories(ex))

	ex = model.Extraction{PopupFound: true, FrameFound: false}
	assert.Equal(t, []model.Category{model.CategoryNotInCatalog}, Categories(ex))
}

func TestCategories_NotInRSC(t *testing.T) {
	for _, status := range []string{
		"Not carried in your RSC",
		"NOT CARRIED BY RSC",
		"This item is not in RSC anymore",
	} {
		ex := reached()
		ex.Status = model.Field{Found: true, Text: status}
		ex.OrderQty = model.Field{Found: true, Text: "5"}
		assert.Equal(t, []model.Category{model.CategoryNotInRSC}, Categories(ex), status)
	}
}

func TestCategories_Cancelled(t *testing.T) {
	for _, status := range []string{
		"Cancelled",
		"Pending cancellation",
		"CLOSEOUT item",
		"Close-out",
		"Closed out last spring",
	} {
		ex := reached()
		ex.Status = model.Field{Found: true, Text: status}
		assert.Equal(t, []model.Category{model.CategoryCancelled}, Categories(ex), status)
	}
}

func TestCategories_CancelledWithReplacement(t *testing.T) {
	ex := reached()
	ex.Status = model.Field{Found: true, Text: "Cancelled - replacement available"}
	ex.Discovery = model.Field{Found: true, Text: "D123"}
	ex.Link = model.Field{Found: true, Text: "D123 *"}
	ex.OrderQty = model.Field{Found: true, Text: "0"}
	ex.Location = model.Field{Found: true, Text: "Aisle 4"}
	assert.Empty(t, Categories(ex))

	ex.Status.Text = "Discontinued, closeout pending"
	ex.Location = model.Field{}
	assert.Equal(t, []model.Category{model.CategoryNoLocation}, Categories(ex))
}

func TestCategories_Independent(t *testing.T) {
	ex := reached()
	ex.Status = model.Field{Found: true, Text: "Active"}
	ex.Discovery = model.Field{Found: false}
	ex.Link = model.Field{Found: true, Text: "D456"}
	ex.OrderQty = model.Field{Found: true, Text: "3.5"}
	ex.Location = model.Field{Found: true, Text: "   "}

	assert.Equal(t, []model.Category{
		model.CategoryNoDiscovery,
		model.CategoryNoAsterisk,
		model.CategoryOnOrder,
		model.CategoryNoLocation,
	}, Categories(ex))
}

func TestCategories_Healthy(t *testing.T) {
	ex := reached()
	ex.Status = model.Field{Found: true, Text: "Active"}
	ex.Discovery = model.Field{Found: true, Text: "D456"}
	ex.Link = model.Field{Found: true, Text: "D456 *"}
	ex.OrderQty = model.Field{Found: true, Text: "0"}
	ex.Location = model.Field{Found: true, Text: "Aisle 12, Bay 3"}
	assert.Empty(t, Categories(ex))
}

func TestCategories_OrderQtyParsing(t *testing.T) {
	cases := []struct {
		qty     string
		onOrder bool
	}{
		{"0", false},
		{"0.0", false},
		{"3.5", true},
		{"12", true},
		{"N/A", false},
		{"", false},
	}
	for _, tc := range cases {
		ex := reached()
		ex.Discovery = model.Field{Found: true, Text: "D1"}
		ex.Link = model.Field{Found: true, Text: "D1 *"}
		ex.Location = model.Field{Found: true, Text: "Aisle 1"}
		ex.OrderQty = model.Field{Found: true, Text: tc.qty}

		cats := Categories(ex)
		if tc.onOrder {
			assert.Equal(t, []model.Category{model.CategoryOnOrder}, cats, tc.qty)
		} else {
			assert.Empty(t, cats, tc.qty)
		}
	}
}

func TestCategories_NoAsterisk(t *testing.T) {
	ex := reached()
	ex.Discovery = model.Field{Found: true, Text: "D9"}
	ex.Location = model.Field{Found: true, Text: "Aisle 1"}

	// Absent link never fires the rule.
	ex.Link = model.Field{}
	assert.Empty(t, Categories(ex))

	// Blank link text never fires the rule.
	ex.Link = model.Field{Found: true, Text: "  "}
	assert.Empty(t, Categories(ex))

	ex.Link = model.Field{Found: true, Text: "D9"}
	assert.Equal(t, []model.Category{model.CategoryNoAsterisk}, Categories(ex))
}

func TestExclusiveStatus(t *testing.T) {
	assert.True(t, ExclusiveStatus("Not carried by RSC"))
	assert.True(t, ExclusiveStatus("Cancelled"))
	assert.False(t, ExclusiveStatus("Cancelled - replacement available"))
	assert.False(t, ExclusiveStatus("Active"))
	assert.False(t, ExclusiveStatus("   "))
	assert.False(t, ExclusiveStatus(""))
}
