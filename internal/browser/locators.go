package browser

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Locators collects every selector the session and surface touch. The
// catalog UI ships ASP.NET-era markup with positional XPaths for the
// detail grid, so the set is overridable from a YAML file for when the
// vendor reshuffles the page.
type Locators struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	StoreToggle  string `yaml:"store_toggle"`
	StoreListbox string `yaml:"store_listbox"`
	StoreNumber  string `yaml:"store_number"`

	SearchBox string `yaml:"search_box"`

	DetailFrame   string `yaml:"detail_frame"`
	Status        string `yaml:"status"`
	Discovery     string `yaml:"discovery"`
	DiscoveryLink string `yaml:"discovery_link"`
	OrderQty      string `yaml:"order_qty"`
	Location      string `yaml:"location"`
}

// DefaultLocators returns the selector set for the current catalog markup.
func DefaultLocators() Locators {
	return Locators{
		Username: "#userNameInput",
		Password: "#passwordInput",

		StoreToggle:  ".filter-option-inner-inner",
		StoreListbox: "div[role='listbox'] ul.dropdown-menu",
		StoreNumber:  "span.store-number",

		SearchBox: "#tbxSearchBox",

		DetailFrame:   "iframe",
		Status:        "#ctl00_ctl00_contentMainPlaceHolder_MainContent_imagesVideos_mainStatusDiv",
		Discovery:     "/html/body/form/div[4]/div[1]/div[11]/div[1]/div[1]/div[20]/div[2]",
		DiscoveryLink: "/html/body/form/div[4]/div[1]/div[11]/div[1]/div[1]/div[20]/div[2]/a",
		OrderQty:      "#spnQOO",
		Location:      "/html/body/form/div[4]/div[1]/div[11]/div[1]/div[3]/div[17]/div[2]",
	}
}

// LoadLocators reads selector overrides from a YAML file and merges them
// over the defaults. Empty fields keep their default value.
func LoadLocators(path string) (Locators, error) {
	locs := DefaultLocators()
	if path == "" {
		return locs, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return locs, eris.Wrapf(err, "browser: read locators file %s", path)
	}

	var overrides Locators
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return locs, eris.Wrapf(err, "browser: parse locators file %s", path)
	}

	merge(&locs.Username, overrides.Username)
	merge(&locs.Password, overrides.Password)
	merge(&locs.StoreToggle, overrides.StoreToggle)
	merge(&locs.StoreListbox, overrides.StoreListbox)
	merge(&locs.StoreNumber, overrides.StoreNumber)
	merge(&locs.SearchBox, overrides.SearchBox)
	merge(&locs.DetailFrame, overrides.DetailFrame)
	merge(&locs.Status, overrides.Status)
	merge(&locs.Discovery, overrides.Discovery)
	merge(&locs.DiscoveryLink, overrides.DiscoveryLink)
	merge(&locs.OrderQty, overrides.OrderQty)
	merge(&locs.Location, overrides.Location)

	return locs, nil
}

func merge(dst *string, override string) {
	if override != "" {
		*dst = override
	}
}
