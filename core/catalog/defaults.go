package catalog

// DefaultSiteBase is where the 25.4 IDOL documentation is published.
const DefaultSiteBase = "https://www.microfocus.com/documentation/idol/knowledge-discovery-25.4"

// DefaultFile returns the built-in IDOL catalog.
func DefaultFile() File {
	return File{
		Version:     "25.4",
		SiteBase:    DefaultSiteBase,
		ContentRoot: "Content",
		Families: FamiliesSection{
			MergedMarker: "IDOLServer",
			SDKMarkers:   []string{"SDK"},
			SDKSuffixes:  []string{"API"},
		},
		Subfolders: []SubfolderSpec{
			{Name: "expert", Dirs: []string{"IDOLExpert"}},
			{Name: "documentsecurity", Dirs: []string{"OmniGroupServer", "IAS", "MappedSecurity", "DocumentSecurity"}},
			{Name: "gettingstarted", Dirs: []string{"GettingStarted", "Appendixes", "Upgrade", "Install"}},
		},
		Aliases: []AliasSpec{
			{From: "Content/MappedSecurity/", To: "Content/OmniGroupServer/"},
		},
		DefaultFallback: "gettingstarted",
		Units: []UnitSpec{
			{Name: "IDOLServer", SiteDir: "IDOLServer_25.4_Documentation", Fallback: "gettingstarted"},
			{Name: "Content", SiteDir: "Content_25.4_Documentation"},
			{Name: "JavaSDK", SiteDir: "JavaSDK_25.4_Documentation"},
		},
	}
}

// Default returns the built-in catalog. It panics if DefaultFile does not
// validate, which only a broken build can cause.
func Default() *Catalog {
	c, err := New(DefaultFile())
	if err != nil {
		panic(err)
	}
	return c
}
