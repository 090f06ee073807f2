package catalog

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/flaremd/core/family"
	"github.com/gaurav-prasanna/flaremd/core/subfolder"
)

func TestDefault_Validates(t *testing.T) {
	c := Default()
	assert.Equal(t, DefaultSiteBase, c.SiteBase())
	assert.Equal(t, "Content", c.Rules().ContentRoot)
	assert.Equal(t, subfolder.Subfolder("gettingstarted"), c.DefaultFallback())

	u := c.Unit("IDOLServer")
	assert.True(t, u.Known)
	assert.Equal(t, family.Merged, u.Family)
	assert.Equal(t, "IDOLServer_25.4_Documentation", u.SiteDir)

	assert.Equal(t, family.SDK, c.Unit("JavaSDK").Family)
	assert.Equal(t, family.Standard, c.Unit("Content").Family)
}

func TestLoad_File(t *testing.T) {
	t.Setenv("FLAREMD_TEST_SITE_BASE", "https://docs.example.com/idol/25.4/")

	c, err := Load(filepath.Join("testdata", "catalog.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "25.4", c.Version())
	assert.Equal(t, "https://docs.example.com/idol/25.4", c.SiteBase())

	units := c.Units()
	require.Len(t, units, 3)
	assert.Equal(t, subfolder.Subfolder("expert"), units[0].Fallback)
	assert.Equal(t, "Content_25.4_Documentation", units[1].SiteDir)
	assert.Equal(t, family.SDK, units[2].Family, "explicit family overrides the classifier")
	assert.Equal(t, "MediaServer", units[2].SiteDir)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("site_bsae: https://x.example\n"))
	require.Error(t, err)
}

func TestUnit_Uncatalogued(t *testing.T) {
	c := Default()
	u := c.Unit("IDOLServer_26.1")
	assert.False(t, u.Known)
	assert.Equal(t, family.Merged, u.Family)
	assert.Equal(t, "IDOLServer_26.1", u.SiteDir)
	assert.Equal(t, subfolder.Subfolder("gettingstarted"), u.Fallback)
}

func TestNew_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *File)
		want   string
	}{
		{
			name:   "missing merged marker",
			mutate: func(f *File) { f.Families.MergedMarker = "" },
			want:   "merged_marker",
		},
		{
			name: "missing sdk markers",
			mutate: func(f *File) {
				f.Families.SDKMarkers = nil
				f.Families.SDKSuffixes = []string{" "}
			},
			want: "sdk_markers",
		},
		{
			name: "merged unit without fallback",
			mutate: func(f *File) {
				f.DefaultFallback = ""
				f.Units = []UnitSpec{{Name: "IDOLServer"}}
			},
			want: "needs a fallback",
		},
		{
			name:   "fallback not mapped",
			mutate: func(f *File) { f.Units = []UnitSpec{{Name: "IDOLServer", Fallback: "admin"}} },
			want:   `fallback "admin"`,
		},
		{
			name:   "default fallback not mapped",
			mutate: func(f *File) { f.DefaultFallback = "admin" },
			want:   "default_fallback",
		},
		{
			name:   "self overlapping alias",
			mutate: func(f *File) { f.Aliases = []AliasSpec{{From: "Content/A/", To: "Content/A/B/"}} },
			want:   "rewritten again",
		},
		{
			name: "chained aliases",
			mutate: func(f *File) {
				f.Aliases = []AliasSpec{{From: "Content/A/", To: "Content/B/"}, {From: "Content/B/", To: "Content/C/"}}
			},
			want: "rewritten again",
		},
		{
			name:   "bad site base",
			mutate: func(f *File) { f.SiteBase = "docs.example.com" },
			want:   "site_base",
		},
		{
			name:   "empty mapping",
			mutate: func(f *File) { f.Subfolders = nil },
			want:   "subfolders table is empty",
		},
		{
			name:   "duplicate unit",
			mutate: func(f *File) { f.Units = append(f.Units, UnitSpec{Name: "Content"}) },
			want:   "duplicate unit",
		},
		{
			name:   "unknown family",
			mutate: func(f *File) { f.Units = []UnitSpec{{Name: "X", Family: "wiki"}} },
			want:   "wiki",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := DefaultFile()
			tt.mutate(&f)
			_, err := New(f)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCatalog))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNew_CollectsAllProblems(t *testing.T) {
	f := DefaultFile()
	f.Families.MergedMarker = ""
	f.DefaultFallback = "admin"

	_, err := New(f)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.GreaterOrEqual(t, len(ve.Problems), 2)
}

func TestWithSiteBase(t *testing.T) {
	c := Default()
	c2, err := c.WithSiteBase("https://mirror.example.com/idol/")
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example.com/idol", c2.SiteBase())
	assert.Equal(t, DefaultSiteBase, c.SiteBase())

	_, err = c.WithSiteBase("not a url")
	require.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestCatalog_BuildsEngineParts(t *testing.T) {
	c := Default()
	n := c.Normalizer()
	p, err := n.Normalize("Content/MappedSecurity/Intro.htm", family.Merged)
	require.NoError(t, err)
	assert.Equal(t, "Content/OmniGroupServer/Intro.htm", p.Path)

	res, err := c.Resolver().Resolve(family.Merged, p, nil, 0, c.DefaultFallback())
	require.NoError(t, err)
	assert.Equal(t, subfolder.Subfolder("documentsecurity"), res.Subfolder)
}
