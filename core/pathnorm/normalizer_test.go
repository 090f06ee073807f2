package pathnorm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/flaremd/core/family"
)

var allFamilies = []family.Family{family.Standard, family.SDK, family.Merged}

func newTestNormalizer() *Normalizer {
	return New(DefaultRules(), Alias{From: "Content/MappedSecurity/", To: "Content/OmniGroupServer/"})
}

func TestNormalize_SharedAdmin(t *testing.T) {
	n := newTestNormalizer()
	for _, fam := range allFamilies {
		t.Run(fam.String(), func(t *testing.T) {
			got, err := n.Normalize("../../Shared_Admin/_ADM_Config.htm#My_Anchor", fam)
			require.NoError(t, err)
			assert.Equal(t, "Content/Shared_Admin/_ADM_Config.htm", got.Path)
			assert.Equal(t, "My_Anchor", got.Anchor)
			assert.Equal(t, "Content/Shared_Admin/_ADM_Config.htm#My_Anchor", got.String())
		})
	}
}

func TestNormalize_Encodings(t *testing.T) {
	n := newTestNormalizer()
	const want = "Content/Actions/ENCODINGS/_IDOL_ENCODINGS.htm"

	inputs := []string{
		"ENCODINGS/_IDOL_ENCODINGS.htm",
		"../../ENCODINGS/_IDOL_ENCODINGS.md",
		"Actions/ENCODINGS/_IDOL_ENCODINGS.htm",
		"../Actions/ENCODINGS/_IDOL_ENCODINGS.md",
		"Content/Actions/ENCODINGS/_IDOL_ENCODINGS.htm",
	}
	for _, fam := range allFamilies {
		for _, in := range inputs {
			t.Run(fam.String()+"/"+in, func(t *testing.T) {
				got, err := n.Normalize(in, fam)
				require.NoError(t, err)
				assert.Equal(t, want, got.Path)
			})
		}
	}
}

func TestNormalize_EncodingsKeepsAnchor(t *testing.T) {
	n := newTestNormalizer()
	got, err := n.Normalize("../ENCODINGS/_IDOL_ENCODINGS.htm#Georgian", family.Standard)
	require.NoError(t, err)
	assert.Equal(t, "Content/Actions/ENCODINGS/_IDOL_ENCODINGS.htm#Georgian", got.String())
}

func TestNormalize_Actions(t *testing.T) {
	n := newTestNormalizer()
	for _, fam := range allFamilies {
		got, err := n.Normalize("../../Actions/Query/Query.htm", fam)
		require.NoError(t, err)
		assert.Equal(t, "Content/Actions/Query/Query.htm", got.Path, fam.String())
	}
}

func TestNormalize_SegmentMatching(t *testing.T) {
	n := newTestNormalizer()

	got, err := n.Normalize("Actions2/Query.htm", family.Merged)
	require.NoError(t, err)
	assert.Equal(t, "Actions2/Query.htm", got.Path, "Actions2 must not match the Actions rule")

	got, err = n.Normalize("Actions2/Query.htm", family.Standard)
	require.NoError(t, err)
	assert.Equal(t, "Content/Actions2/Query.htm", got.Path)

	got, err = n.Normalize("Shared_AdminX/a.htm", family.SDK)
	require.NoError(t, err)
	assert.Equal(t, "Shared_AdminX/a.htm", got.Path)

	got, err = n.Normalize("actions/Query.htm", family.SDK)
	require.NoError(t, err)
	assert.Equal(t, "actions/Query.htm", got.Path, "matching is case-sensitive")
}

func TestNormalize_FamilyRootPrefix(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		fam  family.Family
		raw  string
		want string
	}{
		{family.Standard, "../Getting_Started/Intro.htm", "Content/Getting_Started/Intro.htm"},
		{family.Standard, "Content/Getting_Started/Intro.htm", "Content/Getting_Started/Intro.htm"},
		{family.SDK, "../Getting_Started/Intro.htm", "Getting_Started/Intro.htm"},
		{family.Merged, "../IDOLExpert/Intro.htm", "IDOLExpert/Intro.htm"},
		{family.Merged, "Content/IDOLExpert/EnrichContent/Categorize_Documents.htm", "Content/IDOLExpert/EnrichContent/Categorize_Documents.htm"},
	}
	for _, tt := range tests {
		t.Run(tt.fam.String()+"/"+tt.raw, func(t *testing.T) {
			got, err := n.Normalize(tt.raw, tt.fam)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Path)
		})
	}
}

func TestNormalize_PreprocessingVariants(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		raw  string
		want string
	}{
		{`..\..\Shared_Admin\_ADM_Config.htm`, "Content/Shared_Admin/_ADM_Config.htm"},
		{"./Intro.md", "Content/Intro.htm"},
		{"/Content/Intro.htm", "Content/Intro.htm"},
		{"Content/Actions/../Intro.htm", "Content/Intro.htm"},
		{"  ../Intro.htm  ", "Content/Intro.htm"},
	}
	for _, tt := range tests {
		got, err := n.Normalize(tt.raw, family.Standard)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got.Path, tt.raw)
	}
}

func TestNormalize_MergedAliases(t *testing.T) {
	n := newTestNormalizer()

	got, err := n.Normalize("Content/MappedSecurity/Setup.htm#top", family.Merged)
	require.NoError(t, err)
	assert.Equal(t, "Content/OmniGroupServer/Setup.htm#top", got.String())

	got, err = n.Normalize("Content/MappedSecurity/Setup.htm", family.Standard)
	require.NoError(t, err)
	assert.Equal(t, "Content/MappedSecurity/Setup.htm", got.Path, "aliases are merged-only")
}

func TestNormalize_Idempotent(t *testing.T) {
	n := newTestNormalizer()
	inputs := []string{
		"../../Shared_Admin/_ADM_Config.htm#A",
		"ENCODINGS/_IDOL_ENCODINGS.md",
		"Actions/ENCODINGS/_IDOL_ENCODINGS.htm#Georgian",
		"../../Actions/Query/Query.htm",
		"../Intro.md",
		"IDOLExpert/Intro.htm",
		"Content/MappedSecurity/Setup.htm",
		"Foo/ENCODINGS/_IDOL_ENCODINGS.htm",
	}
	for _, fam := range allFamilies {
		for _, in := range inputs {
			first, err := n.Normalize(in, fam)
			require.NoError(t, err)
			second, err := n.Normalize(first.String(), fam)
			require.NoError(t, err)
			assert.Equal(t, first, second, "%s %s", fam, in)
		}
	}
}

func TestNormalize_Malformed(t *testing.T) {
	n := newTestNormalizer()
	for _, raw := range []string{"#onlyAnchor", "", "   ", "../", "./", "../..#x", "/"} {
		t.Run(raw, func(t *testing.T) {
			_, err := n.Normalize(raw, family.Standard)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedReference))

			var mre *MalformedReferenceError
			require.ErrorAs(t, err, &mre)
			assert.Equal(t, raw, mre.Raw)
			assert.NotEmpty(t, mre.Reason)
		})
	}
}

func TestPathUnder(t *testing.T) {
	p := Path{Path: "Content/IDOLExpert/Intro.htm"}
	assert.Equal(t, []string{"IDOLExpert", "Intro.htm"}, p.Under("Content"))

	p = Path{Path: "IDOLExpert/Intro.htm"}
	assert.Equal(t, []string{"IDOLExpert", "Intro.htm"}, p.Under("Content"))
}
