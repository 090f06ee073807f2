package engine

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/flaremd/core/catalog"
	"github.com/gaurav-prasanna/flaremd/core/family"
	"github.com/gaurav-prasanna/flaremd/core/metrics"
	"github.com/gaurav-prasanna/flaremd/core/pathnorm"
	"github.com/gaurav-prasanna/flaremd/core/scan"
	"github.com/gaurav-prasanna/flaremd/core/subfolder"
)

const base = "https://www.microfocus.com/documentation/idol/knowledge-discovery-25.4"

type countingRecorder struct {
	metrics.NoopRecorder
	refs    map[metrics.Outcome]int
	sources map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{refs: map[metrics.Outcome]int{}, sources: map[string]int{}}
}

func (c *countingRecorder) IncReference(_ string, o metrics.Outcome) { c.refs[o]++ }
func (c *countingRecorder) IncSubfolderResolution(s string)         { c.sources[s]++ }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestResolve_StandardEndToEnd(t *testing.T) {
	e, err := New(catalog.Default(), "Content", WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, family.Standard, e.Family())

	got, err := e.Resolve("../ENCODINGS/_IDOL_ENCODINGS.htm#Georgian", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, base+"/Content_25.4_Documentation/Help/Content/Actions/ENCODINGS/_IDOL_ENCODINGS.htm#Georgian", got)
}

func TestResolve_MergedEndToEnd(t *testing.T) {
	e, err := New(catalog.Default(), "IDOLServer")
	require.NoError(t, err)

	got, err := e.Resolve("../../Shared_Admin/IDOLOperations/_ADM_SearchAndRetrieval.htm", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, base+"/IDOLServer_25.4_Documentation/Guides/html/gettingstarted/Content/Shared_Admin/IDOLOperations/_ADM_SearchAndRetrieval.htm", got)
}

func TestLookup_MergedUsesMarkers(t *testing.T) {
	rec := newCountingRecorder()
	e, err := New(catalog.Default(), "IDOLServer", WithRecorder(rec))
	require.NoError(t, err)

	markers, err := subfolder.NewMarkers(
		subfolder.Marker{Pos: 0, Path: "Content/A", Subfolder: "expert"},
		subfolder.Marker{Pos: 500, Path: "Content/B", Subfolder: "documentsecurity"},
	)
	require.NoError(t, err)

	l, err := e.Lookup("Shared_Admin/_ADM_Config.htm", 600, markers)
	require.NoError(t, err)
	assert.Equal(t, subfolder.Resolution{Subfolder: "documentsecurity", Source: subfolder.SourcePosition}, l.Resolution)
	assert.Equal(t, "Content/Shared_Admin/_ADM_Config.htm", l.Path.Path)

	l, err = e.Lookup("Shared_Admin/_ADM_Config.htm", 100, markers)
	require.NoError(t, err)
	assert.Equal(t, subfolder.Subfolder("expert"), l.Resolution.Subfolder)

	l, err = e.Lookup("Content/IDOLExpert/Intro.htm", 600, markers)
	require.NoError(t, err)
	assert.Equal(t, subfolder.SourceDirectory, l.Resolution.Source)
	assert.True(t, strings.Contains(l.URL, "/Guides/html/expert/Content/IDOLExpert/Intro.htm"))

	assert.Equal(t, 2, rec.sources["position"])
	assert.Equal(t, 1, rec.sources["directory"])
}

func TestResolve_ExpertPrefixNeedsNoSpecialCase(t *testing.T) {
	e, err := New(catalog.Default(), "IDOLServer", WithLogger(quietLogger()))
	require.NoError(t, err)
	markers, err := subfolder.NewMarkers(subfolder.Marker{Pos: 0, Path: "Content/IAS/Setup.htm", Subfolder: "documentsecurity"})
	require.NoError(t, err)

	want := base + "/IDOLServer_25.4_Documentation/Guides/html/expert/Content/IDOLExpert/Intro.htm"
	for _, href := range []string{"Content/IDOLExpert/Intro.htm", "./Content/IDOLExpert/Intro.htm", "/Content/IDOLExpert/Intro.htm"} {
		u, err := e.Resolve(href, 100, markers)
		require.NoError(t, err, href)
		assert.Equal(t, want, u, href)
	}
}

func TestLookup_StandardIgnoresMergedDirectories(t *testing.T) {
	e, err := New(catalog.Default(), "Content")
	require.NoError(t, err)
	l, err := e.Lookup("Appendixes/Glossary.htm", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, subfolder.Resolution{}, l.Resolution)
	assert.Equal(t, base+"/Content_25.4_Documentation/Help/Content/Appendixes/Glossary.htm", l.URL)
}

func TestResolve_Malformed(t *testing.T) {
	e, err := New(catalog.Default(), "Content")
	require.NoError(t, err)
	_, err = e.Resolve("#onlyAnchor", 0, nil)
	require.ErrorIs(t, err, pathnorm.ErrMalformedReference)
}

func TestTopicURL(t *testing.T) {
	e, err := New(catalog.Default(), "IDOLServer")
	require.NoError(t, err)

	u, err := e.TopicURL("Content/Shared_Admin/Overview.htm", "documentsecurity")
	require.NoError(t, err)
	assert.Equal(t, base+"/IDOLServer_25.4_Documentation/Guides/html/documentsecurity/Content/Shared_Admin/Overview.htm", u)

	u, err = e.TopicURL("Content/IDOLExpert/Intro.htm", "documentsecurity")
	require.NoError(t, err)
	assert.Contains(t, u, "/Guides/html/expert/", "directory inference wins over the guide")

	sdk, err := New(catalog.Default(), "JavaSDK")
	require.NoError(t, err)
	u, err = sdk.TopicURL("Content/Classes/Client.htm", "")
	require.NoError(t, err)
	assert.Equal(t, base+"/JavaSDK_25.4_Documentation/Guides/html/Content/Classes/Client.htm", u)
}

func TestNew_Options(t *testing.T) {
	e, err := New(catalog.Default(), "IDOLServer_26.1",
		WithSiteDir("IDOLServer_26.1_Documentation"),
		WithFallback("expert"))
	require.NoError(t, err)
	assert.Equal(t, family.Merged, e.Family())

	u, err := e.Resolve("Shared_Admin/x.htm", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, base+"/IDOLServer_26.1_Documentation/Guides/html/expert/Content/Shared_Admin/x.htm", u)

	forced, err := New(catalog.Default(), "Whatever", WithFamily(family.SDK))
	require.NoError(t, err)
	assert.Equal(t, family.SDK, forced.Family())
}

func TestNew_MergedWithoutFallback(t *testing.T) {
	f := catalog.DefaultFile()
	f.DefaultFallback = ""
	f.Units = nil
	cat, err := catalog.New(f)
	require.NoError(t, err)

	_, err = New(cat, "IDOLServer")
	require.ErrorIs(t, err, catalog.ErrInvalidCatalog)

	_, err = New(catalog.Default(), "IDOLServer", WithFallback("admin"))
	require.ErrorIs(t, err, catalog.ErrInvalidCatalog)
}

func TestRewrite(t *testing.T) {
	var logs bytes.Buffer
	rec := newCountingRecorder()
	e, err := New(catalog.Default(), "IDOLServer",
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		WithRecorder(rec))
	require.NoError(t, err)

	doc := scan.MarkerComment("Content/IDOLExpert/Intro.htm", "expert") + "\n" +
		"# Intro\n\n" +
		"See [config](../../Shared_Admin/_ADM_Config.htm#ports) and [site](https://example.com/x).\n" +
		"Jump [here](#local) or ![img](Resources/pic.png).\n" +
		"Broken [empty]() link.\n\n" +
		scan.MarkerComment("Content/IAS/Setup.htm", "documentsecurity") + "\n" +
		"<a href=\"../Shared_Admin/_ADM_Config.htm\">again</a>\n\n" +
		"```\n[code](Shared_Admin/skip.htm)\n```\n"

	markers, err := scan.Markers([]byte(doc))
	require.NoError(t, err)

	out, rep, err := e.Rewrite([]byte(doc), markers)
	require.NoError(t, err)

	s := string(out)
	site := base + "/IDOLServer_25.4_Documentation/Guides/html/"
	assert.Contains(t, s, "[config]("+site+"expert/Content/Shared_Admin/_ADM_Config.htm#ports)")
	assert.Contains(t, s, `<a href="`+site+`documentsecurity/Content/Shared_Admin/_ADM_Config.htm">`)
	assert.Contains(t, s, "[site](https://example.com/x)")
	assert.Contains(t, s, "[here](#local)")
	assert.Contains(t, s, "![img](Resources/pic.png)")
	assert.Contains(t, s, "[empty]()")
	assert.Contains(t, s, "[code](Shared_Admin/skip.htm)")

	assert.Equal(t, 2, rep.Rewritten)
	assert.Equal(t, 3, rep.Skipped)
	require.Len(t, rep.Malformed, 1)
	assert.Equal(t, 6, rep.Malformed[0].Line)

	assert.Equal(t, 2, rec.refs[metrics.OutcomeRewritten])
	assert.Equal(t, 1, rec.refs[metrics.OutcomeMalformed])
	assert.Contains(t, logs.String(), "line=6")

	require.NoError(t, rep.Err(false))
	err = rep.Err(true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnrewrittenReferences))
}

func TestRewrite_NestedReferenceKeepsDocument(t *testing.T) {
	e, err := New(catalog.Default(), "Content")
	require.NoError(t, err)
	doc := []byte("[a]: [b](Intro.htm)\n\n[ok](Other.htm)\n")

	out, rep, err := e.Rewrite(doc, nil)
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, "[ok]("+base+"/Content_25.4_Documentation/Help/Content/Other.htm)")
	assert.True(t, strings.HasPrefix(s, "[a]: "))
	assert.Equal(t, 2, strings.Count(s, base), "one edit per reference")
	assert.Equal(t, 2, rep.Rewritten)
}

func TestRewrite_LogsInPageAnchors(t *testing.T) {
	var logs bytes.Buffer
	e, err := New(catalog.Default(), "Content",
		WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	require.NoError(t, err)

	doc := "# Intro\n\nSee [below](#setup).\n\n[site](https://example.com)\n"
	out, rep, err := e.Rewrite([]byte(doc), nil)
	require.NoError(t, err)
	assert.Equal(t, doc, string(out))
	assert.Equal(t, 2, rep.Skipped)
	assert.Contains(t, logs.String(), "leaving in-page anchor untouched")
	assert.Contains(t, logs.String(), "#setup")
	assert.Equal(t, 1, strings.Count(logs.String(), "in-page anchor"))
}

func TestRewrite_Idempotent(t *testing.T) {
	e, err := New(catalog.Default(), "Content")
	require.NoError(t, err)
	doc := []byte("[a](Actions/Query.htm) [b](Content/Actions/ENCODINGS/_IDOL_ENCODINGS.htm#Georgian)\n")

	once, _, err := e.Rewrite(doc, nil)
	require.NoError(t, err)
	twice, rep, err := e.Rewrite(once, nil)
	require.NoError(t, err)
	assert.Equal(t, string(once), string(twice))
	assert.Equal(t, 0, rep.Rewritten)
	assert.Equal(t, 2, rep.Skipped)
}
