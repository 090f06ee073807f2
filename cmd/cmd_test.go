package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/flaremd/core/catalog"
	"github.com/gaurav-prasanna/flaremd/core/subfolder"
)

const siteBase = catalog.DefaultSiteBase

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func helpBundle(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	help := "Content_25.4_Documentation/Help/"
	page := func(body string) string {
		return `<html><head><title>Content</title></head><body><div role="main" id="mc-main-content">` + body + `</div></body></html>`
	}
	writeFile(t, root, help+"Data/Tocs/Help.js", `define({tree:{n:[{i:0,c:0},{i:1,c:0}]}});`)
	writeFile(t, root, help+"Data/Tocs/Help_Chunk0.js",
		`define({'/Content/Intro.htm':{i:[0],t:['Intro']},'/Content/Actions/Query.htm':{i:[1],t:['Query']}});`)
	writeFile(t, root, help+"Content/Intro.htm", page(
		`<h1>Intro</h1><p>Run a <a href="Actions/Query.htm#params">query</a>.</p><p><img src="Resources/logo.png" alt="logo"></p>`))
	writeFile(t, root, help+"Content/Actions/Query.htm", page(`<h1>Query</h1><p>Back to <a href="../Intro.htm">intro</a>.</p>`))
	writeFile(t, root, help+"Content/Resources/logo.png", "png")
	return root
}

func TestParseMarker(t *testing.T) {
	m, err := parseMarker("120:Content/IAS/Intro.htm:documentsecurity")
	require.NoError(t, err)
	assert.Equal(t, subfolder.Marker{Pos: 120, Path: "Content/IAS/Intro.htm", Subfolder: "documentsecurity"}, m)

	for _, bad := range []string{"", "12:path", "x:path:sub"} {
		_, err := parseMarker(bad)
		assert.Error(t, err, bad)
	}
}

func TestUnitForSiteDir(t *testing.T) {
	cat := catalog.Default()
	tests := map[string]string{
		"IDOLServer_25.4_Documentation": "IDOLServer",
		"Content_25.4_Documentation":    "Content",
		"DataAdmin_24.4_Documentation":  "DataAdmin",
		"SomethingElse":                 "SomethingElse",
	}
	for siteDir, want := range tests {
		assert.Equal(t, want, unitForSiteDir(cat, siteDir), siteDir)
	}
}

func TestValidateFlags(t *testing.T) {
	reset := func() { flagPDF, flagMarkdown, flagJSON, flagFrontMatter, flagMaxWorkers = false, false, false, false, 0 }
	t.Cleanup(reset)

	reset()
	assert.Error(t, validateFlags(), "no format")

	flagMarkdown, flagJSON = true, true
	assert.Error(t, validateFlags(), "two formats")

	reset()
	flagJSON, flagFrontMatter = true, true
	assert.Error(t, validateFlags(), "front matter needs markdown")

	reset()
	flagMarkdown, flagFrontMatter = true, true
	assert.NoError(t, validateFlags())
}

func TestResolveCommand(t *testing.T) {
	out, _, err := execute(t, "resolve", "IDOLServer", "Shared_Admin/_ADM_Config.htm",
		"--position", "600",
		"--marker", "500:Content/B:documentsecurity",
		"--marker", "0:Content/A:expert",
		"-v")
	require.NoError(t, err)
	assert.Contains(t, out, siteBase+"/IDOLServer_25.4_Documentation/Guides/html/documentsecurity/Content/Shared_Admin/_ADM_Config.htm\n")
	assert.Contains(t, out, "documentsecurity (position)")
	assert.Contains(t, out, "merged")

	_, _, err = execute(t, "resolve", "Content", "#anchor")
	assert.Error(t, err)
}

func TestConvertCommand(t *testing.T) {
	t.Cleanup(func() { flagMarkdown, flagOutputDir = false, "" })
	root := helpBundle(t)
	outDir := t.TempDir()

	out, _, err := execute(t, "convert", root, "--markdown", "--output_dir", outDir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "unit Content, family standard")
	assert.Contains(t, out, "Written:")

	data, err := os.ReadFile(filepath.Join(outDir, "Content_25.4_Documentation.md"))
	require.NoError(t, err)
	md := string(data)
	site := siteBase + "/Content_25.4_Documentation/Help/Content/"
	assert.Contains(t, md, "[query]("+site+"Actions/Query.htm#params)")
	assert.Contains(t, md, "[intro]("+site+"Intro.htm)")
	assert.Contains(t, md, "![logo](Content_25.4_Documentation_assets/logo.png)")
	assert.NotContains(t, md, "BEGIN_FILE")

	assert.FileExists(t, filepath.Join(outDir, "Content_25.4_Documentation_assets", "logo.png"))
}

func TestConvertCommand_RequiresFormat(t *testing.T) {
	_, _, err := execute(t, "convert", t.TempDir())
	assert.ErrorContains(t, err, "output format")
}

func TestRewriteCommand(t *testing.T) {
	doc := "<!-- BEGIN_FILE: Content/IAS/Intro.htm subfolder=documentsecurity -->\n" +
		"# Intro\n\nSee [ports](Content/Shared_Admin/Ports.htm) and [site](https://www.opentext.com).\n"
	p := filepath.Join(t.TempDir(), "IDOLServer.md")
	require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))

	out, stderr, err := execute(t, "rewrite", p, "--unit", "IDOLServer")
	require.NoError(t, err)
	assert.Contains(t, out, "[ports]("+siteBase+"/IDOLServer_25.4_Documentation/Guides/html/documentsecurity/Content/Shared_Admin/Ports.htm)")
	assert.Contains(t, out, "[site](https://www.opentext.com)")
	assert.Contains(t, out, "BEGIN_FILE", "markers stay without --clean")
	assert.Contains(t, stderr, "rewritten: 1")
}

func TestScanCommand(t *testing.T) {
	out, _, err := execute(t, "scan", helpBundle(t))
	require.NoError(t, err)
	assert.Contains(t, out, "unit Content, family standard")
	assert.Contains(t, out, "Help")
	assert.Contains(t, out, "toc: 2 topics")

	_, _, err = execute(t, "scan", t.TempDir())
	assert.Error(t, err)
}

func TestCatalogCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h2>Servers</h2><table>
<tr><td>IDOL Server</td><td><a href="IDOLServer_25.4_Documentation.zip">ZIP</a></td></tr>
<tr><td>Content</td><td><a href="Content_25.4_Documentation.zip">ZIP</a></td></tr>
</table></body></html>`))
	}))
	defer srv.Close()

	index := srv.URL + "/documentation/idol/knowledge-discovery-25.4/"
	out, _, err := execute(t, "catalog", index, "--cache_dir", t.TempDir(), "--json")
	require.NoError(t, err)

	var units []listedUnit
	require.NoError(t, json.Unmarshal([]byte(out), &units))
	require.Len(t, units, 2)
	assert.Equal(t, "IDOLServer", units[0].Unit)
	assert.Equal(t, "merged", units[0].Family)
	assert.Equal(t, "Servers", units[0].Category)
	assert.Equal(t, "knowledge-discovery", units[0].Project)
	assert.Equal(t, "25.4", units[0].Version)
	assert.Equal(t, "Content", units[1].Unit)
	assert.Equal(t, "standard", units[1].Family)
}
