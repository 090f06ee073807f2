package concat

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/flaremd/core/scan"
	"github.com/gaurav-prasanna/flaremd/core/subfolder"
)

func TestAdjustHeadings(t *testing.T) {
	md := "# Title\n\ntext\n\n## Sub\n\n```\n# not a heading\n```\n\n#### Deep"

	assert.Equal(t, "### Title\n\ntext\n\n#### Sub\n\n```\n# not a heading\n```\n\n###### Deep", AdjustHeadings(md, 3))
	assert.Equal(t, md, AdjustHeadings(md, 0))

	assert.Equal(t, "# A\n# B", AdjustHeadings("### A\n## B", 1), "levels clamp at 1")
	assert.Equal(t, "##### A\n###### B", AdjustHeadings("# A\n#### B", 5), "levels clamp at 6")
}

func TestBuilder_MarkersMatchText(t *testing.T) {
	b := NewBuilder(Options{})
	b.StartGuide("expert", "expert")
	require.NoError(t, b.Append(Topic{Path: "Content/IDOLExpert/Intro.htm", Depth: 1, Markdown: "## Intro\n\nHello"}))
	require.NoError(t, b.Append(Topic{Path: "Content/IDOLExpert/Next.htm", Depth: 2, Markdown: "# Next\n"}))
	b.StartGuide("documentsecurity", "documentsecurity")
	require.NoError(t, b.Append(Topic{Path: "Content/IAS/Setup.htm", Depth: 1, Markdown: "# Setup"}))

	doc := b.Document()
	text := string(doc.Text)
	assert.Equal(t, 3, b.Len())
	assert.Contains(t, text, "\n\n---\n\n# documentsecurity Guide\n\n")
	assert.Contains(t, text, "# Intro\n\nHello")
	assert.Contains(t, text, "## Next")
	assert.Equal(t, 1, strings.Count(text, "Guide\n"), "first guide has no separator")

	all := doc.Markers.All()
	require.Len(t, all, 3)
	for _, m := range all {
		assert.True(t, strings.HasPrefix(text[m.Pos:], "<!-- BEGIN_FILE: "+m.Path))
	}
	assert.Equal(t, subfolder.Subfolder("documentsecurity"), all[2].Subfolder)

	recovered, err := scan.Markers(doc.Text)
	require.NoError(t, err)
	assert.Equal(t, all, recovered.All())
}

func TestBuilder_HeaderLinks(t *testing.T) {
	var calls []string
	b := NewBuilder(Options{
		HeaderLinks: true,
		TopicURL: func(path string, sub subfolder.Subfolder) (string, error) {
			calls = append(calls, string(sub)+":"+path)
			if strings.HasSuffix(path, "Bad.htm") {
				return "", errors.New("no url")
			}
			return "https://docs.example.com/" + path, nil
		},
	})
	b.StartGuide("gettingstarted", "gettingstarted")
	require.NoError(t, b.Append(Topic{Path: "Content/Intro.htm", Markdown: "```\n# code\n```\n# Intro\n\n## Sub"}))
	require.NoError(t, b.Append(Topic{Path: "Content/Bad.htm", Markdown: "# Bad"}))
	require.NoError(t, b.Append(Topic{Path: "Content/NoHeading.htm", Markdown: "plain"}))

	text := string(b.Document().Text)
	assert.Contains(t, text, "# Intro [↗](https://docs.example.com/Content/Intro.htm)\n\n## Sub")
	assert.Contains(t, text, "# code\n")
	assert.Contains(t, text, "# Bad\n")
	assert.Contains(t, text, "plain")
	assert.Equal(t, []string{"gettingstarted:Content/Intro.htm", "gettingstarted:Content/Bad.htm", "gettingstarted:Content/NoHeading.htm"}, calls)
}

func TestBuilder_DocumentIsSnapshot(t *testing.T) {
	b := NewBuilder(Options{})
	require.NoError(t, b.Append(Topic{Path: "Content/A.htm", Markdown: "a"}))
	doc := b.Document()
	require.NoError(t, b.Append(Topic{Path: "Content/B.htm", Markdown: "b"}))
	assert.Equal(t, 1, doc.Markers.Len())
	assert.Equal(t, 2, b.Document().Markers.Len())
}
