package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flarePage = `<!DOCTYPE html>
<html lang="en-us">
<head><title>Configure the Server</title><script>var x;</script></head>
<body>
  <div class="sidenav-wrapper"><ul><li>Menu</li></ul></div>
  <div role="main" id="mc-main-content">
    <div class="MCBreadcrumbsBox_0">You are here: Home</div>
    <h1>Configure</h1>
    <p>See <a href="../Sub/Other.htm">other</a>.</p>
    <img src="../Resources/Images/diagram.png" alt="diagram"/>
  </div>
  <footer>copyright</footer>
</body>
</html>`

func TestExtract_FlareMainContent(t *testing.T) {
	page, err := New().Extract(flarePage)
	require.NoError(t, err)

	assert.Equal(t, "Configure the Server", page.Title)
	assert.Equal(t, "en-us", page.Language)
	assert.Contains(t, page.HTML, `id="mc-main-content"`)
	assert.Contains(t, page.HTML, "<h1>Configure</h1>")
	assert.Contains(t, page.HTML, `src="../Resources/Images/diagram.png"`)
	assert.NotContains(t, page.HTML, "You are here")
	assert.NotContains(t, page.HTML, "Menu")
	assert.NotContains(t, page.HTML, "copyright")
}

func TestExtract_Fallbacks(t *testing.T) {
	page, err := New().Extract(`<html><body><div class="main-content"><h1>Only</h1></div><p>outside</p></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Only", page.Title, "first h1 when there is no <title>")
	assert.Equal(t, "en", page.Language)
	assert.NotContains(t, page.HTML, "outside")

	page, err = New().Extract(`<p>bare</p>`)
	require.NoError(t, err)
	assert.Contains(t, page.HTML, "bare")
}

func TestDecode(t *testing.T) {
	latin1 := []byte("<html><head><meta charset=\"iso-8859-1\"></head><body>caf\xe9</body></html>")
	s, err := Decode(latin1, "")
	require.NoError(t, err)
	assert.Contains(t, s, "café")

	s, err = Decode([]byte("<p>plain ✓</p>"), "text/html; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "<p>plain ✓</p>", s)
}
