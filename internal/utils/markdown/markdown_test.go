package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertHTMLToMarkdown_EscapedForumFragment(t *testing.T) {
	fragment := `&lt;!-- SC_OFF --&gt;&lt;div class="md"&gt;&lt;p&gt;Use this &lt;strong&gt;system prompt&lt;/strong&gt;:&lt;/p&gt;&lt;pre&gt;&lt;code&gt;You are a reviewer.&lt;/code&gt;&lt;/pre&gt;&lt;/div&gt;&lt;!-- SC_ON --&gt;`

	out := ConvertHTMLToMarkdown(fragment)

	assert.Contains(t, out, "**system prompt**")
	assert.Contains(t, out, "You are a reviewer.")
	assert.NotContains(t, out, "<div")
}

func TestConvertHTMLToMarkdown_DropsScripts(t *testing.T) {
	out := ConvertHTMLToMarkdown(`<p>keep</p><script>alert(1)</script>`)
	assert.Equal(t, "keep", out)
}

func TestCleanMarkdownBoilerplate(t *testing.T) {
	in := "# Title\n\n\n\n![logo](https://x/logo.png)\nText\u200B with zero width\x07\n\n\nEnd"

	out := CleanMarkdownBoilerplate(in)

	assert.Equal(t, "# Title\n\nText with zero width\n\nEnd", out)
}

func TestCleanMarkdownBoilerplate_KeepsMarkdownEscapes(t *testing.T) {
	assert.Equal(t, `\*not bold\*`, CleanMarkdownBoilerplate(`\*not bold\*`))
	assert.Equal(t, "aq", CleanMarkdownBoilerplate(`a\q`))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10, "…"))
	assert.Equal(t, "héll…", Truncate("héllo world", 4, "…"))
	assert.Equal(t, strings.Repeat("x", 3), Truncate(strings.Repeat("x", 3), 0, "…"))
}
