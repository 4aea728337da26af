package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTML(t *testing.T) {
	out := ToHTML("# Title\n\n- one\n- two\n\n<script>alert(1)</script>\n")

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "Title</h1>")
	assert.Contains(t, out, "<li>one</li>")
	assert.NotContains(t, out, "<script>")
}

func TestDocument_EscapesTitle(t *testing.T) {
	out := Document("A <b> path", "text")

	assert.Contains(t, out, "<title>A &lt;b&gt; path</title>")
	assert.Contains(t, out, "<p>text</p>")
}
