package htmlutil

import (
	"html"
	"regexp"

	"github.com/k3a/html2text"
)

var preRe = regexp.MustCompile(`(?is)<pre[^>]*>(.*?)</pre>`)

// ToText strips markup and decodes entities, leaving readable plain text.
func ToText(s string) string {
	return html2text.HTML2Text(s)
}

// PreBlocks extracts the contents of every <pre> element, entity-decoded but
// with the original line structure intact. The legacy hazard-outlook page
// wraps each bulletin in its own <pre>.
func PreBlocks(s string) []string {
	var blocks []string
	for _, m := range preRe.FindAllStringSubmatch(s, -1) {
		blocks = append(blocks, html.UnescapeString(m[1]))
	}
	return blocks
}
