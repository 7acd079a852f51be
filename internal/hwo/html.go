package hwo

import (
	"github.com/wxgate/wxgate/internal/htmlutil"
)

// FromHTML extracts bulletins from the legacy product page, which wraps each
// office's outlook in a <pre> block, and runs the line-oriented parser over
// each block. Pages with no <pre> markup fall back to a whole-page text
// conversion handled by the section parser.
func FromHTML(page string, opts LegacyOptions) []Entry {
	blocks := htmlutil.PreBlocks(page)
	if len(blocks) == 0 {
		text := htmlutil.ToText(page)
		return Parse(text, Options{IgnoreText: opts.IgnoreText})
	}

	var entries []Entry
	for _, block := range blocks {
		if entry, ok := ParseLegacy(block, opts); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}
