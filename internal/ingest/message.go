package ingest

import (
	"strings"

	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/cloo-solutions/litbot/internal/service"
)

// ShareVia marks channel posts that did not come from a feed sweep.
type ShareVia string

const (
	ShareViaFeed      ShareVia = ""
	ShareViaCommand   ShareVia = "Manually Shared"
	ShareViaSummarise ShareVia = "Shared via /summarise"
)

// FormatMessage renders the channel post for item. Title and source are
// escaped here; the processed summary is already HTML-safe.
func FormatMessage(item *domain.Item, processed domain.Processed, via ShareVia) string {
	var b strings.Builder
	b.WriteString("<b>[")
	b.WriteString(service.EscapeHTML(processed.Category))
	b.WriteString("]</b>\n<b>")
	b.WriteString(service.EscapeHTML(item.Title))
	b.WriteString("</b>\n\n")
	b.WriteString(processed.Summary)
	b.WriteString("\n\nSource: ")
	b.WriteString(service.EscapeHTML(item.Source))
	b.WriteString("\n")
	b.WriteString(domain.JoinTags(processed.Hashtags))
	if via != ShareViaFeed {
		b.WriteString("\n\n<i>(")
		b.WriteString(string(via))
		b.WriteString(")</i>")
	}
	b.WriteString("\n\n<a href='")
	b.WriteString(service.EscapeHTML(item.Link))
	b.WriteString("'>Read Full Article</a>")
	return b.String()
}

// FormatPreview renders the private /summarise reply offered for sharing.
func FormatPreview(item *domain.Item, processed domain.Processed) string {
	return "<b>" + service.EscapeHTML(item.Title) + "</b>\n\n" +
		processed.Summary + "\n\n" +
		domain.JoinTags(processed.Hashtags)
}
