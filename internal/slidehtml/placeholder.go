package slidehtml

import (
	"fmt"

	"golang.org/x/net/html"
)

// Placeholder builds the deterministic fallback slide used whenever
// generation cannot succeed. It carries the task title and a visible note so
// the deck stays complete and the failure stays explained. It is a minimal
// document on purpose: it renders, but it does not pass Check, so status
// reporting shows the slide as generated yet invalid. Both fields are
// escaped; placeholders never embed generated markup.
func Placeholder(title, note string) string {
	if note == "" {
		note = "Error generating slide content. Please try again."
	}
	t := html.EscapeString(title)
	return fmt.Sprintf(placeholderTemplate, t, t, html.EscapeString(note))
}

const placeholderTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>%s</title>
</head>
<body style="width:1280px; height:720px; margin:0; padding:0; overflow:hidden; background:#FFFFFF;">
<div style="padding:32px;">
<h1 style="color:#102025; font-size:48px; font-weight:bold; margin-bottom:24px;">%s</h1>
<p style="color:#5D6D71; font-size:18px;">%s</p>
</div>
</body>
</html>`
