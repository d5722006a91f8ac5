package slidehtml

import (
	"strings"

	"golang.org/x/net/html"
)

// Title returns the text of the first <h1> in doc, or "" when there is none.
func Title(doc string) string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return ""
	}
	var title string
	walk(root, func(n *html.Node) {
		if title != "" || n.Type != html.ElementNode || n.Data != "h1" {
			return
		}
		title = strings.TrimSpace(textOf(n))
	})
	return title
}
