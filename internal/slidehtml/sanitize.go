package slidehtml

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Sanitize strips executable content the contract does not allow: external
// scripts outside the CDN whitelist, inline scripts without an allow-listed
// keyword, event handler attributes, and javascript: URLs. It runs on every
// artifact, including ones that already validated. If the document cannot be
// parsed or re-rendered the input is returned unchanged; the validator flags
// such output separately.
func Sanitize(doc string) string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return doc
	}

	var drop []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if n.Data == "script" && !allowedScript(n) {
			drop = append(drop, n)
			return
		}
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			key := strings.ToLower(a.Key)
			if strings.HasPrefix(key, "on") {
				continue
			}
			if (key == "href" || key == "src") && strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
				continue
			}
			kept = append(kept, a)
		}
		n.Attr = kept
	})
	for _, n := range drop {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return doc
	}
	return buf.String()
}

func allowedScript(n *html.Node) bool {
	if src := attr(n, "src"); src != "" {
		for _, needle := range allowedScriptSrcSubstrings {
			if strings.Contains(src, needle) {
				return true
			}
		}
		return false
	}
	text := strings.ToLower(strings.TrimSpace(textOf(n)))
	if text == "" {
		return false
	}
	for _, kw := range allowedInlineScriptKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var buf strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		}
	})
	return buf.String()
}
