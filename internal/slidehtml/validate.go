package slidehtml

import (
	"strings"

	"golang.org/x/net/html"
)

// Check parses doc and returns the list of contract violations. An empty list
// means the slide passes. Parse failures count as a violation rather than an
// error: generated output is never trusted to be well formed.
func Check(doc string) []string {
	var violations []string
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return []string{"unparseable HTML: " + err.Error()}
	}

	var (
		haveHTML, haveHead, haveBody bool
		h1Count                      int
		haveContent                  bool
		haveTailwind, haveChartJS    bool
		bodyStyle                    string
	)
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.Data {
		case "html":
			haveHTML = true
		case "head":
			haveHead = true
		case "body":
			haveBody = true
			bodyStyle = attr(n, "style")
		case "h1":
			h1Count++
		case "li", "p", "div":
			haveContent = true
		case "script":
			src := attr(n, "src")
			if strings.Contains(src, "tailwindcss.com") {
				haveTailwind = true
			}
			if strings.Contains(src, "chart.js") {
				haveChartJS = true
			}
		}
		for _, a := range n.Attr {
			key := strings.ToLower(a.Key)
			if strings.HasPrefix(key, "on") {
				violations = append(violations, "event handler attribute "+a.Key+" on <"+n.Data+">")
			}
			if (key == "href" || key == "src") && strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
				violations = append(violations, "javascript: URL in "+a.Key+" on <"+n.Data+">")
			}
		}
	})

	if !haveHTML || !haveHead || !haveBody {
		violations = append(violations, "not a complete HTML document (html/head/body required)")
	}
	if h1Count != 1 {
		violations = append(violations, "document must contain exactly one <h1>")
	}
	if !haveContent {
		violations = append(violations, "no content elements (p/li/div) found")
	}
	if !haveTailwind {
		violations = append(violations, "missing Tailwind CDN script")
	}
	if !haveChartJS {
		violations = append(violations, "missing Chart.js CDN script")
	}
	for _, miss := range missingBodyGeometry(bodyStyle) {
		violations = append(violations, "body style missing "+miss)
	}
	return violations
}

// Valid reports whether the slide passes the structural contract.
func Valid(doc string) bool {
	if strings.TrimSpace(doc) == "" {
		return false
	}
	return len(Check(doc)) == 0
}

// missingBodyGeometry checks the fixed 1280x720 canvas declarations,
// tolerating a space after the colon.
func missingBodyGeometry(style string) []string {
	var missing []string
	s := strings.ToLower(style)
	for _, want := range []struct{ name, a, b string }{
		{"width:1280px", "width:1280px", "width: 1280px"},
		{"height:720px", "height:720px", "height: 720px"},
		{"overflow:hidden", "overflow:hidden", "overflow: hidden"},
	} {
		if !strings.Contains(s, want.a) && !strings.Contains(s, want.b) {
			missing = append(missing, want.name)
		}
	}
	return missing
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
