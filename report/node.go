package report

import (
	"strings"

	"golang.org/x/net/html"
)

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && (tag == "" || n.Data == tag)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func replaceClass(n *html.Node, from []string, to string) {
	fields := strings.Fields(attr(n, "class"))
	out := make([]string, 0, len(fields)+1)
	for _, c := range fields {
		skip := false
		for _, f := range from {
			if c == f {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, c)
		}
	}
	out = append(out, to)
	setAttr(n, "class", strings.Join(out, " "))
}

// walk visits n and its descendants in document order until f returns false.
func walk(n *html.Node, f func(*html.Node) bool) bool {
	if !f(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, f) {
			return false
		}
	}
	return true
}

func findFirst(n *html.Node, match func(*html.Node) bool) (r *html.Node) {
	walk(n, func(c *html.Node) bool {
		if match(c) {
			r = c
			return false
		}
		return true
	})
	return
}

func findAll(n *html.Node, match func(*html.Node) bool) (r []*html.Node) {
	walk(n, func(c *html.Node) bool {
		if match(c) {
			r = append(r, c)
		}
		return true
	})
	return
}

func byClass(tag, class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return isElement(n, tag) && hasClass(n, class)
	}
}

func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}

	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return strings.TrimSpace(sb.String())
}

func setText(n *html.Node, s string) {
	if n == nil {
		return
	}
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
}

func firstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////////////////////////

func styleValue(n *html.Node, prop string) string {
	for _, decl := range strings.Split(attr(n, "style"), ";") {
		kv := strings.SplitN(decl, ":", 2)
		if len(kv) == 2 && strings.EqualFold(strings.TrimSpace(kv[0]), prop) {
			return strings.TrimSpace(kv[1])
		}
	}
	return ""
}

func setStyle(n *html.Node, prop, val string) {
	decls := strings.Split(attr(n, "style"), ";")
	out := make([]string, 0, len(decls)+1)

	found := false
	for _, decl := range decls {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}

		kv := strings.SplitN(decl, ":", 2)
		if len(kv) == 2 && strings.EqualFold(strings.TrimSpace(kv[0]), prop) {
			decl = prop + ": " + val
			found = true
		}
		out = append(out, decl)
	}
	if !found {
		out = append(out, prop+": "+val)
	}

	setAttr(n, "style", strings.Join(out, "; "))
}
