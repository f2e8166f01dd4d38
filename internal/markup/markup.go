// File: internal/markup/markup.go
package markup

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/xkilldash9x/formforge/internal/config"
)

// Format names the syntax of the input markup.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts html, markdown or md. The empty string means html.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html", "htm":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown markup format %q", s)
}

// PageBox describes the printed page in points.
type PageBox struct {
	Width   float64
	Height  float64
	Margins config.MarginConfig
}

// Options controls document assembly.
type Options struct {
	Format   Format
	CSS      string
	Title    string
	Sanitize bool
	Page     *PageBox
}

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)

	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		// Placement selectors and class tokens must survive.
		p.AllowAttrs("class", "id", "style").Globally()
		p.AllowElements("section", "header", "footer", "article", "span", "div")
		policy = p
	})
	return policy
}

// Assemble turns markup into a complete HTML document: Markdown is converted,
// the body is optionally sanitized, and a <style> element carrying the page
// rule and the caller's CSS is appended to <head>.
func Assemble(markup string, opts Options) (string, error) {
	body := markup
	if opts.Format == FormatMarkdown {
		var buf bytes.Buffer
		if err := md.Convert([]byte(markup), &buf); err != nil {
			return "", fmt.Errorf("failed to convert markdown: %w", err)
		}
		body = buf.String()
	}
	if opts.Sanitize {
		body = sanitizer().Sanitize(body)
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}
	head := find(doc, atom.Head)
	if head == nil {
		return "", fmt.Errorf("parsed document has no head element")
	}

	if find(head, atom.Meta) == nil {
		head.InsertBefore(element(atom.Meta, map[string]string{"charset": "utf-8"}), head.FirstChild)
	}
	if opts.Title != "" && find(head, atom.Title) == nil {
		t := element(atom.Title, nil)
		t.AppendChild(&html.Node{Type: html.TextNode, Data: opts.Title})
		head.AppendChild(t)
	}
	if css := stylesheet(opts); css != "" {
		s := element(atom.Style, nil)
		s.AppendChild(&html.Node{Type: html.TextNode, Data: css})
		head.AppendChild(s)
	}

	var out bytes.Buffer
	if err := html.Render(&out, doc); err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return out.String(), nil
}

func stylesheet(opts Options) string {
	var b strings.Builder
	if p := opts.Page; p != nil && p.Width > 0 && p.Height > 0 {
		m := p.Margins
		// Horizontal margins are body padding; selector geometry is measured on screen.
		fmt.Fprintf(&b, "@page { size: %gpt %gpt; margin: %gpt 0 %gpt 0; }\n",
			p.Width, p.Height, m.Top, m.Bottom)
		fmt.Fprintf(&b, "html, body { margin: 0; }\nbody { padding: 0 %gpt 0 %gpt; }\n", m.Right, m.Left)
	}
	if css := strings.TrimSpace(opts.CSS); css != "" {
		b.WriteString(css)
		b.WriteString("\n")
	}
	return b.String()
}

func element(a atom.Atom, attrs map[string]string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for k, v := range attrs {
		n.Attr = append(n.Attr, html.Attribute{Key: k, Val: v})
	}
	return n
}

// find returns the first element of type a in depth-first order.
func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := find(c, a); f != nil {
			return f
		}
	}
	return nil
}
