package relay

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// RenderHTML converts model-produced Markdown to Telegram-safe HTML.
// Telegram's HTML parse mode only supports <b>, <i>, <s>, <code>,
// <pre> and <a href="">; everything else is flattened to text with
// entities escaped, which guarantees well-formed output regardless of
// what the model emitted.
func RenderHTML(markdown string) string {
	if markdown == "" {
		return ""
	}

	src := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	r := htmlRenderer{src: src}
	r.children(&buf, doc)

	return strings.TrimRight(buf.String(), "\n")
}

type htmlRenderer struct {
	src []byte
}

func (r htmlRenderer) children(w *bytes.Buffer, node ast.Node) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		r.node(w, child)
	}
}

func (r htmlRenderer) node(w *bytes.Buffer, node ast.Node) {
	switch n := node.(type) {
	case *ast.Paragraph:
		r.children(w, n)
		w.WriteString("\n\n")

	case *ast.Heading:
		// No heading tags in Telegram, bold stands in
		w.WriteString("<b>")
		r.children(w, n)
		w.WriteString("</b>\n\n")

	case *ast.Blockquote:
		var inner bytes.Buffer
		r.children(&inner, n)
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			w.WriteString("▎" + line + "\n")
		}
		w.WriteString("\n")

	case *ast.FencedCodeBlock:
		r.codeBlock(w, n, string(n.Language(r.src)))

	case *ast.CodeBlock:
		r.codeBlock(w, n, "")

	case *ast.List:
		r.list(w, n)

	case *ast.Text:
		w.WriteString(html.EscapeString(string(n.Segment.Value(r.src))))
		if n.SoftLineBreak() || n.HardLineBreak() {
			w.WriteString("\n")
		}

	case *ast.String:
		w.WriteString(html.EscapeString(string(n.Value)))

	case *ast.CodeSpan:
		w.WriteString("<code>")
		w.WriteString(html.EscapeString(string(n.Text(r.src))))
		w.WriteString("</code>")

	case *ast.Emphasis:
		tag := "i"
		if n.Level == 2 {
			tag = "b"
		}
		w.WriteString("<" + tag + ">")
		r.children(w, n)
		w.WriteString("</" + tag + ">")

	case *ast.Link:
		w.WriteString(`<a href="` + html.EscapeString(string(n.Destination)) + `">`)
		r.children(w, n)
		w.WriteString("</a>")

	case *ast.AutoLink:
		url := html.EscapeString(string(n.URL(r.src)))
		w.WriteString(`<a href="` + url + `">` + url + "</a>")

	case *ast.ThematicBreak:
		w.WriteString("———\n\n")

	default:
		r.children(w, node)
	}
}

func (r htmlRenderer) codeBlock(w *bytes.Buffer, node interface {
	ast.Node
	Lines() *text.Segments
}, lang string) {
	if lang != "" {
		fmt.Fprintf(w, "<pre><code class=\"language-%s\">", html.EscapeString(lang))
	} else {
		w.WriteString("<pre><code>")
	}
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		w.WriteString(html.EscapeString(string(seg.Value(r.src))))
	}
	w.WriteString("</code></pre>\n\n")
}

func (r htmlRenderer) list(w *bytes.Buffer, list *ast.List) {
	idx := list.Start
	for child := list.FirstChild(); child != nil; child = child.NextSibling() {
		if list.IsOrdered() {
			fmt.Fprintf(w, "%d. ", idx)
			idx++
		} else {
			w.WriteString("• ")
		}
		var item bytes.Buffer
		r.children(&item, child)
		for i, line := range strings.Split(strings.TrimRight(item.String(), "\n"), "\n") {
			if i > 0 {
				w.WriteString("\n  ")
			}
			w.WriteString(line)
		}
		w.WriteString("\n")
	}
	w.WriteString("\n")
}
