package view

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLNode 把可视树转换为 x/net/html 节点，文本与属性的转义交给 html.Render。
func (n *Node) HTMLNode() *html.Node {
	if n.IsText() {
		return &html.Node{Type: html.TextNode, Data: n.Text}
	}

	out := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Tag,
		DataAtom: atom.Lookup([]byte(n.Tag)),
	}
	if len(n.Classes) > 0 {
		out.Attr = append(out.Attr, html.Attribute{Key: "class", Val: strings.Join(n.Classes, " ")})
	}
	if len(n.Style) > 0 {
		out.Attr = append(out.Attr, html.Attribute{Key: "style", Val: inlineStyle(n.Style)})
	}
	for _, a := range n.Attrs {
		out.Attr = append(out.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	for _, c := range n.Children {
		out.AppendChild(c.HTMLNode())
	}
	return out
}

// Render 将节点序列化为 HTML 片段。
func Render(w io.Writer, n *Node) error {
	if n == nil {
		return nil
	}
	if err := html.Render(w, n.HTMLNode()); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// String 返回 HTML 片段，便于日志与测试。
func (n *Node) String() string {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// Document 描述一个完整的 HTML 页面。
type Document struct {
	Title      string
	Stylesheet string
	Body       *Node
}

// RenderDocument 输出带 doctype 的完整页面。
func RenderDocument(w io.Writer, doc Document) error {
	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	htmlEl := element(atom.Html)
	htmlEl.Attr = []html.Attribute{{Key: "lang", Val: "en"}}
	head := element(atom.Head)
	meta := element(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)

	title := element(atom.Title)
	title.AppendChild(&html.Node{Type: html.TextNode, Data: doc.Title})
	head.AppendChild(title)

	if doc.Stylesheet != "" {
		style := element(atom.Style)
		style.AppendChild(&html.Node{Type: html.TextNode, Data: doc.Stylesheet})
		head.AppendChild(style)
	}

	body := element(atom.Body)
	if doc.Body != nil {
		body.AppendChild(doc.Body.HTMLNode())
	}

	htmlEl.AppendChild(head)
	htmlEl.AppendChild(body)
	root.AppendChild(htmlEl)

	if err := html.Render(w, root); err != nil {
		return fmt.Errorf("render document: %w", err)
	}
	return nil
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}

func inlineStyle(decls []Decl) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.Prop+": "+d.Val)
	}
	return strings.Join(parts, "; ")
}
