// Package view 定义渲染层输出的可视树，并负责把它序列化为 HTML。
package view

import "strings"

// SectionAttr 标记节点对应的语义区块（header/summary/...），导出与测试按它定位区块。
const SectionAttr = "data-section"

// Attr 是有序的属性键值对。
type Attr struct {
	Key string
	Val string
}

// Decl 是一条内联样式声明。
type Decl struct {
	Prop string
	Val  string
}

// Node 是可视树中的一个节点；Tag 为空时表示文本节点。
type Node struct {
	Tag      string
	Text     string
	Attrs    []Attr
	Classes  []string
	Style    []Decl
	Children []*Node
}

// El 创建元素节点，nil 子节点会被跳过。
func El(tag string, children ...*Node) *Node {
	n := &Node{Tag: tag}
	return n.Append(children...)
}

// Text 创建文本节点。
func Text(s string) *Node {
	return &Node{Text: s}
}

// IsText 表示文本节点。
func (n *Node) IsText() bool { return n.Tag == "" }

// Append 追加子节点，nil 被忽略（区块缺省时返回 nil）。
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// AddClass 追加 class。
func (n *Node) AddClass(classes ...string) *Node {
	for _, c := range classes {
		if c = strings.TrimSpace(c); c != "" {
			n.Classes = append(n.Classes, c)
		}
	}
	return n
}

// SetAttr 设置属性，已有同名属性时覆盖。
func (n *Node) SetAttr(key, val string) *Node {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Val: val})
	return n
}

// SetStyle 设置内联样式，空值跳过。
func (n *Node) SetStyle(prop, val string) *Node {
	if val == "" {
		return n
	}
	for i := range n.Style {
		if n.Style[i].Prop == prop {
			n.Style[i].Val = val
			return n
		}
	}
	n.Style = append(n.Style, Decl{Prop: prop, Val: val})
	return n
}

// Section 标记语义区块。
func (n *Node) Section(kind string) *Node {
	return n.SetAttr(SectionAttr, kind)
}

// AttrValue 读取属性值。
func (n *Node) AttrValue(key string) string {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// StyleValue 读取内联样式值。
func (n *Node) StyleValue(prop string) string {
	for _, d := range n.Style {
		if d.Prop == prop {
			return d.Val
		}
	}
	return ""
}

// HasClass 判断节点是否带有指定 class。
func (n *Node) HasClass(class string) bool {
	for _, c := range n.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Walk 先序遍历，fn 返回 false 时不再深入该节点的子树。
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// FindAll 按文档顺序返回满足条件的全部节点。
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	n.Walk(func(x *Node) bool {
		if pred(x) {
			out = append(out, x)
		}
		return true
	})
	return out
}

// Find 返回第一个满足条件的节点。
func (n *Node) Find(pred func(*Node) bool) *Node {
	if all := n.FindAll(pred); len(all) > 0 {
		return all[0]
	}
	return nil
}

// Sections 按文档顺序列出区块标记。
func (n *Node) Sections() []string {
	var out []string
	n.Walk(func(x *Node) bool {
		if kind := x.AttrValue(SectionAttr); kind != "" {
			out = append(out, kind)
		}
		return true
	})
	return out
}

// FindSection 返回指定区块的根节点。
func (n *Node) FindSection(kind string) *Node {
	return n.Find(func(x *Node) bool { return x.AttrValue(SectionAttr) == kind })
}

// TextContent 拼接子树中的全部文本。
func (n *Node) TextContent() string {
	var b strings.Builder
	n.Walk(func(x *Node) bool {
		if x.IsText() {
			b.WriteString(x.Text)
		}
		return true
	})
	return b.String()
}
