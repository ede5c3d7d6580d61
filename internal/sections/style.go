// Package sections 实现简历的各个语义区块：头部、摘要、工作经历、教育经历与技能。
// 每个渲染函数都是记录与样式的纯函数，数据为空时返回 nil。
package sections

import (
	"regexp"
	"strings"

	"resumePreview/internal/resume"
	"resumePreview/internal/view"
)

// 区块标记，写入 data-section 属性。
const (
	KindHeader     = "header"
	KindSummary    = "summary"
	KindExperience = "experience"
	KindEducation  = "education"
	KindSkills     = "skills"
)

// DefaultColor 在 colorHex 缺失或非法时使用。
const DefaultColor = "#000000"

// Variant 是模板可选的区块呈现方式，集合封闭，由布局按模板选择。
type Variant int

const (
	Standard Variant = iota
	Classic
	Minimal
	Creative
	Corporate
	Elegant
)

func (v Variant) String() string {
	switch v {
	case Classic:
		return "classic"
	case Minimal:
		return "minimal"
	case Creative:
		return "creative"
	case Corporate:
		return "corporate"
	case Elegant:
		return "elegant"
	default:
		return "standard"
	}
}

// Style 是由记录派生的共享样式。
type Style struct {
	ColorHex string
	Border   resume.BorderStyle
}

// StyleOf 从记录中提取强调色与圆角策略。
func StyleOf(r *resume.Record) Style {
	return Style{
		ColorHex: NormalizeColor(r.ColorHex),
		Border:   r.BorderStyle.Normalize(),
	}
}

// Context 是区块渲染的全部输入。
type Context struct {
	Record   *resume.Record
	Style    Style
	PhotoSrc string
	Variant  Variant
}

// NewContext 组装渲染上下文。
func NewContext(r *resume.Record, variant Variant, photoSrc string) Context {
	return Context{
		Record:   r,
		Style:    StyleOf(r),
		PhotoSrc: photoSrc,
		Variant:  variant,
	}
}

var (
	hexColorPattern  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColorPattern = regexp.MustCompile(`^(?:rgb|rgba|hsl|hsla)\([0-9.,%\s/]+\)$`)
	namedColor       = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)
)

// NormalizeColor 只接受颜色字面量，其余一律回落到 DefaultColor，避免把任意文本写进内联样式。
func NormalizeColor(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case hexColorPattern.MatchString(s), funcColorPattern.MatchString(s), namedColor.MatchString(s):
		return s
	default:
		return DefaultColor
	}
}

func section(kind string) *view.Node {
	return view.El("section").AddClass("rp-section", "rp-section--"+kind).Section(kind)
}

func divider(color string) *view.Node {
	return view.El("hr").AddClass("rp-divider").SetStyle("border-color", color)
}

func accentHeading(title, color string) *view.Node {
	return view.El("p", view.Text(title)).AddClass("rp-heading").SetStyle("color", color)
}

func corporateHeading(title string, major bool) *view.Node {
	n := view.El("div", view.El("h3", view.Text(title))).AddClass("rp-heading-corporate")
	if major {
		n.AddClass("rp-heading-corporate--major")
	}
	return n
}

func avoidBreak(n *view.Node) *view.Node {
	return n.AddClass("rp-avoid-break").SetStyle("break-inside", "avoid")
}
