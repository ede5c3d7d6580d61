package sections

import (
	"strings"

	"resumePreview/internal/view"
)

// Summary 渲染个人简介，内容为空时返回 nil。所有模板共用同一呈现。
func Summary(ctx Context) *view.Node {
	summary := strings.TrimSpace(ctx.Record.Summary)
	if summary == "" {
		return nil
	}
	color := ctx.Style.ColorHex
	return section(KindSummary).Append(
		divider(color),
		avoidBreak(view.El("div",
			accentHeading("Professional Summary", color),
			view.El("p", view.Text(summary)).AddClass("rp-text"),
		).AddClass("rp-stack")),
	)
}

// entry 是工作与教育经历共用的展示字段。
type entry struct {
	title       string
	subtitle    string
	dateRange   string
	description string
}

// WorkExperience 渲染工作经历；过滤后为空时返回 nil，条目保持输入顺序。
func WorkExperience(ctx Context) *view.Node {
	present := ctx.Record.PresentWorkExperiences()
	if len(present) == 0 {
		return nil
	}
	entries := make([]entry, 0, len(present))
	for _, w := range present {
		entries = append(entries, entry{
			title:       strings.TrimSpace(w.Position),
			subtitle:    strings.TrimSpace(w.Company),
			dateRange:   DateRange(w.StartDate, w.EndDate),
			description: strings.TrimSpace(w.Description),
		})
	}
	return entryBlock(ctx, KindExperience, "Work Experience", entries)
}

// Education 渲染教育经历，规则同 WorkExperience。
func Education(ctx Context) *view.Node {
	present := ctx.Record.PresentEducations()
	if len(present) == 0 {
		return nil
	}
	entries := make([]entry, 0, len(present))
	for _, e := range present {
		entries = append(entries, entry{
			title:     strings.TrimSpace(e.Degree),
			subtitle:  strings.TrimSpace(e.School),
			dateRange: DateRange(e.StartDate, e.EndDate),
		})
	}
	return entryBlock(ctx, KindEducation, "Education", entries)
}

func entryBlock(ctx Context, kind, title string, entries []entry) *view.Node {
	root := section(kind)
	list := view.El("div").AddClass("rp-stack")

	if ctx.Variant == Corporate {
		root.AddClass("rp-section--corporate")
		list.Append(corporateHeading(title, kind == KindExperience))
	} else {
		root.Append(divider(ctx.Style.ColorHex))
		list.Append(accentHeading(title, ctx.Style.ColorHex))
	}

	for _, e := range entries {
		list.Append(entryNode(ctx.Variant, kind, e))
	}
	return root.Append(list)
}

func entryNode(variant Variant, kind string, e entry) *view.Node {
	n := avoidBreak(view.El("div").AddClass("rp-entry"))

	head := view.El("div").AddClass("rp-entry-head")
	titleTag := "span"
	if variant == Corporate {
		titleTag = "h4"
		// 企业模板的教育经历在侧栏中，日期换行显示。
		if kind == KindEducation {
			head.AddClass("rp-entry-head--stacked")
		}
	}
	head.Append(view.El(titleTag, view.Text(e.title)).AddClass("rp-entry-title"))
	if e.dateRange != "" {
		head.Append(view.El("span", view.Text(e.dateRange)).AddClass("rp-date"))
	}

	n.Append(head, view.El("p", view.Text(e.subtitle)).AddClass("rp-entry-subtitle"))
	if e.description != "" {
		n.Append(view.El("div", view.Text(e.description)).AddClass("rp-entry-body"))
	}
	return n
}

// Skills 渲染技能；列表为空时返回 nil。极简模板输出以 " • " 连接的纯文本，
// 其余模板输出标签，底色为强调色，圆角由 BorderStyle 决定。
func Skills(ctx Context) *view.Node {
	skills := make([]string, 0, len(ctx.Record.Skills))
	for _, s := range ctx.Record.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	if len(skills) == 0 {
		return nil
	}

	root := section(KindSkills)
	switch ctx.Variant {
	case Minimal:
		return root.AddClass("rp-section--minimal").Append(
			view.El("h3", view.Text("Skills")).AddClass("rp-heading-light"),
			view.El("div", view.Text(strings.Join(skills, contactSeparator))).AddClass("rp-text"),
		)
	case Corporate:
		root.AddClass("rp-section--corporate")
		return root.Append(view.El("div",
			corporateHeading("Skills", false),
			badges(ctx, skills, "rp-badge--small"),
		).AddClass("rp-stack"))
	default:
		return root.Append(
			divider(ctx.Style.ColorHex),
			avoidBreak(view.El("div",
				accentHeading("Skills", ctx.Style.ColorHex),
				badges(ctx, skills, ""),
			).AddClass("rp-stack")),
		)
	}
}

func badges(ctx Context, skills []string, extraClass string) *view.Node {
	wrap := avoidBreak(view.El("div").AddClass("rp-badges"))
	radius := ctx.Style.Border.BadgeRadius()
	for _, s := range skills {
		wrap.Append(view.El("span", view.Text(s)).
			AddClass("rp-badge", extraClass).
			SetStyle("background-color", ctx.Style.ColorHex).
			SetStyle("border-radius", radius))
	}
	return wrap
}
