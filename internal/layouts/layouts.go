// Package layouts 把各区块组合成六种模板的空间结构。
// 模板 ID 是唯一的选择依据，每个 ID 恰好对应一个布局。
package layouts

import (
	"resumePreview/internal/catalog"
	"resumePreview/internal/sections"
	"resumePreview/internal/view"
)

// Layout 是一个固定的区块组合。
type Layout struct {
	ID      string
	Variant sections.Variant
	order   []string
	compose func(ctx sections.Context) *view.Node
}

// Sections 返回该布局在文档中的区块顺序。
func (l Layout) Sections() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// ShowsPhoto 表示该布局的头部是否展示照片。
func (l Layout) ShowsPhoto() bool {
	return sections.HeaderShowsPhoto(l.Variant)
}

// Render 以布局自身的变体渲染记录。
func (l Layout) Render(ctx sections.Context) *view.Node {
	ctx.Variant = l.Variant
	return l.compose(ctx).
		AddClass("rp-layout", "rp-layout--"+l.ID).
		SetAttr("data-template", l.ID)
}

var linearOrder = []string{
	sections.KindHeader,
	sections.KindSummary,
	sections.KindExperience,
	sections.KindEducation,
	sections.KindSkills,
}

var registry = map[string]Layout{
	catalog.Modern: {
		ID: catalog.Modern, Variant: sections.Standard, order: linearOrder,
		compose: func(ctx sections.Context) *view.Node {
			return view.El("div",
				sections.Header(ctx),
				sections.Summary(ctx),
				sections.WorkExperience(ctx),
				sections.Education(ctx),
				sections.Skills(ctx),
			).AddClass("rp-stack", "rp-stack--lg")
		},
	},
	catalog.Classic: {
		ID: catalog.Classic, Variant: sections.Classic, order: linearOrder,
		compose: func(ctx sections.Context) *view.Node {
			return view.El("div",
				wrap("rp-header-wrap", sections.Header(ctx)),
				sections.Summary(ctx),
				sections.WorkExperience(ctx),
				sections.Education(ctx),
				sections.Skills(ctx),
			).AddClass("rp-stack", "rp-stack--md")
		},
	},
	catalog.Minimal: {
		ID: catalog.Minimal, Variant: sections.Minimal, order: linearOrder,
		compose: func(ctx sections.Context) *view.Node {
			return view.El("div",
				sections.Header(ctx),
				view.El("div",
					sections.Summary(ctx),
					sections.WorkExperience(ctx),
					sections.Education(ctx),
					sections.Skills(ctx),
				).AddClass("rp-stack", "rp-stack--lg"),
			).AddClass("rp-stack", "rp-stack--xl")
		},
	},
	catalog.Creative: {
		ID: catalog.Creative, Variant: sections.Creative, order: linearOrder,
		compose: func(ctx sections.Context) *view.Node {
			return view.El("div",
				view.El("div",
					sections.Header(ctx),
					view.El("div",
						view.El("div", sections.Summary(ctx), sections.WorkExperience(ctx)).
							AddClass("rp-col-span-2", "rp-stack", "rp-stack--md"),
						view.El("div", sections.Education(ctx), sections.Skills(ctx)).
							AddClass("rp-stack", "rp-stack--md"),
					).AddClass("rp-grid", "rp-grid--3"),
				).AddClass("rp-stack", "rp-stack--lg"),
			).AddClass("rp-bleed", "rp-gradient")
		},
	},
	catalog.Corporate: {
		ID: catalog.Corporate, Variant: sections.Corporate, order: linearOrder,
		compose: func(ctx sections.Context) *view.Node {
			return view.El("div",
				wrap("rp-band", sections.Header(ctx)),
				view.El("div",
					sections.Summary(ctx),
					view.El("div",
						view.El("div", sections.WorkExperience(ctx)).AddClass("rp-col-span-2"),
						view.El("div", sections.Education(ctx), sections.Skills(ctx)).
							AddClass("rp-stack", "rp-stack--lg"),
					).AddClass("rp-grid", "rp-grid--3", "rp-grid--wide"),
				).AddClass("rp-stack", "rp-stack--lg"),
			).AddClass("rp-stack", "rp-stack--lg")
		},
	},
	catalog.Elegant: {
		ID: catalog.Elegant, Variant: sections.Elegant,
		order: []string{
			sections.KindHeader,
			sections.KindEducation,
			sections.KindSkills,
			sections.KindSummary,
			sections.KindExperience,
		},
		compose: func(ctx sections.Context) *view.Node {
			return view.El("div",
				sections.Header(ctx),
				view.El("div",
					view.El("div", sections.Education(ctx), sections.Skills(ctx)).
						AddClass("rp-sidebar", "rp-stack", "rp-stack--md"),
					view.El("div", sections.Summary(ctx), sections.WorkExperience(ctx)).
						AddClass("rp-col-span-3", "rp-stack", "rp-stack--md"),
				).AddClass("rp-grid", "rp-grid--4"),
			).AddClass("rp-stack", "rp-stack--lg", "rp-serif")
		},
	},
}

// Resolve 返回模板 ID 对应的布局，未知或空 ID 与目录一样回落到默认模板。
func Resolve(templateID string) Layout {
	return registry[catalog.Resolve(templateID)]
}

// All 按目录顺序返回全部布局。
func All() []Layout {
	descs := catalog.All()
	out := make([]Layout, 0, len(descs))
	for _, d := range descs {
		out = append(out, registry[d.ID])
	}
	return out
}

func wrap(class string, child *view.Node) *view.Node {
	if child == nil {
		return nil
	}
	return view.El("div", child).AddClass(class)
}
