package sections

import (
	"strconv"
	"strings"

	"resumePreview/internal/resume"
	"resumePreview/internal/view"
)

const (
	localitySeparator = ", "
	contactSeparator  = " • "
)

// headerLook 是头部各变体的呈现差异，数据绑定在所有变体间保持一致。
type headerLook struct {
	class       string
	nameTag     string
	jobTitleTag string
	showPhoto   bool
	photoSize   int
	photoClass  string
	// photoRadius 为空时按记录的 BorderStyle 计算。
	photoRadius string
	photoFirst  bool
	// splitName 时姓氏单独包一层，供衬线模板调整字重。
	splitName bool
	// keepEmptyJobTitle 为 true 时即使职位为空也保留占位行。
	keepEmptyJobTitle bool
	localityClass     string
	backdrop          bool
}

var headerLooks = map[Variant]headerLook{
	Standard: {
		class: "rp-header rp-header--standard", nameTag: "p", jobTitleTag: "p",
		showPhoto: true, photoSize: 100, photoClass: "rp-photo", photoFirst: true,
		keepEmptyJobTitle: true, localityClass: "rp-locality rp-locality--xs",
	},
	Classic: {
		class: "rp-header rp-header--classic", nameTag: "h1", jobTitleTag: "p",
		localityClass: "rp-locality",
	},
	Minimal: {
		class: "rp-header rp-header--minimal", nameTag: "h1", jobTitleTag: "p",
		localityClass: "rp-locality rp-locality--xs",
	},
	Creative: {
		class: "rp-header rp-header--creative", nameTag: "h1", jobTitleTag: "p",
		showPhoto: true, photoSize: 120, photoClass: "rp-photo rp-photo--shadow",
		photoRadius: "1rem", photoFirst: true, localityClass: "rp-locality", backdrop: true,
	},
	Corporate: {
		class: "rp-header rp-header--corporate", nameTag: "h1", jobTitleTag: "p",
		localityClass: "rp-locality rp-locality--inverted",
	},
	Elegant: {
		class: "rp-header rp-header--elegant", nameTag: "h1", jobTitleTag: "p",
		showPhoto: true, photoSize: 80, photoClass: "rp-photo", photoRadius: "9999px",
		splitName: true, localityClass: "rp-locality",
	},
}

func lookFor(v Variant) headerLook {
	if look, ok := headerLooks[v]; ok {
		return look
	}
	return headerLooks[Standard]
}

// HeaderShowsPhoto 表示该变体是否展示头像，决定是否需要为其挂载照片解析器。
func HeaderShowsPhoto(v Variant) bool {
	return lookFor(v).showPhoto
}

// LocalityLine 构造联系信息行：
// city 与 country 同时存在时以 ", " 连接；phone/email 以 " • " 连接；
// 两部分都存在时中间再加一个 " • "。
func LocalityLine(r *resume.Record) string {
	var locality []string
	for _, s := range []string{r.City, r.Country} {
		if s = strings.TrimSpace(s); s != "" {
			locality = append(locality, s)
		}
	}
	var contact []string
	for _, s := range []string{r.Phone, r.Email} {
		if s = strings.TrimSpace(s); s != "" {
			contact = append(contact, s)
		}
	}

	line := strings.Join(locality, localitySeparator)
	if len(locality) > 0 && len(contact) > 0 {
		line += contactSeparator
	}
	return line + strings.Join(contact, contactSeparator)
}

// FullName 以空格连接名与姓。
func FullName(r *resume.Record) string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

// Header 渲染个人信息头部，姓名、职位、联系信息与照片全部缺失时返回 nil。
func Header(ctx Context) *view.Node {
	r := ctx.Record
	look := lookFor(ctx.Variant)

	name := FullName(r)
	jobTitle := strings.TrimSpace(r.JobTitle)
	locality := LocalityLine(r)
	photoSrc := ""
	if look.showPhoto {
		photoSrc = strings.TrimSpace(ctx.PhotoSrc)
	}
	if name == "" && jobTitle == "" && locality == "" && photoSrc == "" {
		return nil
	}

	root := view.El("header").AddClass(strings.Fields(look.class)...).Section(KindHeader)
	if look.backdrop {
		root.Append(view.El("div").AddClass("rp-header-backdrop"))
	}

	text := view.El("div").AddClass("rp-header-text")
	text.Append(nameNode(r, look, ctx.Style.ColorHex))
	if jobTitle != "" || look.keepEmptyJobTitle {
		text.Append(view.El(look.jobTitleTag, view.Text(jobTitle)).
			AddClass("rp-job-title").
			SetStyle("color", ctx.Style.ColorHex))
	}
	text.Append(view.El("p", view.Text(locality)).AddClass(strings.Fields(look.localityClass)...))

	var photo *view.Node
	if photoSrc != "" {
		radius := look.photoRadius
		if radius == "" {
			radius = ctx.Style.Border.PhotoRadius()
		}
		photo = view.El("img").
			AddClass(strings.Fields(look.photoClass)...).
			SetAttr("src", photoSrc).
			SetAttr("alt", "Author photo").
			SetAttr("width", strconv.Itoa(look.photoSize)).
			SetAttr("height", strconv.Itoa(look.photoSize)).
			SetStyle("border-radius", radius)
	}

	row := view.El("div").AddClass("rp-header-row")
	if look.photoFirst {
		row.Append(photo, text)
	} else {
		row.Append(text, photo)
	}
	return root.Append(row)
}

func nameNode(r *resume.Record, look headerLook, color string) *view.Node {
	n := view.El(look.nameTag).AddClass("rp-name").SetStyle("color", color)
	if !look.splitName {
		return n.Append(view.Text(FullName(r)))
	}
	first := strings.TrimSpace(r.FirstName)
	last := strings.TrimSpace(r.LastName)
	if first != "" {
		n.Append(view.Text(first))
	}
	if first != "" && last != "" {
		n.Append(view.Text(" "))
	}
	if last != "" {
		n.Append(view.El("span", view.Text(last)).AddClass("rp-name-last"))
	}
	return n
}
