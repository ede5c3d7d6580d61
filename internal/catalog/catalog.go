// Package catalog 是模板的静态注册表，进程启动时确定，之后只读。
package catalog

// DefaultID 是未指定或未知模板时的唯一兜底，画布与目录都以它为准。
const DefaultID = "modern"

const (
	Modern    = "modern"
	Classic   = "classic"
	Minimal   = "minimal"
	Creative  = "creative"
	Corporate = "corporate"
	Elegant   = "elegant"
)

// Descriptor 描述一个可选模板。
type Descriptor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// PreviewColor 是模板展示页示例数据使用的强调色。
	PreviewColor string `json:"preview_color"`
}

var descriptors = [...]Descriptor{
	{
		ID:           Modern,
		Name:         "Modern",
		Description:  "Clean single-column layout with photo and accent dividers",
		PreviewColor: "#3b82f6",
	},
	{
		ID:           Classic,
		Name:         "Classic",
		Description:  "Traditional layout with a centered, uppercase header",
		PreviewColor: "#059669",
	},
	{
		ID:           Minimal,
		Name:         "Minimal",
		Description:  "Light typography, generous spacing and plain-text skills",
		PreviewColor: "#1f2937",
	},
	{
		ID:           Creative,
		Name:         "Creative",
		Description:  "Two-column grid over a soft gradient background",
		PreviewColor: "#7c3aed",
	},
	{
		ID:           Corporate,
		Name:         "Corporate",
		Description:  "Dark header band with a two-column body",
		PreviewColor: "#dc2626",
	},
	{
		ID:           Elegant,
		Name:         "Elegant",
		Description:  "Serif typography with an education and skills sidebar",
		PreviewColor: "#92400e",
	},
}

// All 按固定顺序返回全部模板，返回值为副本。
func All() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors[:])
	return out
}

// Lookup 精确匹配模板 ID。
func Lookup(id string) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ByID 精确匹配模板 ID，找不到时返回默认模板，永不失败。
func ByID(id string) Descriptor {
	if d, ok := Lookup(id); ok {
		return d
	}
	d, _ := Lookup(DefaultID)
	return d
}

// Resolve 返回兜底后的模板 ID。
func Resolve(id string) string {
	return ByID(id).ID
}
