package resume

import "strings"

// Record 是编辑端提交的完整简历数据，渲染层只读不写。
// 字段命名与编辑器表单保持一致（camelCase）。
type Record struct {
	TemplateID      string           `json:"templateId,omitempty"`
	Title           string           `json:"title,omitempty"`
	FirstName       string           `json:"firstName,omitempty"`
	LastName        string           `json:"lastName,omitempty"`
	JobTitle        string           `json:"jobTitle,omitempty"`
	City            string           `json:"city,omitempty"`
	Country         string           `json:"country,omitempty"`
	Phone           string           `json:"phone,omitempty"`
	Email           string           `json:"email,omitempty"`
	Photo           Photo            `json:"photo"`
	Summary         string           `json:"summary,omitempty"`
	WorkExperiences []WorkExperience `json:"workExperiences,omitempty"`
	Educations      []Education      `json:"educations,omitempty"`
	Skills          []string         `json:"skills,omitempty"`
	ColorHex        string           `json:"colorHex,omitempty"`
	BorderStyle     BorderStyle      `json:"borderStyle,omitempty"`
}

// WorkExperience 表示一段工作经历，所有字段均可为空。
type WorkExperience struct {
	Position    string `json:"position,omitempty"`
	Company     string `json:"company,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Description string `json:"description,omitempty"`
}

// Present 至少有一个字段非空时返回 true。
func (w WorkExperience) Present() bool {
	return anyNonBlank(w.Position, w.Company, w.StartDate, w.EndDate, w.Description)
}

// Education 表示一段教育经历。
type Education struct {
	Degree    string `json:"degree,omitempty"`
	School    string `json:"school,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// Present 至少有一个字段非空时返回 true。
func (e Education) Present() bool {
	return anyNonBlank(e.Degree, e.School, e.StartDate, e.EndDate)
}

// PresentWorkExperiences 过滤掉全空条目，保持原有顺序。
func (r *Record) PresentWorkExperiences() []WorkExperience {
	out := make([]WorkExperience, 0, len(r.WorkExperiences))
	for _, w := range r.WorkExperiences {
		if w.Present() {
			out = append(out, w)
		}
	}
	return out
}

// PresentEducations 过滤掉全空条目，保持原有顺序。
func (r *Record) PresentEducations() []Education {
	out := make([]Education, 0, len(r.Educations))
	for _, e := range r.Educations {
		if e.Present() {
			out = append(out, e)
		}
	}
	return out
}

// WithTemplate 返回替换了 TemplateID 的副本，原记录保持不变。
func (r Record) WithTemplate(templateID string) Record {
	r.TemplateID = templateID
	return r
}

// WithPhoto 返回替换了照片的副本。
func (r Record) WithPhoto(p Photo) Record {
	r.Photo = p
	return r
}

// Blank 判断字符串去除空白后是否为空。
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func anyNonBlank(values ...string) bool {
	for _, v := range values {
		if !Blank(v) {
			return true
		}
	}
	return false
}
