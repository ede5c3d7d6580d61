package sections

import (
	"strings"
	"time"
)

// PresentLabel 用于未填写结束日期的经历。
const PresentLabel = "Present"

// monthLayout 对应 MM/yyyy。
const monthLayout = "01/2006"

// 编辑器可能提交完整日期、月份或带时区的时间戳。
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// FormatMonth 将日期格式化为 MM/yyyy，无法解析时返回 false。
// 不做时区换算，按字符串本身的日历日期取月份。
func FormatMonth(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(monthLayout), true
		}
	}
	return "", false
}

// DateRange 生成 "MM/yyyy - MM/yyyy" 或 "MM/yyyy - Present"。
// 起始日期为空或非法时返回空串（整个日期区间不渲染）；结束日期非法视为空。
func DateRange(start, end string) string {
	from, ok := FormatMonth(start)
	if !ok {
		return ""
	}
	to, ok := FormatMonth(end)
	if !ok {
		to = PresentLabel
	}
	return from + " - " + to
}
