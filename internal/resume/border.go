package resume

import "strings"

// BorderStyle 控制照片与技能标签的圆角策略。
type BorderStyle string

const (
	BorderSquare   BorderStyle = "square"
	BorderCircle   BorderStyle = "circle"
	BorderSquircle BorderStyle = "squircle"
)

// Normalize 将未知或空值归一为默认的 squircle。
func (b BorderStyle) Normalize() BorderStyle {
	switch BorderStyle(strings.ToLower(strings.TrimSpace(string(b)))) {
	case BorderSquare:
		return BorderSquare
	case BorderCircle:
		return BorderCircle
	default:
		return BorderSquircle
	}
}

// BadgeRadius 返回技能标签的圆角。
func (b BorderStyle) BadgeRadius() string {
	switch b.Normalize() {
	case BorderSquare:
		return "0px"
	case BorderCircle:
		return "9999px"
	default:
		return "8px"
	}
}

// PhotoRadius 返回头像的圆角。
func (b BorderStyle) PhotoRadius() string {
	switch b.Normalize() {
	case BorderSquare:
		return "0px"
	case BorderCircle:
		return "9999px"
	default:
		return "10%"
	}
}
