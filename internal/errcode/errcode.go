package errcode

// 错误码约定：
// - 0：无错误
// - 4xxx：可恢复/告警类错误（例如照片缺失但导出继续）
// - 5xxx：系统错误（需要中断流程）
const (
	OK              = 0
	ResourceMissing = 4004
	SystemError     = 5000
)

// Message 返回推送给前端的默认说明。
func Message(code int) string {
	switch code {
	case OK:
		return ""
	case ResourceMissing:
		return "photo could not be loaded, exported without it"
	default:
		return "export failed"
	}
}
