package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldSlug 链接 slug 字段
	FieldSlug = "slug"

	// FieldAnswer 回答字段
	FieldAnswer = "answer"

	// FieldAttempt 创建重试次数字段
	FieldAttempt = "attempt"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldViewCount 浏览次数字段
	FieldViewCount = "viewCount"
)
