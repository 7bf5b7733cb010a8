package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 账号 ID 字段（请求者）
	FieldUID = "uid"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldNoteID 笔记 ID 字段
	FieldNoteID = "noteId"

	// FieldAuthorID 作者 ID 字段
	FieldAuthorID = "authorId"

	// FieldListID 列表 ID 字段
	FieldListID = "listId"

	// FieldTimeline 时间线键字段
	FieldTimeline = "timeline"

	// FieldVisibility 可见性字段
	FieldVisibility = "visibility"

	// FieldRecipients 接收者数量字段
	FieldRecipients = "recipients"

	// FieldSource 读取来源字段（cache / store）
	FieldSource = "source"
)
