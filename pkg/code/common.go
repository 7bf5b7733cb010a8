package code

// 成功码
var (
	Success       = NewSuss(200, lang{en: "Success", zh_cn: "成功"})
	SuccessCreate = NewSuss(201, lang{en: "Created successfully", zh_cn: "创建成功"})
	SuccessUpdate = NewSuss(202, lang{en: "Updated successfully", zh_cn: "更新成功"})
	SuccessDelete = NewSuss(203, lang{en: "Deleted successfully", zh_cn: "删除成功"})
)

// 通用错误码
var (
	Failed               = NewError(300, KindUpstreamFailure, lang{en: "Operation failed", zh_cn: "操作失败"})
	ErrorServerInternal  = NewError(500, KindUpstreamFailure, lang{en: "Internal server error", zh_cn: "服务器内部错误"})
	ErrorNotFound        = NewError(404, KindNotFound, lang{en: "Resource not found", zh_cn: "资源不存在"})
	ErrorInvalidParams   = NewError(400, KindInvalidArgument, lang{en: "Invalid parameters", zh_cn: "参数错误"})
	ErrorTooManyRequests = NewError(429, KindUpstreamFailure, lang{en: "Too many requests", zh_cn: "请求过多"})
	ErrorDBQuery         = NewError(501, KindUpstreamFailure, lang{en: "Database query failed", zh_cn: "数据库查询失败"})
	ErrorCacheAccess     = NewError(502, KindUpstreamFailure, lang{en: "Timeline cache access failed", zh_cn: "时间线缓存访问失败"})
	ErrorWorkerPoolFull  = NewError(503, KindUpstreamFailure, lang{en: "Server busy, try again later", zh_cn: "服务繁忙，请稍后重试"})
)

// 认证错误码
var (
	ErrorNotUserAuthToken      = NewError(1001, KindUnauthorized, lang{en: "Authorization token required", zh_cn: "缺少授权 Token"})
	ErrorInvalidUserAuthToken  = NewError(1002, KindUnauthorized, lang{en: "Invalid authorization token", zh_cn: "授权 Token 无效"})
	ErrorUnauthorized          = NewError(1003, KindUnauthorized, lang{en: "Not allowed", zh_cn: "无权访问"})
	ErrorTokenGenerationFailed = NewError(1004, KindUpstreamFailure, lang{en: "Token generation failed", zh_cn: "Token 生成失败"})
)

// 标识生成错误码
var (
	ErrorIDExhausted = NewError(2001, KindExhausted, lang{en: "Identifier sequence exhausted, retry shortly", zh_cn: "标识序列已耗尽，请稍后重试"})
	ErrorIDGenerate  = NewError(2002, KindUpstreamFailure, lang{en: "Identifier generation failed", zh_cn: "标识生成失败"})
)

// 笔记错误码
var (
	ErrorNoteNotFound           = NewError(3001, KindNotFound, lang{en: "Note not found", zh_cn: "笔记不存在"})
	ErrorNoteNotVisible         = NewError(3002, KindUnauthorized, lang{en: "Note is not visible to you", zh_cn: "无权查看该笔记"})
	ErrorNoteVisibilityInvalid  = NewError(3003, KindInvalidArgument, lang{en: "Invalid visibility", zh_cn: "可见性无效"})
	ErrorNoteDirectNeedsSendTo  = NewError(3004, KindInvalidArgument, lang{en: "Direct note requires a recipient", zh_cn: "私信笔记必须指定接收者"})
	ErrorNoteSendToNotAllowed   = NewError(3005, KindInvalidArgument, lang{en: "Recipient only allowed for direct notes", zh_cn: "仅私信笔记可指定接收者"})
	ErrorNoteContentTooLong     = NewError(3006, KindInvalidArgument, lang{en: "Note content is too long", zh_cn: "笔记内容过长"})
	ErrorNoteContentEmpty       = NewError(3007, KindInvalidArgument, lang{en: "Note content is empty", zh_cn: "笔记内容为空"})
	ErrorNoteCreateFailed       = NewError(3008, KindUpstreamFailure, lang{en: "Note creation failed", zh_cn: "笔记创建失败"})
	ErrorNoteDeleteFailed       = NewError(3009, KindUpstreamFailure, lang{en: "Note deletion failed", zh_cn: "笔记删除失败"})
	ErrorNoteNotAuthor          = NewError(3010, KindUnauthorized, lang{en: "Only the author can do this", zh_cn: "仅作者可执行此操作"})
	ErrorRenoteTargetInvalid    = NewError(3011, KindInvalidArgument, lang{en: "Renote target is invalid", zh_cn: "转发目标无效"})
	ErrorFanoutDirectRejected   = NewError(3101, KindInvalidArgument, lang{en: "Direct notes are never pushed to home timelines", zh_cn: "私信笔记不会推送到首页时间线"})
	ErrorFanoutFollowerLookup   = NewError(3102, KindUpstreamFailure, lang{en: "Follower lookup failed", zh_cn: "粉丝查询失败"})
	ErrorFanoutWriteFailed      = NewError(3103, KindUpstreamFailure, lang{en: "Timeline write failed", zh_cn: "时间线写入失败"})
	ErrorConversationWrite      = NewError(3104, KindUpstreamFailure, lang{en: "Conversation write failed", zh_cn: "会话记录写入失败"})
)

// 列表错误码
var (
	ErrorListNotFound       = NewError(4001, KindNotFound, lang{en: "List not found", zh_cn: "列表不存在"})
	ErrorListNotOwner       = NewError(4002, KindUnauthorized, lang{en: "Only the list owner can do this", zh_cn: "仅列表所有者可执行此操作"})
	ErrorListPrivate        = NewError(4003, KindUnauthorized, lang{en: "List is private", zh_cn: "列表为私有"})
	ErrorListTitleInvalid   = NewError(4004, KindInvalidArgument, lang{en: "List title is empty or too long", zh_cn: "列表标题为空或过长"})
	ErrorListPublicityBad   = NewError(4005, KindInvalidArgument, lang{en: "Invalid list publicity", zh_cn: "列表公开性无效"})
	ErrorListMembersFull    = NewError(4006, KindInvalidArgument, lang{en: "List member limit reached", zh_cn: "列表成员已达上限"})
	ErrorListNothingToEdit  = NewError(4007, KindInvalidArgument, lang{en: "Nothing to update", zh_cn: "没有需要更新的字段"})
	ErrorListWriteFailed    = NewError(4008, KindUpstreamFailure, lang{en: "List update failed", zh_cn: "列表更新失败"})
	ErrorListWriteQueueBusy = NewError(4009, KindUpstreamFailure, lang{en: "List is busy, try again later", zh_cn: "列表繁忙，请稍后重试"})
)

// 关注与收藏错误码
var (
	ErrorFollowSelf        = NewError(5001, KindInvalidArgument, lang{en: "Cannot follow yourself", zh_cn: "不能关注自己"})
	ErrorBookmarkNotFound  = NewError(5101, KindNotFound, lang{en: "Bookmark not found", zh_cn: "收藏不存在"})
	ErrorBookmarkDuplicate = NewError(5102, KindInvalidArgument, lang{en: "Already bookmarked", zh_cn: "已收藏"})
)
