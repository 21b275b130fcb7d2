package code

import "net/http"

// 通用响应码
var (
	Success = NewSuss(0, lang{
		en:    "Success",
		zh_cn: "成功",
	})
	Failed = NewError(1, http.StatusInternalServerError, lang{
		en:    "Failed",
		zh_cn: "失败",
	})
	ErrorInvalidParams = NewError(10001, http.StatusBadRequest, lang{
		en:    "Invalid request parameters",
		zh_cn: "请求参数错误",
	})
	ErrorNotFoundAPI = NewError(10002, http.StatusNotFound, lang{
		en:    "API not found",
		zh_cn: "接口不存在",
	})
	ErrorServerInternal = NewError(10003, http.StatusInternalServerError, lang{
		en:    "Internal server error",
		zh_cn: "服务内部错误",
	})
	ErrorTooManyRequests = NewError(10004, http.StatusTooManyRequests, lang{
		en:    "Too many requests",
		zh_cn: "请求过多",
	})
)

// 链接业务响应码
var (
	ErrorLinkNotFound = NewError(20001, http.StatusNotFound, lang{
		en:    "Link not found",
		zh_cn: "链接不存在",
	})
	// ErrorLinkAnswered is a defined outcome rather than a failure: the response
	// carries the answer already on record so retrying clients converge on it
	// ErrorLinkAnswered 是既定结果而不是失败：响应携带已记录的回答，
	// 重试的客户端以此为准
	ErrorLinkAnswered = NewError(20002, http.StatusConflict, lang{
		en:    "Link already answered",
		zh_cn: "链接已被回答",
	})
	ErrorInvalidAnswer = NewError(20003, http.StatusBadRequest, lang{
		en:    "Answer must be accepted or rejected",
		zh_cn: "回答必须是 accepted 或 rejected",
	})
	ErrorSlugExhausted = NewError(20004, http.StatusInternalServerError, lang{
		en:    "Failed to generate a unique link",
		zh_cn: "生成唯一链接失败",
	})
	ErrorDatabase = NewError(20005, http.StatusInternalServerError, lang{
		en:    "Database operation failed",
		zh_cn: "数据库操作失败",
	})
)
