package code

import (
	"fmt"
	"net/http"
)

// Code is a registered response code carrying status, message and optional data
// Code 表示注册过的响应码，携带状态、消息和可选数据
type Code struct {
	// 状态码
	code int
	// 状态
	status bool
	// HTTP 状态码
	statusCode int
	// 错误消息
	Lang lang
	// 数据
	data interface{}
	// 是否含有Data
	haveData bool
	// 错误详细信息
	details []string
	// 是否含有详情
	haveDetails bool
}

var codes = map[int]string{}

// NewError registers an error code, panics on duplicates
// NewError 注册一个错误码，重复时 panic
func NewError(code int, statusCode int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.GetMessage()

	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}

	return &Code{code: code, status: false, statusCode: statusCode, Lang: l}
}

var sussCodes = map[int]string{}

// NewSuss registers a success code
// NewSuss 注册一个成功码
func NewSuss(code int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	sussCodes[code] = l.GetMessage()

	return &Code{code: code, status: true, statusCode: http.StatusOK, Lang: l}
}

// Clone creates a copy so WithData/WithDetails never mutate the registered code
// Clone 创建副本，保证 WithData/WithDetails 不会修改注册的原始对象
func (e *Code) Clone() *Code {
	c := &Code{
		code:       e.code,
		status:     e.status,
		statusCode: e.statusCode,
		Lang:       e.Lang,
		data:       e.data,
		haveData:   e.haveData,
	}
	if e.haveDetails {
		c.haveDetails = true
		c.details = append(c.details, e.details...)
	}
	return c
}

func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.haveData = true
	c.data = data
	return c
}

func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.haveDetails = true
	c.details = append(c.details, details...)
	return c
}

// StatusCode returns the HTTP status this code maps to
// StatusCode 返回该响应码对应的 HTTP 状态码
func (e *Code) StatusCode() int {
	if e.statusCode == 0 {
		return http.StatusOK
	}
	return e.statusCode
}
