package response

// 业务错误码
// 客户端依赖 code 区分错误类别，message 仅用于展示
const (
	// 失败
	Fail ResponseCode = 0
	// 参数解析错误
	ParseError ResponseCode = 1
	// 参数错误（内容为空、超长等本地校验失败）
	InvalidParameter ResponseCode = 2
	// 未认证
	Unauthorized ResponseCode = 3
	// 无权限
	Forbidden ResponseCode = 4
	// 资源不存在
	NotFound ResponseCode = 5
	// 状态/策略限制（会话已结束、提问已关闭、非法状态流转）
	PolicyViolation ResponseCode = 6
	// 触发限流
	RateLimited ResponseCode = 7
	// 基础设施错误（数据库/Redis 不可用），可重试，与校验失败必须区分
	Infrastructure ResponseCode = 8
)

type BusinessError struct {
	Code ResponseCode
	Msg  string
	Err  error
}

// Error 实现 error 接口
func (be *BusinessError) Error() string {
	return be.Msg
}

// Unwrap 返回底层错误
func (be *BusinessError) Unwrap() error {
	return be.Err
}

type ErrorOption func(*BusinessError)

func WithErrorCode(code ResponseCode) ErrorOption {
	return func(be *BusinessError) {
		be.Code = code
	}
}

func WithErrorMessage(msg string) ErrorOption {
	return func(be *BusinessError) {
		be.Msg = msg
	}
}

func WithError(err error) ErrorOption {
	return func(be *BusinessError) {
		be.Err = err
	}
}

func NewBusinessError(opts ...ErrorOption) *BusinessError {
	err := &BusinessError{
		Code: Fail,
		Msg:  "business error",
		Err:  nil,
	}
	for _, opt := range opts {
		opt(err)
	}
	return err
}
