package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 用户模块错误 100xx
	ErrUserExists   = 10001
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005
	ErrOTPInvalid   = 10006

	// 课程目录错误 200xx
	ErrCourseNotFound     = 20001
	ErrChapterNotFound    = 20002
	ErrMembershipNotFound = 20003
	ErrSlugExists         = 20004

	// 订单模块错误 300xx
	ErrOrderNotFound     = 30001
	ErrOrderState        = 30002
	ErrDuplicatePurchase = 30003
	ErrProductInvalid    = 30004

	// 授权模块错误 400xx
	ErrNoAccess = 40001

	// 系统错误 500xx
	ErrServerInternal     = 50001
	ErrInvalidParam       = 50002
	ErrTooManyRequests    = 50003
	ErrServiceUnavailable = 50004
)
