// file: services/errors.go
package services

import (
	"errors"
	"fmt"
)

// 计分 / 提示购买的业务错误种类。
// 控制器通过 errors.Is / errors.As 识别后映射到响应码，
// 不在列的意外错误一律记录日志并对外返回通用的内部错误
var (
	ErrEventNotActive     = errors.New("比赛当前不在进行中")
	ErrAlreadySolved      = errors.New("你所在的队伍已解出此题")
	ErrIncorrectFlag      = errors.New("Flag 错误")
	ErrNotFound           = errors.New("题目不存在或不可见")
	ErrNoTeam             = errors.New("你尚未加入队伍")
	ErrInsufficientPoints = errors.New("队伍积分不足")
)

// RateLimitedError 提交过于频繁，RetryAfter 为建议等待秒数
type RateLimitedError struct {
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("提交太频繁，请 %d 秒后再试", e.RetryAfter)
}
