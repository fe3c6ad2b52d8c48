// file: controllers/setup.go
package controllers

import (
	"errors"
	"log"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/cache"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/services"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/utils"
	"github.com/gin-gonic/gin"
)

// 控制器层只做参数绑定和响应映射，核心逻辑都在 services 里。
// 具体实例在 main 中组装后经 Setup 注入
var (
	scoringSvc     *services.ScoringService
	hintSvc        *services.HintService
	boardSvc       *services.ScoreboardService
	configProvider *services.DBConfigProvider
	cacheStore     cache.Store
	notifier       services.Notifier
)

func Setup(
	scoring *services.ScoringService,
	hint *services.HintService,
	board *services.ScoreboardService,
	cfg *services.DBConfigProvider,
	c cache.Store,
	n services.Notifier,
) {
	scoringSvc = scoring
	hintSvc = hint
	boardSvc = board
	configProvider = cfg
	cacheStore = c
	notifier = n
}

// respondServiceError 将业务错误种类映射到响应码。
// 不在清单里的错误一律按内部错误处理：记日志，不向客户端泄露细节
func respondServiceError(c *gin.Context, err error) {
	var rateLimited *services.RateLimitedError
	switch {
	case errors.Is(err, services.ErrEventNotActive):
		utils.Error(c, 6001, err.Error())
	case errors.As(err, &rateLimited):
		utils.ErrorData(c, 6002, err.Error(), gin.H{"retry_after": rateLimited.RetryAfter})
	case errors.Is(err, services.ErrAlreadySolved):
		// 专用响应码：已解出是幂等空操作，客户端不应当作失败渲染
		utils.Error(c, 6003, err.Error())
	case errors.Is(err, services.ErrIncorrectFlag):
		utils.Error(c, 6004, err.Error())
	case errors.Is(err, services.ErrInsufficientPoints):
		utils.Error(c, 6005, err.Error())
	case errors.Is(err, services.ErrNoTeam):
		utils.Error(c, 3005, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.Error(c, 4004, err.Error())
	default:
		log.Printf("internal error: %v", err)
		utils.Error(c, 5000, "服务器内部错误")
	}
}
