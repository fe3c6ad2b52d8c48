// file: controllers/config_controller.go
package controllers

import (
	"github.com/CCEE-SRM/ctf-dashboard-sub000/database"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/services"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

// GetEventStatus 查询比赛状态（选手可见的公开信息）
func GetEventStatus(c *gin.Context) {
	cfg, err := configProvider.Get()
	if err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}

	utils.Success(c, "success", gin.H{
		"event_state":     cfg.EventState,
		"dynamic_scoring": cfg.DynamicScoring,
	})
}

// --- 管理员接口 ---

// GetEventConfig 查询完整配置（含限流参数）
func GetEventConfig(c *gin.Context) {
	cfg, err := configProvider.Get()
	if err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}
	utils.Success(c, "success", cfg)
}

// UpdateEventConfig 创建或修改全局配置（固定 ID=1 的单例行）。
// 修改对之后的每次提交生效，不与进行中的计分事务耦合
func UpdateEventConfig(c *gin.Context) {
	var req models.EventConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	switch req.EventState {
	case models.EventRunning, models.EventPaused, models.EventStopped:
	default:
		utils.Error(c, 1001, "event_state 取值无效（running/paused/stopped）")
		return
	}
	if req.MaxAttempts <= 0 || req.WindowSeconds <= 0 || req.CooldownSeconds < 0 {
		utils.Error(c, 1001, "限流参数无效")
		return
	}

	// 使用 GORM 的 Upsert 功能，存在则更新，不存在则创建 (ID=1)
	req.ID = 1
	if err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"event_state", "dynamic_scoring", "max_attempts", "window_seconds", "cooldown_seconds"}),
	}).Create(&req).Error; err != nil {
		utils.Error(c, 5000, "Failed to update event config: "+err.Error())
		return
	}

	configProvider.Invalidate()
	notifier.Publish(services.ChangeFlags{Status: true})

	utils.Success(c, "Event config updated successfully", nil)
}
