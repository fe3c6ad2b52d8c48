// file: controllers/hint_controller.go
package controllers

import (
	"strconv"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/database"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/utils"
	"github.com/gin-gonic/gin"
)

// PurchaseHint —— 队伍扣分解锁提示，重复购买幂等返回
func PurchaseHint(c *gin.Context) {
	hintID, _ := strconv.Atoi(c.Param("id"))

	userIDAny, exists := c.Get("user_id")
	if !exists {
		utils.Error(c, 4001, "未登录")
		return
	}
	userID := userIDAny.(uint32)

	content, remaining, err := hintSvc.PurchaseHint(userID, uint32(hintID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "success", gin.H{
		"content":          content,
		"remaining_points": remaining,
	})
}

// --- 管理员接口 ---

// AddHint 为题目新增提示
func AddHint(c *gin.Context) {
	challengeID, _ := strconv.Atoi(c.Param("id"))

	var challenge models.Challenge
	if err := database.DB.First(&challenge, challengeID).Error; err != nil {
		utils.Error(c, 4004, "题目不存在")
		return
	}

	var req struct {
		Content   string `json:"content" binding:"required"`
		Cost      uint   `json:"cost"`
		SortOrder int    `json:"sort_order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	hint := models.Hint{
		ChallengeID: challenge.ID,
		Content:     req.Content,
		Cost:        req.Cost,
		SortOrder:   req.SortOrder,
	}
	if err := database.DB.Create(&hint).Error; err != nil {
		utils.Error(c, 5000, "创建提示失败: "+err.Error())
		return
	}

	invalidateChallengeList()
	utils.Success(c, "Hint created successfully", gin.H{"id": hint.ID})
}

// UpdateHint 修改提示内容或价格。
// 改价只影响之后的购买，历史购买记录固化的是当时的花费
func UpdateHint(c *gin.Context) {
	hintID, _ := strconv.Atoi(c.Param("id"))

	var hint models.Hint
	if err := database.DB.First(&hint, hintID).Error; err != nil {
		utils.Error(c, 4004, "提示不存在")
		return
	}

	var req struct {
		Content   *string `json:"content"`
		Cost      *uint   `json:"cost"`
		SortOrder *int    `json:"sort_order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.Cost != nil {
		updates["cost"] = *req.Cost
	}
	if req.SortOrder != nil {
		updates["sort_order"] = *req.SortOrder
	}
	if len(updates) == 0 {
		utils.Error(c, 1001, "没有需要更新的字段")
		return
	}

	if err := database.DB.Model(&hint).Updates(updates).Error; err != nil {
		utils.Error(c, 5000, "更新提示失败: "+err.Error())
		return
	}

	invalidateChallengeList()
	utils.Success(c, "Hint updated successfully", nil)
}

// DeleteHint 删除提示（已有购买记录保持不变）
func DeleteHint(c *gin.Context) {
	hintID, _ := strconv.Atoi(c.Param("id"))

	result := database.DB.Delete(&models.Hint{}, hintID)
	if result.Error != nil {
		utils.Error(c, 5000, "删除提示失败: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(c, 4004, "提示不存在")
		return
	}

	invalidateChallengeList()
	utils.Success(c, "Hint deleted successfully", nil)
}
