// file: controllers/challenge_controller.go
package controllers

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/database"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/dto"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/services"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/utils"
	"github.com/gin-gonic/gin"
)

// 题目列表缓存时间，命中失效通知之前的兜底
const challengeListTTL = 5 * time.Second

// CreateChallenge —— 使用 DTO + 手动映射 + Normalize 兼容
func CreateChallenge(c *gin.Context) {
	var req dto.CreateChallengeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}
	req.Normalize()

	// 必填校验（统一在这里做，避免绑定阶段因别名导致的校验失败）
	if req.ChallengeName == "" || req.CategoryID == 0 || req.Author == "" ||
		req.Description == "" || req.Flag == "" || req.InitialScore == 0 {
		utils.Error(c, 1001, "缺少必填字段")
		return
	}
	if req.MinScore > req.InitialScore {
		utils.Error(c, 1001, "min_score 不能大于 initial_score")
		return
	}
	if req.Difficulty != "easy" && req.Difficulty != "medium" && req.Difficulty != "hard" {
		utils.Error(c, 1001, "difficulty 取值无效（easy/medium/hard）")
		return
	}

	// 分类存在性校验
	var category models.Category
	if err := database.DB.First(&category, req.CategoryID).Error; err != nil {
		utils.Error(c, 4001, "题目分类不存在")
		return
	}

	// 手动映射到模型
	chal := models.Challenge{
		ChallengeName: req.ChallengeName,
		CategoryID:    req.CategoryID,
		Author:        req.Author,
		Description:   req.Description,
		Flag:          req.Flag,
		Difficulty:    models.ChallengeDifficulty(req.Difficulty),
		InitialScore:  req.InitialScore,
		MinScore:      req.MinScore,
		CurrentScore:  req.InitialScore, // 初始化为初始分
		DecayRatio:    req.DecayRatio,
	}

	if err := database.DB.Create(&chal).Error; err != nil {
		utils.Error(c, 5000, "创建题目失败: "+err.Error())
		return
	}

	invalidateChallengeList()
	utils.Success(c, "Challenge created successfully", gin.H{"id": chal.ID})
}

// UpdateChallenge —— 管理员修改题目（含可见性切换）
func UpdateChallenge(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var challenge models.Challenge
	if err := database.DB.First(&challenge, id).Error; err != nil {
		utils.Error(c, 4004, "题目不存在")
		return
	}

	var req dto.UpdateChallengeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.State != nil {
		if *req.State != string(models.ChallengeStateVisible) && *req.State != string(models.ChallengeStateHidden) {
			utils.Error(c, 1001, "state 取值无效（visible/hidden）")
			return
		}
		updates["state"] = *req.State
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Difficulty != nil {
		updates["difficulty"] = *req.Difficulty
	}
	if req.Flag != nil {
		updates["flag"] = strings.TrimSpace(*req.Flag)
	}
	if req.MinScore != nil {
		updates["min_score"] = *req.MinScore
	}
	if req.DecayRatio != nil {
		updates["decay_ratio"] = *req.DecayRatio
	}
	if len(updates) == 0 {
		utils.Error(c, 1001, "没有需要更新的字段")
		return
	}

	if err := database.DB.Model(&challenge).Updates(updates).Error; err != nil {
		utils.Error(c, 5000, "更新题目失败: "+err.Error())
		return
	}

	invalidateChallengeList()
	utils.Success(c, "Challenge updated successfully", nil)
}

// DeleteChallenge —— 管理员删除题目及其提示
func DeleteChallenge(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	if err := database.DB.First(&models.Challenge{}, id).Error; err != nil {
		utils.Error(c, 4004, "题目不存在")
		return
	}

	if err := database.DB.Where("challenge_id = ?", id).Delete(&models.Hint{}).Error; err != nil {
		utils.Error(c, 5000, "删除题目提示失败")
		return
	}
	if err := database.DB.Delete(&models.Challenge{}, id).Error; err != nil {
		utils.Error(c, 5000, "删除题目失败")
		return
	}

	invalidateChallengeList()
	utils.Success(c, "Challenge deleted successfully", nil)
}

// ListChallenges —— 用户可见的题目列表（带缓存）
func ListChallenges(c *gin.Context) {
	// 列表不含个性化字段之外的数据，解出标记单独回填，主体可整表缓存
	var challenges []models.Challenge
	if val, ok := cacheStore.Get(services.CacheKeyChallengeList); ok &&
		json.Unmarshal([]byte(val), &challenges) == nil {
		// from cache
	} else {
		db := database.DB.Model(&models.Challenge{}).
			Where("state = ?", models.ChallengeStateVisible).
			Preload("Category")
		if err := db.Find(&challenges).Error; err != nil {
			utils.Error(c, 5000, "查询失败")
			return
		}
		if data, err := json.Marshal(challenges); err == nil {
			cacheStore.Set(services.CacheKeyChallengeList, string(data), challengeListTTL)
		}
	}

	solved := solvedChallengeSet(c)

	items := make([]dto.ChallengeItemResp, 0, len(challenges))
	for _, ch := range challenges {
		items = append(items, dto.ChallengeItemResp{
			ID:            ch.ID,
			ChallengeName: ch.ChallengeName,
			Type:          ch.Category.Alias,
			Difficulty:    string(ch.Difficulty),
			CurrentScore:  ch.CurrentScore,
			SolvedCount:   ch.SolvedCount,
			Solved:        solved[ch.ID],
		})
	}

	utils.Success(c, "success", gin.H{
		"total":      len(items),
		"challenges": items,
	})
}

// GetChallengeDetail —— 用户可见的题目详情（含提示的购买状态）
func GetChallengeDetail(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var challenge models.Challenge
	if err := database.DB.Preload("Category").First(&challenge, id).Error; err != nil {
		utils.Error(c, 4004, "题目不存在")
		return
	}
	if challenge.State != models.ChallengeStateVisible {
		utils.Error(c, 4003, "题目不可见")
		return
	}

	var hints []models.Hint
	if err := database.DB.
		Where("challenge_id = ?", id).
		Order("sort_order ASC, id ASC").
		Find(&hints).Error; err != nil {
		utils.Error(c, 5000, "提示查询失败")
		return
	}

	unlocked := unlockedHintSet(c, uint32(id))

	items := make([]dto.HintItem, 0, len(hints))
	for _, h := range hints {
		item := dto.HintItem{
			ID:       h.ID,
			Cost:     h.Cost,
			Unlocked: unlocked[h.ID],
		}
		if item.Unlocked {
			item.Content = h.Content
		}
		items = append(items, item)
	}

	resp := dto.ChallengeDetailResp{
		ID:            challenge.ID,
		ChallengeName: challenge.ChallengeName,
		Author:        challenge.Author,
		Description:   challenge.Description,
		Difficulty:    string(challenge.Difficulty),
		CurrentScore:  challenge.CurrentScore,
		SolvedCount:   challenge.SolvedCount,
		Hints:         items,
	}

	utils.Success(c, "success", resp)
}

// SubmitFlag —— 提交 Flag，全部校验与记账由计分服务完成
func SubmitFlag(c *gin.Context) {
	challengeID, _ := strconv.Atoi(c.Param("id"))

	var req dto.SubmitFlagReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}
	req.Normalize()

	// 从中间件读取用户信息
	userIDAny, exists := c.Get("user_id")
	if !exists {
		utils.Error(c, 4001, "未登录")
		return
	}
	userID := userIDAny.(uint32)

	awarded, err := scoringSvc.SubmitFlag(userID, uint32(challengeID), req.Flag, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Flag 正确！", gin.H{"score": awarded})
}

// AdminListChallenges —— 管理员查询题目列表（可见/隐藏均可，支持筛选+分页）
func AdminListChallenges(c *gin.Context) {
	categoryIDStr := c.Query("category_id")
	diff := strings.TrimSpace(c.Query("difficulty")) // easy/medium/hard
	state := strings.TrimSpace(c.Query("state"))     // visible/hidden
	kw := strings.TrimSpace(c.Query("keyword"))      // 模糊匹配 name/description
	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "10")

	page, _ := strconv.Atoi(pageStr)
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	db := database.DB.Model(&models.Challenge{}).Preload("Category")

	if categoryIDStr != "" {
		if cid, err := strconv.Atoi(categoryIDStr); err == nil && cid > 0 {
			db = db.Where("category_id = ?", cid)
		}
	}
	if diff != "" {
		db = db.Where("difficulty = ?", models.ChallengeDifficulty(diff))
	}
	if state != "" {
		db = db.Where("state = ?", models.ChallengeState(state))
	}
	if kw != "" {
		like := "%" + kw + "%"
		db = db.Where("challenge_name LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		utils.Error(c, 5000, "查询失败: "+err.Error())
		return
	}

	var list []models.Challenge
	if err := db.Order("updated_at DESC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		utils.Error(c, 5000, "查询失败: "+err.Error())
		return
	}

	items := make([]dto.AdminChallengeItemResp, 0, len(list))
	for _, ch := range list {
		items = append(items, dto.AdminChallengeItemResp{
			ID:            ch.ID,
			ChallengeName: ch.ChallengeName,
			Type:          ch.Category.Alias,
			Difficulty:    string(ch.Difficulty),
			State:         string(ch.State),
			CurrentScore:  ch.CurrentScore,
			SolvedCount:   ch.SolvedCount,
			UpdatedAt:     ch.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	utils.Success(c, "success", gin.H{
		"total":      total,
		"page":       page,
		"limit":      limit,
		"challenges": items,
	})
}

// AdminGetChallengeDetail —— 管理员查询题目详情（不受可见性限制，含 Flag 和提示原文）
func AdminGetChallengeDetail(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var ch models.Challenge
	if err := database.DB.Preload("Category").First(&ch, id).Error; err != nil {
		utils.Error(c, 4004, "题目不存在")
		return
	}

	var hints []models.Hint
	if err := database.DB.
		Where("challenge_id = ?", id).
		Order("sort_order ASC, id ASC").
		Find(&hints).Error; err != nil {
		utils.Error(c, 5000, "提示查询失败")
		return
	}

	items := make([]dto.AdminHintItem, 0, len(hints))
	for _, h := range hints {
		items = append(items, dto.AdminHintItem{
			ID:        h.ID,
			Content:   h.Content,
			Cost:      h.Cost,
			SortOrder: h.SortOrder,
		})
	}

	resp := dto.AdminChallengeDetailResp{
		ID:            ch.ID,
		ChallengeName: ch.ChallengeName,
		Type:          ch.Category.Alias,
		Author:        ch.Author,
		Description:   ch.Description,
		Difficulty:    string(ch.Difficulty),
		State:         string(ch.State),
		Flag:          ch.Flag,
		CurrentScore:  ch.CurrentScore,
		InitialScore:  ch.InitialScore,
		MinScore:      ch.MinScore,
		DecayRatio:    ch.DecayRatio,
		SolvedCount:   ch.SolvedCount,
		Hints:         items,
		CreatedAt:     ch.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:     ch.UpdatedAt.Format("2006-01-02 15:04:05"),
	}

	utils.Success(c, "success", resp)
}

// invalidateChallengeList 管理端改动题目后，先失效缓存再广播变更
func invalidateChallengeList() {
	cacheStore.Invalidate(services.CacheKeyChallengeList)
	notifier.Publish(services.ChangeFlags{Challenges: true})
}

// solvedChallengeSet 当前用户（或其队伍）已解出的题目集合
func solvedChallengeSet(c *gin.Context) map[uint32]bool {
	solved := make(map[uint32]bool)
	userIDAny, exists := c.Get("user_id")
	if !exists {
		return solved
	}
	userID := userIDAny.(uint32)

	var member models.TeamMember
	db := database.DB.Model(&models.Submission{})
	if err := database.DB.Where("user_id = ?", userID).First(&member).Error; err == nil {
		db = db.Where("team_id = ?", member.TeamID)
	} else {
		db = db.Where("user_id = ?", userID)
	}

	var ids []uint32
	db.Pluck("challenge_id", &ids)
	for _, id := range ids {
		solved[id] = true
	}
	return solved
}

// unlockedHintSet 当前用户所在队伍已购买的提示集合
func unlockedHintSet(c *gin.Context, challengeID uint32) map[uint32]bool {
	unlocked := make(map[uint32]bool)
	userIDAny, exists := c.Get("user_id")
	if !exists {
		return unlocked
	}
	userID := userIDAny.(uint32)

	var member models.TeamMember
	if err := database.DB.Where("user_id = ?", userID).First(&member).Error; err != nil {
		return unlocked
	}

	var ids []uint32
	database.DB.Model(&models.HintPurchase{}).
		Where("team_id = ? AND challenge_id = ?", member.TeamID, challengeID).
		Pluck("hint_id", &ids)
	for _, id := range ids {
		unlocked[id] = true
	}
	return unlocked
}
