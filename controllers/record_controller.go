// file: controllers/record_controller.go
package controllers

import (
	"strconv"
	"time"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/database"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/utils"
	"github.com/gin-gonic/gin"
)

// GetTeamSolves 查询队伍解题记录
func GetTeamSolves(c *gin.Context) {
	teamID, _ := strconv.Atoi(c.Param("id"))

	var solves []models.Submission
	database.DB.Where("team_id = ?", teamID).Order("solving_time asc").Find(&solves)

	type SolveInfo struct {
		ChallengeID   uint32 `json:"challenge_id"`
		ChallengeName string `json:"challenge_name"`
		Score         uint   `json:"score"`
		SolvingTime   string `json:"solving_time"`
	}
	var result []SolveInfo
	for _, solve := range solves {
		var chal models.Challenge
		database.DB.Select("challenge_name").First(&chal, solve.ChallengeID)
		result = append(result, SolveInfo{
			ChallengeID:   solve.ChallengeID,
			ChallengeName: chal.ChallengeName,
			Score:         solve.Score,
			SolvingTime:   solve.SolvingTime.Format("2006-01-02 15:04:05"),
		})
	}

	utils.Success(c, "success", result)
}

// GetTeamHintPurchases 查询队伍的提示购买记录（账目核对用）
func GetTeamHintPurchases(c *gin.Context) {
	teamID, _ := strconv.Atoi(c.Param("id"))

	var purchases []models.HintPurchase
	database.DB.Where("team_id = ?", teamID).Order("purchased_at asc").Find(&purchases)

	type PurchaseInfo struct {
		HintID      uint32 `json:"hint_id"`
		ChallengeID uint32 `json:"challenge_id"`
		CostPaid    uint   `json:"cost_paid"`
		PurchasedAt string `json:"purchased_at"`
	}
	var result []PurchaseInfo
	for _, p := range purchases {
		result = append(result, PurchaseInfo{
			HintID:      p.HintID,
			ChallengeID: p.ChallengeID,
			CostPaid:    p.CostPaid,
			PurchasedAt: p.PurchasedAt.Format("2006-01-02 15:04:05"),
		})
	}

	utils.Success(c, "success", result)
}

// GetFlagLogs 管理员查询 Flag 提交日志
func GetFlagLogs(c *gin.Context) {
	type LogDetail struct {
		ID             uint64    `json:"id"`
		ChallengeID    uint32    `json:"challenge_id"`
		ChallengeName  string    `json:"challenge_name"`
		TeamID         *uint32   `json:"team_id"`
		TeamName       *string   `json:"team_name"`
		UserID         uint32    `json:"user_id"`
		Username       string    `json:"username"`
		SubmittedFlag  string    `json:"submitted_flag"`
		FlagResult     string    `json:"flag_result"`
		SubmissionTime time.Time `json:"submission_time"`
		IPAddress      string    `json:"ip_address"`
		Suspected      bool      `json:"suspected"`
	}

	db := database.DB.Table("ctfd_flag_information l").
		Select("l.id, l.challenge_id, c.challenge_name, l.team_id, t.team_name, l.user_id, u.username, l.submitted_flag, l.flag_result, l.submission_time, l.ip_address, l.suspected").
		Joins("LEFT JOIN ctfd_challenge c ON l.challenge_id = c.id").
		Joins("LEFT JOIN ctfd_team t ON l.team_id = t.id").
		Joins("LEFT JOIN ctfd_user u ON l.user_id = u.id")

	if teamID := c.Query("team_id"); teamID != "" {
		db = db.Where("l.team_id = ?", teamID)
	}
	if challengeID := c.Query("challenge_id"); challengeID != "" {
		db = db.Where("l.challenge_id = ?", challengeID)
	}
	if userID := c.Query("user_id"); userID != "" {
		db = db.Where("l.user_id = ?", userID)
	}
	if result := c.Query("result"); result != "" {
		db = db.Where("l.flag_result = ?", result)
	}
	if suspected := c.Query("suspected"); suspected == "1" {
		db = db.Where("l.suspected = ?", true)
	}

	var results []LogDetail
	db.Order("l.submission_time desc").Find(&results)

	utils.Success(c, "success", results)
}

// MarkSuspectSubmission 管理员手动标记可疑提交
func MarkSuspectSubmission(c *gin.Context) {
	logID, _ := strconv.Atoi(c.Param("id"))

	var req struct {
		Suspected bool `json:"suspected"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "Invalid request body")
		return
	}

	result := database.DB.Model(&models.SubmissionLog{}).Where("id = ?", logID).Update("suspected", req.Suspected)
	if result.Error != nil {
		utils.Error(c, 5000, "Database update failed: "+result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(c, 404, "Submission log not found")
		return
	}

	utils.Success(c, "Flag submission marked as suspected", nil)
}
