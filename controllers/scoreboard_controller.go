// file: controllers/scoreboard_controller.go
package controllers

import (
	"encoding/json"
	"strconv"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/database"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/utils"
	"github.com/gin-gonic/gin"
)

// GetScoreboard 查询排行榜
func GetScoreboard(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "10")
	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	entries, err := boardSvc.GetScoreboard(limit)
	if err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}

	type entryResp struct {
		Rank          uint                      `json:"rank"`
		TeamID        uint32                    `json:"team_id"`
		TeamName      string                    `json:"team_name"`
		Score         uint                      `json:"score"`
		LastSolveTime *string                   `json:"last_solve_time"`
		Members       []models.ScoreboardMember `json:"members"`
	}

	results := make([]entryResp, 0, len(entries))
	for _, e := range entries {
		item := entryResp{
			Rank:     e.Rank,
			TeamID:   e.TeamID,
			TeamName: e.TeamName,
			Score:    e.Score,
		}
		if e.LastSolveTime != nil {
			t := e.LastSolveTime.Format("2006-01-02 15:04:05")
			item.LastSolveTime = &t
		}
		if e.Members != "" {
			_ = json.Unmarshal([]byte(e.Members), &item.Members)
		}
		results = append(results, item)
	}

	utils.Success(c, "success", results)
}

// GetSolveFeed 查询实时解题动态
func GetSolveFeed(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "20")
	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var results []models.SolveFeed
	database.DB.Order("solving_time desc").Limit(limit).Find(&results)

	utils.Success(c, "success", results)
}

// RebuildScoreboard 管理员从提交记录全量重建排行榜
func RebuildScoreboard(c *gin.Context) {
	if err := boardSvc.Rebuild(); err != nil {
		utils.Error(c, 5000, "排行榜重建失败: "+err.Error())
		return
	}
	utils.Success(c, "Scoreboard rebuilt successfully", nil)
}
