// file: services/store.go
package services

import (
	"time"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
)

// Store 是计分核心对事务存储的全部依赖。
// 服务逻辑只面向该接口，生产实现在 store_gorm.go，
// 单测以函数字段的伪实现替换
type Store interface {
	// Tx 在一个数据库事务内执行 fn，fn 返回错误则整体回滚
	Tx(fn func(tx Store) error) error

	// --- 队伍与成员 ---
	TeamIDOf(userID uint32) (*uint32, error) // 未加入队伍时返回 nil, nil
	TeamByID(id uint32) (*models.Team, error)
	TeamForUpdate(id uint32) (*models.Team, error) // 行锁读取，仅事务内使用
	TeamMembers(teamID uint32) ([]models.User, error)
	SaveTeam(team *models.Team) error

	// --- 题目 ---
	ChallengeByID(id uint32) (*models.Challenge, error)
	ChallengeForUpdate(id uint32) (*models.Challenge, error)
	SaveChallenge(ch *models.Challenge) error

	// --- 提交与尝试日志 ---
	AttemptTimesSince(userID uint32, since time.Time) ([]time.Time, error)
	LogAttempt(entry *models.SubmissionLog) error
	HasTeamSolve(challengeID, teamID uint32) (bool, error)
	HasUserSolve(challengeID, userID uint32) (bool, error)
	CreateSubmission(sub *models.Submission) error
	AddUserPoints(userID uint32, delta uint) error

	// --- 提示 ---
	HintByID(id uint32) (*models.Hint, error)
	PurchaseOf(teamID, hintID uint32) (*models.HintPurchase, error) // 不存在时返回 nil, nil
	CreateHintPurchase(p *models.HintPurchase) error

	// --- 排行榜投影与动态 ---
	UpsertScoreboard(entry *models.Scoreboard) error
	SetScoreboardScore(teamID uint32, score uint) error
	ScoreboardEntryOf(teamID uint32) (*models.Scoreboard, error) // 不存在时返回 nil, nil
	ScoreboardEntries() ([]models.Scoreboard, error)             // 按积分降序、最后解题时间升序
	AggregateTeamScores() ([]TeamAggregate, error)
	ReplaceScoreboard(entries []models.Scoreboard) error
	AppendSolveFeed(entry *models.SolveFeed) error
}

// TeamAggregate 全量重建排行榜时的聚合行：
// 净积分 = 正确提交得分之和 - 提示购买花费之和
type TeamAggregate struct {
	TeamID        uint32     `gorm:"column:team_id"`
	TeamName      string     `gorm:"column:team_name"`
	Score         uint       `gorm:"column:score"`
	LastSolveTime *time.Time `gorm:"column:last_solve_time"`
}
