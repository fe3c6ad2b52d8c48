// file: services/store_gorm.go
package services

import (
	"errors"
	"time"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormStore 是 Store 的 MySQL 实现
type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Tx(fn func(tx Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// --- 队伍与成员 ---

func (s *gormStore) TeamIDOf(userID uint32) (*uint32, error) {
	var member models.TeamMember
	err := s.db.Where("user_id = ?", userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member.TeamID, nil
}

func (s *gormStore) TeamByID(id uint32) (*models.Team, error) {
	var team models.Team
	if err := s.db.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *gormStore) TeamForUpdate(id uint32) (*models.Team, error) {
	var team models.Team
	// 对队伍行加锁，避免并发更新积分
	if err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *gormStore) TeamMembers(teamID uint32) ([]models.User, error) {
	var users []models.User
	err := s.db.Model(&models.User{}).
		Joins("JOIN ctfd_team_members tm ON tm.user_id = ctfd_user.id").
		Where("tm.team_id = ?", teamID).
		Order("tm.joined_at asc").
		Find(&users).Error
	return users, err
}

func (s *gormStore) SaveTeam(team *models.Team) error {
	return s.db.Save(team).Error
}

// --- 题目 ---

func (s *gormStore) ChallengeByID(id uint32) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := s.db.First(&challenge, id).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (s *gormStore) ChallengeForUpdate(id uint32) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&challenge, id).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (s *gormStore) SaveChallenge(ch *models.Challenge) error {
	return s.db.Save(ch).Error
}

// --- 提交与尝试日志 ---

func (s *gormStore) AttemptTimesSince(userID uint32, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := s.db.Model(&models.SubmissionLog{}).
		Where("user_id = ? AND submission_time >= ?", userID, since).
		Order("submission_time asc").
		Pluck("submission_time", &times).Error
	return times, err
}

func (s *gormStore) LogAttempt(entry *models.SubmissionLog) error {
	return s.db.Create(entry).Error
}

func (s *gormStore) HasTeamSolve(challengeID, teamID uint32) (bool, error) {
	var count int64
	err := s.db.Model(&models.Submission{}).
		Where("challenge_id = ? AND team_id = ?", challengeID, teamID).
		Count(&count).Error
	return count > 0, err
}

func (s *gormStore) HasUserSolve(challengeID, userID uint32) (bool, error) {
	var count int64
	err := s.db.Model(&models.Submission{}).
		Where("challenge_id = ? AND user_id = ?", challengeID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *gormStore) CreateSubmission(sub *models.Submission) error {
	return s.db.Create(sub).Error
}

func (s *gormStore) AddUserPoints(userID uint32, delta uint) error {
	return s.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", delta)).Error
}

// --- 提示 ---

func (s *gormStore) HintByID(id uint32) (*models.Hint, error) {
	var hint models.Hint
	if err := s.db.First(&hint, id).Error; err != nil {
		return nil, err
	}
	return &hint, nil
}

func (s *gormStore) PurchaseOf(teamID, hintID uint32) (*models.HintPurchase, error) {
	var purchase models.HintPurchase
	err := s.db.Where("team_id = ? AND hint_id = ?", teamID, hintID).First(&purchase).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (s *gormStore) CreateHintPurchase(p *models.HintPurchase) error {
	return s.db.Create(p).Error
}

// --- 排行榜投影与动态 ---

func (s *gormStore) UpsertScoreboard(entry *models.Scoreboard) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"team_name", "score", "last_solve_time", "members", "updated_at"}),
	}).Create(entry).Error
}

func (s *gormStore) SetScoreboardScore(teamID uint32, score uint) error {
	return s.db.Model(&models.Scoreboard{}).
		Where("team_id = ?", teamID).
		Update("score", score).Error
}

func (s *gormStore) ScoreboardEntryOf(teamID uint32) (*models.Scoreboard, error) {
	var entry models.Scoreboard
	err := s.db.Where("team_id = ?", teamID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *gormStore) ScoreboardEntries() ([]models.Scoreboard, error) {
	var entries []models.Scoreboard
	err := s.db.Order("score desc, last_solve_time asc").Find(&entries).Error
	return entries, err
}

func (s *gormStore) AggregateTeamScores() ([]TeamAggregate, error) {
	var aggs []TeamAggregate
	// 通过聚合查询一次性算出所有队伍的净积分和最后解题时间
	err := s.db.Raw(`
		SELECT t.id AS team_id, t.team_name,
		       COALESCE(sub.earned, 0) - COALESCE(hp.spent, 0) AS score,
		       sub.last_solve_time
		FROM ctfd_team t
		JOIN (
			SELECT team_id, SUM(score) AS earned, MAX(solving_time) AS last_solve_time
			FROM ctfd_submission WHERE team_id IS NOT NULL GROUP BY team_id
		) sub ON sub.team_id = t.id
		LEFT JOIN (
			SELECT team_id, SUM(cost_paid) AS spent
			FROM ctfd_hint_purchase GROUP BY team_id
		) hp ON hp.team_id = t.id
		ORDER BY score DESC, sub.last_solve_time ASC`).
		Scan(&aggs).Error
	return aggs, err
}

func (s *gormStore) ReplaceScoreboard(entries []models.Scoreboard) error {
	// 先清空旧的排行榜数据
	if err := s.db.Exec("DELETE FROM ctfd_scoreboard").Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	return s.db.Create(&entries).Error
}

func (s *gormStore) AppendSolveFeed(entry *models.SolveFeed) error {
	if err := s.db.Create(entry).Error; err != nil {
		return err
	}

	// 清理旧的记录，保持表的大小
	var count int64
	s.db.Model(&models.SolveFeed{}).Count(&count)
	if count > 5000 { // 保留最新的 5000 条
		s.db.Exec("DELETE FROM ctfd_solve_feed ORDER BY solving_time asc LIMIT ?", count-5000)
	}
	return nil
}
