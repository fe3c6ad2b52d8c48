// file: models/submission.go
package models

import (
	"time"
)

// Submission 只记录正确提交，是防止重复得分的权威依据：
// (challenge_id, user_id) 全局唯一；(challenge_id, team_id) 对有队伍的提交唯一
// （MySQL 唯一索引允许多个 NULL，无队伍选手由 user 维度的指纹兜底）。
// 并发双提时数据库在这里一锤定音，事务内的插入冲突即为"已解出"
type Submission struct {
	ID          uint64    `gorm:"primarykey"`
	ChallengeID uint32    `gorm:"uniqueIndex:uniq_challenge_user;uniqueIndex:uniq_challenge_team;not null"`
	UserID      uint32    `gorm:"uniqueIndex:uniq_challenge_user;not null"`
	TeamID      *uint32   `gorm:"uniqueIndex:uniq_challenge_team"`
	Score       uint      `gorm:"not null"` // 解题当时的题目分值
	SolvingTime time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

func (Submission) TableName() string {
	return "ctfd_submission"
}
