// file: models/submission_log.go
package models

import (
	"time"
)

type FlagResult string

const (
	FlagResultCorrect   FlagResult = "correct"
	FlagResultWrong     FlagResult = "wrong"
	FlagResultDuplicate FlagResult = "duplicate"
)

// SubmissionLog 记录每一次 Flag 提交尝试（含错误提交），
// 既是管理员审计日志，也是滑动窗口限流的计数来源
type SubmissionLog struct {
	ID             uint64     `gorm:"primarykey"`
	ChallengeID    uint32     `gorm:"not null"`
	TeamID         *uint32    ``
	UserID         uint32     `gorm:"index:idx_user_time;not null"`
	SubmittedFlag  string     `gorm:"size:255;not null"`
	FlagResult     FlagResult `gorm:"type:enum('correct','wrong','duplicate');not null"`
	SubmissionTime time.Time  `gorm:"index:idx_user_time;default:CURRENT_TIMESTAMP"`
	IPAddress      string     `gorm:"size:45"`
	Suspected      bool       `gorm:"default:0"`
}

func (SubmissionLog) TableName() string {
	return "ctfd_flag_information"
}
