// file: models/scoreboard.go
package models

import (
	"time"
)

// Scoreboard 对应 ctfd_scoreboard 缓存表：每队一行的派生投影，
// 随每次积分变动在同一事务内 upsert，不是独立的权威数据。
// Members 是成员快照的 JSON 反规范化列，换人或成员得分变化时刷新
type Scoreboard struct {
	ID            uint    `gorm:"primarykey"`
	TeamID        uint32  `gorm:"uniqueIndex;not null"`
	TeamName      string  `gorm:"size:100;not null"`
	Score         uint    `gorm:"not null"`
	LastSolveTime *time.Time
	Rank          uint   `gorm:"default:0"` // 全量重建时写入；实时读取路径按序另行计算
	Members       string `gorm:"type:text"`
	UpdatedAt     time.Time
}

func (Scoreboard) TableName() string {
	return "ctfd_scoreboard"
}

// ScoreboardMember 成员快照中的一项
type ScoreboardMember struct {
	UserID   uint32 `json:"user_id"`
	Username string `json:"username"`
	Points   uint   `json:"points"`
}
