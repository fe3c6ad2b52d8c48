// file: models/hint.go
package models

import (
	"time"
)

// Hint 题目的付费提示，内容只有购买后才返回给选手
type Hint struct {
	ID          uint32    `gorm:"primarykey"`
	ChallengeID uint32    `gorm:"index;not null"`
	Content     string    `gorm:"type:text;not null"`
	Cost        uint      `gorm:"not null"`
	SortOrder   int       `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Hint) TableName() string {
	return "ctfd_hint"
}
