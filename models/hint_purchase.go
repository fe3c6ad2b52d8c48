// file: models/hint_purchase.go
package models

import (
	"time"
)

// HintPurchase 记录某支队伍解锁某条提示的事实，(team_id, hint_id) 唯一，
// CostPaid 固化购买当时的花费，后续管理员改价不影响历史账目
type HintPurchase struct {
	ID          uint64    `gorm:"primarykey"`
	TeamID      uint32    `gorm:"uniqueIndex:uniq_team_hint;not null"`
	HintID      uint32    `gorm:"uniqueIndex:uniq_team_hint;not null"`
	ChallengeID uint32    `gorm:"index;not null"`
	UserID      uint32    `gorm:"not null"` // 发起购买的成员
	CostPaid    uint      `gorm:"not null"`
	PurchasedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
}

func (HintPurchase) TableName() string {
	return "ctfd_hint_purchase"
}
