// file: models/team.go
package models

import (
	"time"
)

// 自定义队伍状态类型
type TeamStatus string

const (
	TeamStatusActive TeamStatus = "active"
	TeamStatusBanned TeamStatus = "banned"
	TeamStatusHidden TeamStatus = "hidden"
)

// Team.Points 是队伍积分的权威余额：
// 它必须始终等于队伍全部正确提交的得分之和减去全部提示购买的花费，
// 该不变量由计分服务和提示服务在同一事务内的成对更新来维护
type Team struct {
	ID             uint32       `gorm:"primarykey" json:"id"`
	TeamName       string       `gorm:"size:100;unique;not null" json:"team_name"`
	LeaderID       uint32       `gorm:"not null" json:"leader_id"`
	Leader         User         `gorm:"foreignKey:LeaderID" json:"leader"`
	InvitationCode string       `gorm:"size:20;unique;not null" json:"invitation_code"`
	TeamDescribe   string       `gorm:"type:text" json:"team_describe"`
	TeamStatus     TeamStatus   `gorm:"type:enum('active','banned','hidden');default:'active'" json:"team_status"`
	Points         uint         `gorm:"not null;default:0" json:"points"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Members        []TeamMember `gorm:"foreignKey:TeamID" json:"members"`
}

func (Team) TableName() string {
	return "ctfd_team"
}
