// file: models/event_config.go
package models

import (
	"time"
)

// EventState 比赛全局状态
type EventState string

const (
	EventRunning EventState = "running"
	EventPaused  EventState = "paused"
	EventStopped EventState = "stopped"
)

// EventConfig 全局配置单例（固定 ID=1），启动时若不存在则以默认值落库。
// 每次提交都会读取它；管理员修改后对下一次读取生效，与计分事务无耦合
type EventConfig struct {
	ID              uint       `gorm:"primarykey" json:"id,omitempty"`
	EventState      EventState `gorm:"type:enum('running','paused','stopped');default:'running'" json:"event_state"`
	DynamicScoring  bool       `gorm:"default:1" json:"dynamic_scoring"`
	MaxAttempts     int        `gorm:"default:10" json:"max_attempts"`
	WindowSeconds   int        `gorm:"default:60" json:"window_seconds"`
	CooldownSeconds int        `gorm:"default:10" json:"cooldown_seconds"`
	UpdatedAt       time.Time  `json:"updated_at,omitempty"`
}

func (EventConfig) TableName() string {
	return "ctfd_event_config"
}

// DefaultEventConfig 启动兜底用的默认配置
func DefaultEventConfig() EventConfig {
	return EventConfig{
		ID:              1,
		EventState:      EventRunning,
		DynamicScoring:  true,
		MaxAttempts:     10,
		WindowSeconds:   60,
		CooldownSeconds: 10,
	}
}
