// file: models/challenge.go
package models

import (
	"time"
)

type ChallengeState string
type ChallengeDifficulty string

const (
	ChallengeStateVisible ChallengeState = "visible"
	ChallengeStateHidden  ChallengeState = "hidden"

	ChallengeDifficultyEasy   ChallengeDifficulty = "easy"
	ChallengeDifficultyMedium ChallengeDifficulty = "medium"
	ChallengeDifficultyHard   ChallengeDifficulty = "hard"
)

// CurrentScore 是题目当前分值（动态计分开启时随解题次数衰减），
// InitialScore 是静态基准分，MinScore 是衰减下限
type Challenge struct {
	ID            uint32              `gorm:"primarykey"`
	ChallengeName string              `gorm:"size:100;unique;not null"`
	CategoryID    uint32              `gorm:"not null"`
	Category      Category            `gorm:"foreignKey:CategoryID"`
	Author        string              `gorm:"size:50;not null"`
	Description   string              `gorm:"type:text;not null"`
	State         ChallengeState      `gorm:"type:enum('visible','hidden');default:'hidden'"`
	Flag          string              `gorm:"size:255;not null"`
	Difficulty    ChallengeDifficulty `gorm:"type:enum('easy','medium','hard');default:'medium'"`
	InitialScore  uint                `gorm:"not null"`
	MinScore      uint                `gorm:"not null"`
	CurrentScore  uint                `gorm:"not null"`
	DecayRatio    float32             `gorm:"default:0.1"`
	SolvedCount   uint                `gorm:"default:0"`
	Hints         []Hint              `gorm:"foreignKey:ChallengeID"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Challenge) TableName() string {
	return "ctfd_challenge"
}
