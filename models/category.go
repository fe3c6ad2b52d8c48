// file: models/category.go
package models

import (
	"time"
)

// Category 题目分类（方向），如 web / pwn / crypto
type Category struct {
	ID          uint32    `gorm:"primarykey" json:"id"`
	Direction   string    `gorm:"size:50;unique;not null" json:"direction"`
	Alias       string    `gorm:"size:50" json:"alias"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "ctfd_category"
}
