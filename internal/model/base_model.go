package model

import (
	"time"
)

// BaseModel 自增主键的通用字段
type BaseModel struct {
	ID        int64     `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
