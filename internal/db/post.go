package db

import "time"

// Post 定义了文章模型。删除为硬删除，因此不嵌入 gorm.Model。
type Post struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	Title   string  `gorm:"not null" json:"title"`
	Slug    *string `gorm:"unique" json:"slug,omitempty"` // 预留字段，接口不写入
	Content string  `gorm:"type:text;not null" json:"content"`
	Author  string  `gorm:"not null" json:"author"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
