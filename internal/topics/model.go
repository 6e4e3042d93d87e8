package topics

import (
	"time"
)

// Topic is a trending subject a user can generate content about.
// Rows are created on first reference by title and reused afterwards.
type Topic struct {
	ID          string    `gorm:"column:id;primaryKey;size:36;not null" json:"id"`
	Title       string    `gorm:"column:title;size:512;not null;index" json:"title"`
	Description string    `gorm:"column:description;type:text;not null" json:"description"`
	ImageURL    string    `gorm:"column:image_url;size:1024" json:"imageUrl"`
	Traffic     string    `gorm:"column:traffic;size:64" json:"traffic"`
	Source      string    `gorm:"column:source;size:190" json:"source"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName exposes the table backing topics.
func (Topic) TableName() string {
	return "topics"
}
