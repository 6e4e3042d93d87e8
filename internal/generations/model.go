package generations

import (
	"time"

	"github.com/trendforge/backend/internal/topics"
)

// Type tags the kind of artifact a generation holds.
type Type string

const (
	// TypeScript marks a generated video script.
	TypeScript Type = "SCRIPT"
	// TypeImage marks a generated thumbnail image.
	TypeImage Type = "IMAGE"
	// TypeBlog marks a generated blog post bundle.
	TypeBlog Type = "BLOG"
)

// ParseType validates a raw type tag.
func ParseType(value string) (Type, bool) {
	switch Type(value) {
	case TypeScript, TypeImage, TypeBlog:
		return Type(value), true
	default:
		return "", false
	}
}

// Generation is one produced artifact tied to a topic and its owning user.
// Rows are immutable after creation and deleted only by their owner.
type Generation struct {
	ID        string       `gorm:"column:id;primaryKey;size:36;not null" json:"id"`
	Type      Type         `gorm:"column:type;size:16;not null" json:"type"`
	Content   string       `gorm:"column:content;type:text" json:"content"`
	ImageData string       `gorm:"column:image_data;type:text" json:"imageData"`
	ImageMime string       `gorm:"column:image_mime;size:64" json:"imageMime"`
	TopicID   string       `gorm:"column:topic_id;size:36;not null" json:"topicId"`
	UserID    string       `gorm:"column:user_id;size:36;not null;index" json:"userId"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	Topic     topics.Topic `gorm:"foreignKey:TopicID" json:"topic"`
}

// TableName exposes the table backing generations.
func (Generation) TableName() string {
	return "generations"
}
