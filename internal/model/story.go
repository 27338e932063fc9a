package model

// Story 青少年用户发布的短"故事"动态
type Story struct {
	UUIDBase
	AuthorID uint           `gorm:"index;type:bigint unsigned" json:"authorId"`
	Author   User           `gorm:"foreignKey:AuthorID" json:"author"`
	Content  string         `gorm:"type:text;not null" json:"content"`
	MediaURL string         `gorm:"size:255" json:"mediaUrl"`
	Likes    int            `gorm:"default:0" json:"likes"`
	Comments []StoryComment `gorm:"foreignKey:StoryID" json:"comments"`
}

func (Story) TableName() string {
	return "stories"
}

type StoryComment struct {
	UUIDBase
	StoryID  string `gorm:"index;type:varchar(36)" json:"storyId"`
	AuthorID uint   `gorm:"index;type:bigint unsigned" json:"authorId"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author"`
	Content  string `gorm:"type:text;not null" json:"content"`
}

func (StoryComment) TableName() string {
	return "story_comments"
}

// StoryLike 点赞记录，同一用户对同一故事只计一次
type StoryLike struct {
	BaseModel
	UserID  uint   `gorm:"uniqueIndex:idx_user_story;type:bigint unsigned" json:"userId"`
	StoryID string `gorm:"uniqueIndex:idx_user_story;size:36" json:"storyId"`
}

func (StoryLike) TableName() string {
	return "story_likes"
}
