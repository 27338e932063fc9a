package model

import "time"

// LessonCompletion 课程完成记录（满分提交后落库）
// 权威记录在 Redis 的整存整取列表里，这张表是用于统计报表的镜像，写入尽力而为
type LessonCompletion struct {
	BaseModel
	UserID      uint      `gorm:"index;type:bigint unsigned;uniqueIndex:idx_user_lesson" json:"userId"`
	LessonRef   string    `gorm:"size:64;uniqueIndex:idx_user_lesson" json:"lessonRef"`
	Score       int       `gorm:"not null" json:"score"`
	Total       int       `gorm:"not null" json:"total"`
	CompletedAt time.Time `json:"completedAt"`
}

func (LessonCompletion) TableName() string {
	return "lesson_completions"
}

// QuizSubmissionRecord 每次测验提交的历史记录（不限满分）
type QuizSubmissionRecord struct {
	BaseModel
	UserID      uint              `gorm:"index;type:bigint unsigned" json:"userId"`
	LessonRef   string            `gorm:"size:64;index" json:"lessonRef"`
	Score       int               `gorm:"not null" json:"score"`
	Total       int               `gorm:"not null" json:"total"`
	Answers     map[string]string `gorm:"type:json;serializer:json" json:"answers"`
	SubmittedAt time.Time         `json:"submittedAt"`
}

func (QuizSubmissionRecord) TableName() string {
	return "quiz_submission_records"
}
