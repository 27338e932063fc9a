package model

import "encoding/json"

// 题目类型
const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionFreeResponse   = "free_response"
)

// Lesson 理财课程，随应用构建一次性灌入数据库，运行期只读
// swagger:model Lesson
type Lesson struct {
	BaseModel
	LessonID    string           `gorm:"size:64;uniqueIndex;not null" json:"lessonId"` // 课程的业务标识，客户端以此寻址
	Title       string           `gorm:"size:255;not null" json:"title"`
	Category    string           `gorm:"size:100;index" json:"category"`
	Order       int              `gorm:"default:0" json:"order"` // 分类内排序
	Time        string           `gorm:"size:50" json:"time"`    // 预计阅读时长（展示用文案）
	Description string           `gorm:"type:text" json:"description"`
	XPReward    int              `gorm:"default:100" json:"xpReward"` // 满分完成后奖励的经验值
	Content     json.RawMessage  `gorm:"type:json" json:"content"`    // JSON: []{text, mediaUrl}，顺序即正文段落顺序
	Questions   []LessonQuestion `gorm:"foreignKey:LessonRef;references:LessonID" json:"questions"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// LessonQuestion 课程内嵌测验题
// swagger:model LessonQuestion
type LessonQuestion struct {
	BaseModel
	LessonRef           string          `gorm:"size:64;index;column:lesson_ref" json:"lessonRef"`
	QuestionID          string          `gorm:"size:64;uniqueIndex;not null" json:"questionId"`
	QuestionType        string          `gorm:"size:50;not null" json:"questionType"` // multiple_choice, true_false, free_response
	QuestionText        string          `gorm:"type:text;not null" json:"questionText"`
	Options             json.RawMessage `gorm:"type:json" json:"options"`       // JSON: []string，简答题为空
	CorrectAnswer       json.RawMessage `gorm:"type:json" json:"-"`             // 选择/判断为单个字符串，简答为可接受答案数组；不下发客户端
	RelatedContentIndex *int            `gorm:"" json:"relatedContentIndex"`    // 答错后引导回看的正文段落下标
	Order               int             `gorm:"default:0" json:"order"`
	Explanation         string          `gorm:"type:text" json:"explanation"` // 答案解析
}

func (LessonQuestion) TableName() string {
	return "lesson_questions"
}

// ContentBlock 课程正文段落（Lesson.Content 反序列化后的形态）
type ContentBlock struct {
	Text     string `json:"text"`
	MediaURL string `json:"mediaUrl,omitempty"`
}
