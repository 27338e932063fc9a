package model

import "time"

// 答题会话状态
// 会话不存在即视为 not_started；开始答题后只会在 in_progress 与 submitted 之间变化
const (
	AttemptStateNotStarted = "not_started"
	AttemptStateInProgress = "in_progress"
	AttemptStateSubmitted  = "submitted"
)

// QuizAttempt 一次答题会话的全部状态，按 (用户, 课程) 存放在 Redis 中
// 显式值对象：评分与完成逻辑只读写这里的字段，不依赖任何隐藏共享状态
type QuizAttempt struct {
	LessonID             string            `json:"lessonId"`
	State                string            `json:"state"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
	Answers              map[string]string `json:"answers"` // questionId -> 用户当前答案，缺失即未作答
	Result               *QuizResult       `json:"result,omitempty"`
	StartedAt            time.Time         `json:"startedAt"`
	SubmittedAt          *time.Time        `json:"submittedAt,omitempty"`
}

// QuizResult 提交后一次性生成的判分结果
// 不变量: 0 <= Score <= Total，len(IncorrectQuestions) == Total - Score
type QuizResult struct {
	Score              int                 `json:"score"`
	Total              int                 `json:"total"`
	IncorrectQuestions []IncorrectQuestion `json:"incorrectQuestions"`

	// CompletionPersisted 满分时完成记录是否成功落盘
	// 落盘失败不会回滚提交，只通过这里暴露给调用方
	CompletionPersisted bool `json:"completionPersisted"`
}

// Perfect 是否满分（空测验不算）
func (r *QuizResult) Perfect() bool {
	return r.Total > 0 && r.Score == r.Total
}

// IncorrectQuestion 答错题目的回看信息
type IncorrectQuestion struct {
	QuestionID          string   `json:"questionId"`
	QuestionText        string   `json:"questionText"`
	UserAnswer          string   `json:"userAnswer"`
	CorrectAnswers      []string `json:"correctAnswers"`      // 选择/判断为单元素，简答为全部可接受答案
	RelatedContentIndex *int     `json:"relatedContentIndex"` // 为空表示没有可回看的正文段落
	Explanation         string   `json:"explanation,omitempty"`
}
