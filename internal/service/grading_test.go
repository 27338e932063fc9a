package service

import (
	"encoding/json"
	"finlit_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func mcQuestion(correct string) *model.LessonQuestion {
	return &model.LessonQuestion{
		QuestionID:    "q-mc",
		QuestionType:  model.QuestionMultipleChoice,
		Options:       json.RawMessage(`["预算","储蓄","信用"]`),
		CorrectAnswer: json.RawMessage(`"` + correct + `"`),
	}
}

func frQuestion(accepted ...string) *model.LessonQuestion {
	raw, _ := json.Marshal(accepted)
	return &model.LessonQuestion{
		QuestionID:    "q-fr",
		QuestionType:  model.QuestionFreeResponse,
		CorrectAnswer: raw,
	}
}

func TestGradeAnswerMultipleChoice(t *testing.T) {
	q := mcQuestion("预算")

	assert.True(t, GradeAnswer(q, "预算"))
	assert.False(t, GradeAnswer(q, "储蓄"))
	// 选择题不做任何归一化，首尾空白也算错
	assert.False(t, GradeAnswer(q, " 预算"))
	assert.False(t, GradeAnswer(q, ""))
}

func TestGradeAnswerTrueFalseIsCaseSensitive(t *testing.T) {
	q := &model.LessonQuestion{
		QuestionID:    "q-tf",
		QuestionType:  model.QuestionTrueFalse,
		Options:       json.RawMessage(`["true","false"]`),
		CorrectAnswer: json.RawMessage(`"true"`),
	}

	assert.True(t, GradeAnswer(q, "true"))
	assert.False(t, GradeAnswer(q, "True"))
	assert.False(t, GradeAnswer(q, "false"))
}

func TestGradeAnswerFreeResponse(t *testing.T) {
	q := frQuestion("financial gps", "gps")

	cases := []struct {
		answer string
		want   bool
	}{
		{"financial gps", true},
		{"Financial GPS", true},
		{"  GPS  ", true},
		{"gps", true},
		{"money map", false},
		{"", false},
		{"   ", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GradeAnswer(q, tc.answer), "answer %q", tc.answer)
	}
}

func TestGradeAnswerFreeResponseSingleStringAnswer(t *testing.T) {
	// 可接受答案允许存成单个字符串而非数组
	q := &model.LessonQuestion{
		QuestionID:    "q-fr-one",
		QuestionType:  model.QuestionFreeResponse,
		CorrectAnswer: json.RawMessage(`"复利"`),
	}
	assert.True(t, GradeAnswer(q, "复利"))
	assert.False(t, GradeAnswer(q, "单利"))
}

func TestGradeAnswerUnknownTypeAlwaysIncorrect(t *testing.T) {
	q := &model.LessonQuestion{
		QuestionID:    "q-x",
		QuestionType:  "matching",
		CorrectAnswer: json.RawMessage(`"whatever"`),
	}
	assert.False(t, GradeAnswer(q, "whatever"))
}

func TestGradeAnswerIsDeterministic(t *testing.T) {
	q := frQuestion("gps")
	for i := 0; i < 10; i++ {
		assert.True(t, GradeAnswer(q, " GPS "))
	}
}

func TestNormalizeAnswerIdempotent(t *testing.T) {
	inputs := []string{"  Financial GPS ", "gps", "", "  ", "预算 "}
	for _, in := range inputs {
		once := NormalizeAnswer(in)
		assert.Equal(t, once, NormalizeAnswer(once))
	}
}
