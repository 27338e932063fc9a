package service

import (
	"encoding/json"
	"finlit_backend/internal/model"
	"finlit_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

// newCatalogForTest 跳过数据库，直接用给定课程构建内存目录
func newCatalogForTest(lessons ...*model.Lesson) *LessonService {
	s := &LessonService{catalog: map[string]*catalogEntry{}}
	for _, lesson := range lessons {
		entry := validateLesson(lesson)
		s.catalog[lesson.LessonID] = entry
		s.ordered = append(s.ordered, entry)
	}
	s.loaded = true
	return s
}

func TestNormalizeContentFallback(t *testing.T) {
	cases := []struct {
		name string
		raw  json.RawMessage
	}{
		{"missing", nil},
		{"malformed", json.RawMessage(`{"not":"an array"`)},
		{"empty array", json.RawMessage(`[]`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			blocks, warnings := normalizeContent(tc.raw)
			require.Len(t, blocks, 1)
			assert.Equal(t, fallbackContentText, blocks[0].Text)
			assert.NotEmpty(t, warnings)
		})
	}
}

func TestNormalizeContentValid(t *testing.T) {
	raw := json.RawMessage(`[{"text":"第一段"},{"text":"第二段","mediaUrl":"/img/a.png"}]`)
	blocks, warnings := normalizeContent(raw)
	require.Len(t, blocks, 2)
	assert.Empty(t, warnings)
	assert.Equal(t, "/img/a.png", blocks[1].MediaURL)
}

func TestNormalizeQuestionsDropsMalformed(t *testing.T) {
	questions := []model.LessonQuestion{
		{
			QuestionID:    "ok-mc",
			QuestionType:  model.QuestionMultipleChoice,
			Options:       json.RawMessage(`["a","b"]`),
			CorrectAnswer: json.RawMessage(`"a"`),
		},
		{
			// 选项缺失
			QuestionID:    "bad-options",
			QuestionType:  model.QuestionMultipleChoice,
			CorrectAnswer: json.RawMessage(`"a"`),
		},
		{
			// 正确答案不是字符串
			QuestionID:    "bad-answer",
			QuestionType:  model.QuestionTrueFalse,
			Options:       json.RawMessage(`["true","false"]`),
			CorrectAnswer: json.RawMessage(`[1,2]`),
		},
		{
			// 简答题没有可接受答案
			QuestionID:   "bad-fr",
			QuestionType: model.QuestionFreeResponse,
		},
		{
			QuestionID:    "bad-type",
			QuestionType:  "essay",
			CorrectAnswer: json.RawMessage(`"x"`),
		},
	}

	valid, warnings := normalizeQuestions(questions, 3)
	require.Len(t, valid, 1)
	assert.Equal(t, "ok-mc", valid[0].QuestionID)
	assert.Len(t, warnings, 4)
}

func TestNormalizeQuestionsClearsOutOfRangeIndex(t *testing.T) {
	questions := []model.LessonQuestion{
		{
			QuestionID:          "in-range",
			QuestionType:        model.QuestionFreeResponse,
			CorrectAnswer:       json.RawMessage(`["gps"]`),
			RelatedContentIndex: intPtr(1),
		},
		{
			QuestionID:          "out-of-range",
			QuestionType:        model.QuestionFreeResponse,
			CorrectAnswer:       json.RawMessage(`["gps"]`),
			RelatedContentIndex: intPtr(9),
		},
		{
			QuestionID:          "negative",
			QuestionType:        model.QuestionFreeResponse,
			CorrectAnswer:       json.RawMessage(`["gps"]`),
			RelatedContentIndex: intPtr(-1),
		},
	}

	valid, warnings := normalizeQuestions(questions, 2)
	require.Len(t, valid, 3)
	assert.Equal(t, 1, *valid[0].RelatedContentIndex)
	assert.Nil(t, valid[1].RelatedContentIndex)
	assert.Nil(t, valid[2].RelatedContentIndex)
	assert.Len(t, warnings, 2)
}

func TestGetLessonHidesAnswersAndPatchesContent(t *testing.T) {
	svc := newCatalogForTest(&model.Lesson{
		LessonID: "broken-content",
		Title:    "预算入门",
		Category: "budgeting",
		XPReward: 100,
		Content:  json.RawMessage(`not json`),
		Questions: []model.LessonQuestion{
			{
				QuestionID:    "q1",
				QuestionType:  model.QuestionMultipleChoice,
				Options:       json.RawMessage(`["a","b"]`),
				CorrectAnswer: json.RawMessage(`"a"`),
			},
		},
	})

	view, err := svc.GetLesson("broken-content")
	require.NoError(t, err)

	// 正文降级为占位段落而不是报错
	require.Len(t, view.Content, 1)
	assert.Equal(t, fallbackContentText, view.Content[0].Text)

	// 下发的题目不携带正确答案
	require.Len(t, view.Questions, 1)
	assert.Equal(t, []string{"a", "b"}, view.Questions[0].Options)
	assert.True(t, view.HasQuiz)

	_, err = svc.GetLesson("no-such-lesson")
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestListLessonsFiltersByCategory(t *testing.T) {
	svc := newCatalogForTest(
		&model.Lesson{LessonID: "a", Category: "budgeting", Content: json.RawMessage(`[{"text":"x"}]`)},
		&model.Lesson{LessonID: "b", Category: "saving", Content: json.RawMessage(`[{"text":"y"}]`)},
		&model.Lesson{LessonID: "c", Category: "budgeting", Content: json.RawMessage(`[{"text":"z"}]`)},
	)

	all := svc.ListLessons("")
	assert.Len(t, all, 3)

	budgeting := svc.ListLessons("budgeting")
	require.Len(t, budgeting, 2)
	for _, l := range budgeting {
		assert.Equal(t, "budgeting", l.Category)
		assert.False(t, l.HasQuiz)
	}
	assert.Equal(t, 3, svc.TotalLessons())
}
