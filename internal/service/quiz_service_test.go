package service

import (
	"context"
	"encoding/json"
	"errors"
	"finlit_backend/internal/model"
	"finlit_backend/internal/util"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- 内存版依赖，替代 Redis ----

type memAttemptStore struct {
	attempts map[string]*model.QuizAttempt
	saveErr  error
}

func newMemAttemptStore() *memAttemptStore {
	return &memAttemptStore{attempts: map[string]*model.QuizAttempt{}}
}

func (s *memAttemptStore) key(userID uint, lessonID string) string {
	return fmt.Sprintf("%d:%s", userID, lessonID)
}

func (s *memAttemptStore) Get(ctx context.Context, userID uint, lessonID string) (*model.QuizAttempt, error) {
	return s.attempts[s.key(userID, lessonID)], nil
}

func (s *memAttemptStore) Save(ctx context.Context, userID uint, attempt *model.QuizAttempt) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.attempts[s.key(userID, attempt.LessonID)] = attempt
	return nil
}

func (s *memAttemptStore) Delete(ctx context.Context, userID uint, lessonID string) error {
	delete(s.attempts, s.key(userID, lessonID))
	return nil
}

type memCompletionStore struct {
	completed map[uint][]string
	readErr   error
	writeErr  error
}

func newMemCompletionStore() *memCompletionStore {
	return &memCompletionStore{completed: map[uint][]string{}}
}

func (s *memCompletionStore) ReadCompletedLessons(ctx context.Context, userID uint) ([]string, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return append([]string{}, s.completed[userID]...), nil
}

func (s *memCompletionStore) WriteCompletedLessons(ctx context.Context, userID uint, lessonIDs []string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.completed[userID] = append([]string{}, lessonIDs...)
	return nil
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) LessonCompleted(userID uint, lessonID string) {
	n.events = append(n.events, fmt.Sprintf("%d:%s", userID, lessonID))
}

// ---- 夹具 ----

const testLessonID = "budgeting-basics"

func quizLesson() *model.Lesson {
	return &model.Lesson{
		LessonID: testLessonID,
		Title:    "预算入门",
		Category: "budgeting",
		XPReward: 100,
		Content:  json.RawMessage(`[{"text":"什么是预算"},{"text":"预算是你的财务GPS"}]`),
		Questions: []model.LessonQuestion{
			{
				QuestionID:          "q1",
				QuestionType:        model.QuestionMultipleChoice,
				QuestionText:        "预算的首要作用是什么？",
				Options:             json.RawMessage(`["记录收支","炫耀消费"]`),
				CorrectAnswer:       json.RawMessage(`"记录收支"`),
				RelatedContentIndex: intPtr(0),
			},
			{
				QuestionID:    "q2",
				QuestionType:  model.QuestionTrueFalse,
				QuestionText:  "预算只适合成年人。",
				Options:       json.RawMessage(`["true","false"]`),
				CorrectAnswer: json.RawMessage(`"false"`),
			},
			{
				QuestionID:          "q3",
				QuestionType:        model.QuestionFreeResponse,
				QuestionText:        "预算常被比作什么工具？",
				CorrectAnswer:       json.RawMessage(`["financial gps","gps"]`),
				RelatedContentIndex: intPtr(1),
				Explanation:         "预算像GPS一样指引资金流向。",
			},
		},
	}
}

type quizFixture struct {
	svc         *QuizService
	attempts    *memAttemptStore
	completions *memCompletionStore
	notifier    *recordingNotifier
}

func newQuizFixture(lessons ...*model.Lesson) *quizFixture {
	if len(lessons) == 0 {
		lessons = []*model.Lesson{quizLesson()}
	}
	f := &quizFixture{
		attempts:    newMemAttemptStore(),
		completions: newMemCompletionStore(),
		notifier:    &recordingNotifier{},
	}
	f.svc = NewQuizService(newCatalogForTest(lessons...), f.attempts, f.completions, nil, nil, f.notifier)
	return f
}

// answerAndAdvance 逐题作答并走到最后一题
func (f *quizFixture) answerAndAdvance(t *testing.T, userID uint, answers ...string) {
	t.Helper()
	ctx := context.Background()
	for i, answer := range answers {
		_, err := f.svc.Answer(ctx, userID, testLessonID, answer)
		require.NoError(t, err)
		if i < len(answers)-1 {
			_, err = f.svc.Next(ctx, userID, testLessonID)
			require.NoError(t, err)
		}
	}
}

// ---- 用例 ----

func TestStartQuiz(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	attempt, err := f.svc.StartQuiz(ctx, 1, testLessonID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptStateInProgress, attempt.State)
	assert.Equal(t, 0, attempt.CurrentQuestionIndex)
	assert.Empty(t, attempt.Answers)

	_, err = f.svc.StartQuiz(ctx, 1, "missing")
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestStartQuizWithoutQuestions(t *testing.T) {
	f := newQuizFixture(&model.Lesson{
		LessonID: testLessonID,
		Content:  json.RawMessage(`[{"text":"没有测验的课"}]`),
	})

	_, err := f.svc.StartQuiz(context.Background(), 1, testLessonID)
	assert.ErrorIs(t, err, util.ErrQuizUnavailable)
}

func TestGetAttemptNotStarted(t *testing.T) {
	f := newQuizFixture()
	_, err := f.svc.GetAttempt(context.Background(), 1, testLessonID)
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestAnswerRejectsBlank(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()
	_, err := f.svc.StartQuiz(ctx, 1, testLessonID)
	require.NoError(t, err)

	_, err = f.svc.Answer(ctx, 1, testLessonID, "   ")
	assert.ErrorIs(t, err, util.ErrMissingAnswer)
}

func TestAnswerOverwritesPrevious(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()
	_, err := f.svc.StartQuiz(ctx, 1, testLessonID)
	require.NoError(t, err)

	_, err = f.svc.Answer(ctx, 1, testLessonID, "炫耀消费")
	require.NoError(t, err)
	attempt, err := f.svc.Answer(ctx, 1, testLessonID, "记录收支")
	require.NoError(t, err)
	assert.Equal(t, "记录收支", attempt.Answers["q1"])
}

func TestNavigationGates(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()
	_, err := f.svc.StartQuiz(ctx, 1, testLessonID)
	require.NoError(t, err)

	// 未作答不能前进
	_, err = f.svc.Next(ctx, 1, testLessonID)
	assert.ErrorIs(t, err, util.ErrMissingAnswer)

	// 第一题不能后退
	_, err = f.svc.Previous(ctx, 1, testLessonID)
	assert.ErrorIs(t, err, util.ErrAlreadyAtFirstQuestion)

	f.answerAndAdvance(t, 1, "记录收支", "false", "gps")

	// 最后一题不能再前进
	_, err = f.svc.Next(ctx, 1, testLessonID)
	assert.ErrorIs(t, err, util.ErrAlreadyAtLastQuestion)

	// 后退保留已有作答
	attempt, err := f.svc.Previous(ctx, 1, testLessonID)
	require.NoError(t, err)
	assert.Equal(t, 1, attempt.CurrentQuestionIndex)
	assert.Equal(t, "记录收支", attempt.Answers["q1"])
}

func TestSubmitRequiresLastQuestion(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()
	_, err := f.svc.StartQuiz(ctx, 1, testLessonID)
	require.NoError(t, err)

	_, err = f.svc.Answer(ctx, 1, testLessonID, "记录收支")
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, 1, testLessonID)
	assert.ErrorIs(t, err, util.ErrNotAtLastQuestion)
}

func TestSubmitRequiresAllAnswered(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()
	_, err := f.svc.StartQuiz(ctx, 1, testLessonID)
	require.NoError(t, err)

	// 走到最后一题但最后一题未作答
	f.answerAndAdvance(t, 1, "记录收支", "false")
	_, err = f.svc.Next(ctx, 1, testLessonID)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, 1, testLessonID)
	assert.ErrorIs(t, err, util.ErrMissingAnswer)
}

func TestSubmitPerfectScore(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()
	_, err := f.svc.StartQuiz(ctx, 7, testLessonID)
	require.NoError(t, err)

	// 简答题用带空白和大小写差异的变体作答
	f.answerAndAdvance(t, 7, "记录收支", "false", "  Financial GPS ")

	attempt, err := f.svc.Submit(ctx, 7, testLessonID)
	require.NoError(t, err)

	assert.Equal(t, model.AttemptStateSubmitted, attempt.State)
	require.NotNil(t, attempt.Result)
	assert.Equal(t, 3, attempt.Result.Score)
	assert.Equal(t, 3, attempt.Result.Total)
	assert.True(t, attempt.Result.Perfect())
	assert.Empty(t, attempt.Result.IncorrectQuestions)
	assert.True(t, attempt.Result.CompletionPersisted)
	assert.NotNil(t, attempt.SubmittedAt)

	// 通知恰好一次，完成列表恰好一条
	assert.Equal(t, []string{"7:" + testLessonID}, f.notifier.events)
	assert.Equal(t, []string{testLessonID}, f.completions.completed[7])

	progress := f.svc.GetProgress(ctx, 7)
	assert.Equal(t, 1, progress.TotalLessons)
	assert.InDelta(t, 100.0, progress.Percent, 0.001)
}

func TestSubmitImperfectScore(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()
	_, err := f.svc.StartQuiz(ctx, 2, testLessonID)
	require.NoError(t, err)

	f.answerAndAdvance(t, 2, "记录收支", "true", "gps")

	attempt, err := f.svc.Submit(ctx, 2, testLessonID)
	require.NoError(t, err)

	require.NotNil(t, attempt.Result)
	assert.Equal(t, 2, attempt.Result.Score)
	assert.False(t, attempt.Result.Perfect())
	require.Len(t, attempt.Result.IncorrectQuestions, 1)

	wrong := attempt.Result.IncorrectQuestions[0]
	assert.Equal(t, "q2", wrong.QuestionID)
	assert.Equal(t, "true", wrong.UserAnswer)
	assert.Equal(t, []string{"false"}, wrong.CorrectAnswers)

	// 非满分不算完成，也不发通知
	assert.Empty(t, f.notifier.events)
	assert.Empty(t, f.completions.completed[2])
}

func TestSubmitTwiceRejected(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()
	_, err := f.svc.StartQuiz(ctx, 1, testLessonID)
	require.NoError(t, err)
	f.answerAndAdvance(t, 1, "记录收支", "false", "gps")

	_, err = f.svc.Submit(ctx, 1, testLessonID)
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, 1, testLessonID)
	assert.ErrorIs(t, err, util.ErrQuizAlreadySubmitted)
}

func TestConcurrentSubmitRejected(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()
	_, err := f.svc.StartQuiz(ctx, 1, testLessonID)
	require.NoError(t, err)
	f.answerAndAdvance(t, 1, "记录收支", "false", "gps")

	// 模拟另一个提交在途
	f.svc.submitting.Store(sessionKey(1, testLessonID), struct{}{})
	_, err = f.svc.Submit(ctx, 1, testLessonID)
	assert.ErrorIs(t, err, util.ErrSubmitInProgress)

	// 在途提交结束后可正常提交
	f.svc.submitting.Delete(sessionKey(1, testLessonID))
	attempt, err := f.svc.Submit(ctx, 1, testLessonID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptStateSubmitted, attempt.State)
}

func TestCompletionWriteFailureDoesNotRevertSubmit(t *testing.T) {
	f := newQuizFixture()
	f.completions.writeErr = errors.New("redis down")
	ctx := context.Background()

	_, err := f.svc.StartQuiz(ctx, 1, testLessonID)
	require.NoError(t, err)
	f.answerAndAdvance(t, 1, "记录收支", "false", "gps")

	attempt, err := f.svc.Submit(ctx, 1, testLessonID)
	require.NoError(t, err)

	// 落盘失败只体现在标志位上，提交结果与通知照常
	assert.Equal(t, model.AttemptStateSubmitted, attempt.State)
	assert.True(t, attempt.Result.Perfect())
	assert.False(t, attempt.Result.CompletionPersisted)
	assert.Len(t, f.notifier.events, 1)
}

func TestRepeatPerfectDoesNotDuplicateCompletion(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	_, err := f.svc.StartQuiz(ctx, 1, testLessonID)
	require.NoError(t, err)
	f.answerAndAdvance(t, 1, "记录收支", "false", "gps")
	_, err = f.svc.Submit(ctx, 1, testLessonID)
	require.NoError(t, err)

	_, err = f.svc.Retake(ctx, 1, testLessonID)
	require.NoError(t, err)
	f.answerAndAdvance(t, 1, "记录收支", "false", "financial gps")
	attempt, err := f.svc.Submit(ctx, 1, testLessonID)
	require.NoError(t, err)

	assert.True(t, attempt.Result.CompletionPersisted)
	// 完成列表不重复，但每次满分提交都发通知
	assert.Equal(t, []string{testLessonID}, f.completions.completed[1])
	assert.Len(t, f.notifier.events, 2)
}

func TestRetake(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()
	_, err := f.svc.StartQuiz(ctx, 1, testLessonID)
	require.NoError(t, err)

	// 提交前不允许重考
	_, err = f.svc.Retake(ctx, 1, testLessonID)
	assert.ErrorIs(t, err, util.ErrQuizNotSubmitted)

	f.answerAndAdvance(t, 1, "记录收支", "false", "gps")
	_, err = f.svc.Submit(ctx, 1, testLessonID)
	require.NoError(t, err)

	attempt, err := f.svc.Retake(ctx, 1, testLessonID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptStateInProgress, attempt.State)
	assert.Equal(t, 0, attempt.CurrentQuestionIndex)
	assert.Empty(t, attempt.Answers)
	assert.Nil(t, attempt.Result)
	assert.Nil(t, attempt.SubmittedAt)
}

func TestAbandonIsIdempotent(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()
	_, err := f.svc.StartQuiz(ctx, 1, testLessonID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Abandon(ctx, 1, testLessonID))
	require.NoError(t, f.svc.Abandon(ctx, 1, testLessonID))

	_, err = f.svc.GetAttempt(ctx, 1, testLessonID)
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestReviewIncorrect(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()
	_, err := f.svc.StartQuiz(ctx, 1, testLessonID)
	require.NoError(t, err)

	// 提交前不允许回看
	_, err = f.svc.ReviewIncorrect(ctx, 1, testLessonID, "q3")
	assert.ErrorIs(t, err, util.ErrQuizNotSubmitted)

	// q1、q3 答错，q2 答对
	f.answerAndAdvance(t, 1, "炫耀消费", "false", "money map")
	_, err = f.svc.Submit(ctx, 1, testLessonID)
	require.NoError(t, err)

	target, err := f.svc.ReviewIncorrect(ctx, 1, testLessonID, "q3")
	require.NoError(t, err)
	require.NotNil(t, target.ContentIndex)
	assert.Equal(t, 1, *target.ContentIndex)
	assert.True(t, target.Highlight)
	assert.Equal(t, HighlightSeconds, target.HighlightSeconds)

	// 答对的题不在错题列表里
	_, err = f.svc.ReviewIncorrect(ctx, 1, testLessonID, "q2")
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)

	// 回看不改变会话状态
	attempt, err := f.svc.GetAttempt(ctx, 1, testLessonID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptStateSubmitted, attempt.State)
}

func TestReviewIncorrectWithoutContentIndex(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()
	_, err := f.svc.StartQuiz(ctx, 1, testLessonID)
	require.NoError(t, err)

	// q2 没有配置回看下标
	f.answerAndAdvance(t, 1, "记录收支", "true", "gps")
	_, err = f.svc.Submit(ctx, 1, testLessonID)
	require.NoError(t, err)

	target, err := f.svc.ReviewIncorrect(ctx, 1, testLessonID, "q2")
	require.NoError(t, err)
	assert.Nil(t, target.ContentIndex)
	assert.False(t, target.Highlight)
	assert.Zero(t, target.HighlightSeconds)
}

func TestGetProgressDegradesOnStoreError(t *testing.T) {
	f := newQuizFixture()
	f.completions.readErr = errors.New("redis down")

	progress := f.svc.GetProgress(context.Background(), 1)
	assert.Empty(t, progress.CompletedLessonIDs)
	assert.Equal(t, 1, progress.TotalLessons)
	assert.Zero(t, progress.Percent)
}
