package service

import (
	"context"
	"finlit_backend/internal/model"
	"finlit_backend/internal/repository"
	"finlit_backend/internal/util"
	"finlit_backend/pkg/logger"
	"finlit_backend/pkg/monitoring"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HighlightSeconds 回看答错段落时前端高亮的持续秒数
const HighlightSeconds = 3

// AttemptStore 答题会话存取，键为 (用户, 课程)
type AttemptStore interface {
	Get(ctx context.Context, userID uint, lessonID string) (*model.QuizAttempt, error)
	Save(ctx context.Context, userID uint, attempt *model.QuizAttempt) error
	Delete(ctx context.Context, userID uint, lessonID string) error
}

// CompletionStore 已完成课程列表的整存整取
type CompletionStore interface {
	ReadCompletedLessons(ctx context.Context, userID uint) ([]string, error)
	WriteCompletedLessons(ctx context.Context, userID uint, lessonIDs []string) error
}

// ProgressNotifier 课程完成后的刷新回调，由调用方注入
// 实现只负责通知"该重新拉取进度了"，不得阻塞提交流程
type ProgressNotifier interface {
	LessonCompleted(userID uint, lessonID string)
}

// QuizService 测验状态机
// 状态流转: not_started → in_progress → submitted，submitted 可经 retake 回到
// in_progress，in_progress 可经 abandon 丢弃。所有门禁（必须作答才能下一题、
// 必须全部作答且停在最后一题才能提交）都在这里收口
type QuizService struct {
	Lessons     *LessonService
	Attempts    AttemptStore
	Completions CompletionStore
	ResultRepo  *repository.QuizResultRepository
	UserRepo    *repository.UserRepository
	Notifier    ProgressNotifier

	// 同一会话同时只允许一个提交在途
	submitting sync.Map
}

func NewQuizService(
	lessons *LessonService,
	attempts AttemptStore,
	completions CompletionStore,
	resultRepo *repository.QuizResultRepository,
	userRepo *repository.UserRepository,
	notifier ProgressNotifier,
) *QuizService {
	return &QuizService{
		Lessons:     lessons,
		Attempts:    attempts,
		Completions: completions,
		ResultRepo:  resultRepo,
		UserRepo:    userRepo,
		Notifier:    notifier,
	}
}

// StartQuiz 开始（或重新开始）一门课程的测验：光标归零、作答清空
func (s *QuizService) StartQuiz(ctx context.Context, userID uint, lessonID string) (*model.QuizAttempt, error) {
	questions, err := s.Lessons.QuizQuestions(lessonID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrQuizUnavailable
	}

	attempt := &model.QuizAttempt{
		LessonID:             lessonID,
		State:                model.AttemptStateInProgress,
		CurrentQuestionIndex: 0,
		Answers:              map[string]string{},
		StartedAt:            time.Now(),
	}
	if err := s.Attempts.Save(ctx, userID, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// GetAttempt 查询当前会话，不存在返回 ErrAttemptNotFound
func (s *QuizService) GetAttempt(ctx context.Context, userID uint, lessonID string) (*model.QuizAttempt, error) {
	attempt, err := s.Attempts.Get(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, util.ErrAttemptNotFound
	}
	return attempt, nil
}

// Answer 记录当前题目的答案，覆盖旧答案，不发生状态流转
func (s *QuizService) Answer(ctx context.Context, userID uint, lessonID, answer string) (*model.QuizAttempt, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, util.ErrMissingAnswer
	}

	attempt, questions, err := s.inProgressAttempt(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	question := questions[attempt.CurrentQuestionIndex]
	attempt.Answers[question.QuestionID] = answer

	if err := s.Attempts.Save(ctx, userID, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// Next 前进到下一题；当前题未作答或已在最后一题时拒绝
func (s *QuizService) Next(ctx context.Context, userID uint, lessonID string) (*model.QuizAttempt, error) {
	attempt, questions, err := s.inProgressAttempt(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	current := questions[attempt.CurrentQuestionIndex]
	if strings.TrimSpace(attempt.Answers[current.QuestionID]) == "" {
		return nil, util.ErrMissingAnswer
	}
	if attempt.CurrentQuestionIndex >= len(questions)-1 {
		return nil, util.ErrAlreadyAtLastQuestion
	}

	attempt.CurrentQuestionIndex++
	if err := s.Attempts.Save(ctx, userID, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// Previous 回退到上一题；已在第一题时拒绝，不清除任何作答
func (s *QuizService) Previous(ctx context.Context, userID uint, lessonID string) (*model.QuizAttempt, error) {
	attempt, _, err := s.inProgressAttempt(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	if attempt.CurrentQuestionIndex <= 0 {
		return nil, util.ErrAlreadyAtFirstQuestion
	}

	attempt.CurrentQuestionIndex--
	if err := s.Attempts.Save(ctx, userID, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// Submit 提交并判分
// 门禁：必须处于 in_progress、光标停在最后一题、每道题都有非空答案。
// 同一会话的并发提交直接拒绝；满分触发完成流程，完成记录落盘失败只记日志，
// 绝不回滚 submitted 状态
func (s *QuizService) Submit(ctx context.Context, userID uint, lessonID string) (*model.QuizAttempt, error) {
	key := sessionKey(userID, lessonID)
	if _, inFlight := s.submitting.LoadOrStore(key, struct{}{}); inFlight {
		return nil, util.ErrSubmitInProgress
	}
	defer s.submitting.Delete(key)

	attempt, questions, err := s.inProgressAttempt(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	if attempt.CurrentQuestionIndex != len(questions)-1 {
		return nil, util.ErrNotAtLastQuestion
	}
	for i := range questions {
		if strings.TrimSpace(attempt.Answers[questions[i].QuestionID]) == "" {
			return nil, util.ErrMissingAnswer
		}
	}

	result := gradeAll(questions, attempt.Answers)

	now := time.Now()
	attempt.State = model.AttemptStateSubmitted
	attempt.SubmittedAt = &now
	attempt.Result = result

	perfect := result.Perfect()
	if perfect {
		result.CompletionPersisted = s.recordCompletion(ctx, userID, lessonID, result)
		// 通知方恰好调用一次，无论落盘成败
		if s.Notifier != nil {
			s.Notifier.LessonCompleted(userID, lessonID)
		}
	}
	monitoring.RecordQuizSubmission(lessonID, perfect)

	// 提交历史尽力而为
	if s.ResultRepo != nil {
		record := &model.QuizSubmissionRecord{
			UserID:      userID,
			LessonRef:   lessonID,
			Score:       result.Score,
			Total:       result.Total,
			Answers:     attempt.Answers,
			SubmittedAt: now,
		}
		if err := s.ResultRepo.SaveSubmission(record); err != nil {
			logger.Log.Error("failed to save quiz submission record",
				zap.Uint("userId", userID), zap.String("lessonId", lessonID), zap.Error(err))
		}
	}

	// 会话写回失败同样不回滚本次结果
	if err := s.Attempts.Save(ctx, userID, attempt); err != nil {
		logger.Log.Error("failed to persist submitted attempt",
			zap.Uint("userId", userID), zap.String("lessonId", lessonID), zap.Error(err))
	}

	return attempt, nil
}

// Retake 重考：清空结果与作答，光标归零，回到 in_progress
func (s *QuizService) Retake(ctx context.Context, userID uint, lessonID string) (*model.QuizAttempt, error) {
	attempt, err := s.GetAttempt(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	if attempt.State != model.AttemptStateSubmitted {
		return nil, util.ErrQuizNotSubmitted
	}

	attempt.State = model.AttemptStateInProgress
	attempt.CurrentQuestionIndex = 0
	attempt.Answers = map[string]string{}
	attempt.Result = nil
	attempt.SubmittedAt = nil
	attempt.StartedAt = time.Now()

	if err := s.Attempts.Save(ctx, userID, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// Abandon 放弃会话，幂等：会话不存在也算成功
func (s *QuizService) Abandon(ctx context.Context, userID uint, lessonID string) error {
	return s.Attempts.Delete(ctx, userID, lessonID)
}

// ReviewTarget 答错回看的定位信息
type ReviewTarget struct {
	QuestionID       string `json:"questionId"`
	ContentIndex     *int   `json:"contentIndex"`
	Highlight        bool   `json:"highlight"`
	HighlightSeconds int    `json:"highlightSeconds,omitempty"`
}

// ReviewIncorrect 提交后回看某道错题对应的正文段落
// 纯导航副作用：不改变会话状态；题目没有可用的回看下标时降级为不高亮
func (s *QuizService) ReviewIncorrect(ctx context.Context, userID uint, lessonID, questionID string) (*ReviewTarget, error) {
	attempt, err := s.GetAttempt(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	if attempt.State != model.AttemptStateSubmitted || attempt.Result == nil {
		return nil, util.ErrQuizNotSubmitted
	}

	for _, iq := range attempt.Result.IncorrectQuestions {
		if iq.QuestionID != questionID {
			continue
		}
		target := &ReviewTarget{QuestionID: questionID}
		if iq.RelatedContentIndex != nil {
			contentLen, err := s.Lessons.ContentLength(lessonID)
			if err == nil && *iq.RelatedContentIndex >= 0 && *iq.RelatedContentIndex < contentLen {
				target.ContentIndex = iq.RelatedContentIndex
				target.Highlight = true
				target.HighlightSeconds = HighlightSeconds
			}
		}
		return target, nil
	}
	return nil, util.ErrQuestionNotFound
}

// UserProgress 课程完成进度
type UserProgress struct {
	CompletedLessonIDs []string `json:"completedLessonIds"`
	TotalLessons       int      `json:"totalLessons"`
	Percent            float64  `json:"percent"`
}

// GetProgress 读取用户完成进度，存储读取失败按空处理
func (s *QuizService) GetProgress(ctx context.Context, userID uint) *UserProgress {
	ids, err := s.Completions.ReadCompletedLessons(ctx, userID)
	if err != nil {
		logger.Log.Warn("failed to read completed lessons",
			zap.Uint("userId", userID), zap.Error(err))
		ids = []string{}
	}

	total := s.Lessons.TotalLessons()
	progress := &UserProgress{
		CompletedLessonIDs: ids,
		TotalLessons:       total,
	}
	if total > 0 {
		progress.Percent = float64(len(ids)) / float64(total) * 100
	}
	return progress
}

// inProgressAttempt 取出处于 in_progress 的会话及其题目
func (s *QuizService) inProgressAttempt(ctx context.Context, userID uint, lessonID string) (*model.QuizAttempt, []model.LessonQuestion, error) {
	attempt, err := s.GetAttempt(ctx, userID, lessonID)
	if err != nil {
		return nil, nil, err
	}
	if attempt.State == model.AttemptStateSubmitted {
		return nil, nil, util.ErrQuizAlreadySubmitted
	}
	if attempt.State != model.AttemptStateInProgress {
		return nil, nil, util.ErrAttemptNotFound
	}

	questions, err := s.Lessons.QuizQuestions(lessonID)
	if err != nil {
		return nil, nil, err
	}
	if len(questions) == 0 {
		return nil, nil, util.ErrQuizUnavailable
	}
	if attempt.CurrentQuestionIndex < 0 {
		attempt.CurrentQuestionIndex = 0
	}
	if attempt.CurrentQuestionIndex >= len(questions) {
		attempt.CurrentQuestionIndex = len(questions) - 1
	}
	return attempt, questions, nil
}

// gradeAll 对全部题目判分并汇总
func gradeAll(questions []model.LessonQuestion, answers map[string]string) *model.QuizResult {
	result := &model.QuizResult{
		Total:              len(questions),
		IncorrectQuestions: []model.IncorrectQuestion{},
	}

	for i := range questions {
		q := &questions[i]
		userAnswer := answers[q.QuestionID]
		if GradeAnswer(q, userAnswer) {
			result.Score++
			continue
		}
		result.IncorrectQuestions = append(result.IncorrectQuestions, model.IncorrectQuestion{
			QuestionID:          q.QuestionID,
			QuestionText:        q.QuestionText,
			UserAnswer:          userAnswer,
			CorrectAnswers:      correctAnswersForDisplay(q),
			RelatedContentIndex: q.RelatedContentIndex,
			Explanation:         q.Explanation,
		})
	}
	return result
}

// correctAnswersForDisplay 错题回显用的正确答案列表
func correctAnswersForDisplay(q *model.LessonQuestion) []string {
	switch q.QuestionType {
	case model.QuestionMultipleChoice, model.QuestionTrueFalse:
		if answer, ok := decodeSingleAnswer(q.CorrectAnswer); ok {
			return []string{answer}
		}
		return nil
	case model.QuestionFreeResponse:
		return decodeAcceptedAnswers(q.CorrectAnswer)
	default:
		return nil
	}
}

// recordCompletion 满分完成流程：整读列表→不在则追加→整写回
// 返回是否成功落盘；任何失败都只记日志，由返回值向上暴露
func (s *QuizService) recordCompletion(ctx context.Context, userID uint, lessonID string, result *model.QuizResult) bool {
	ids, err := s.Completions.ReadCompletedLessons(ctx, userID)
	if err != nil {
		logger.Log.Warn("failed to read completed lessons before write, assuming empty",
			zap.Uint("userId", userID), zap.Error(err))
		ids = []string{}
	}

	for _, id := range ids {
		if id == lessonID {
			return true // 重复满分不重复记录、不重复发经验
		}
	}

	ids = append(ids, lessonID)
	persisted := true
	if err := s.Completions.WriteCompletedLessons(ctx, userID, ids); err != nil {
		logger.Log.Error("failed to persist lesson completion",
			zap.Uint("userId", userID), zap.String("lessonId", lessonID), zap.Error(err))
		persisted = false
	}

	// 首次完成奖励经验值，镜像落库，均尽力而为
	if s.UserRepo != nil {
		if reward := s.Lessons.XPReward(lessonID); reward > 0 {
			if err := s.UserRepo.AddXP(userID, reward); err != nil {
				logger.Log.Error("failed to award lesson xp",
					zap.Uint("userId", userID), zap.String("lessonId", lessonID), zap.Error(err))
			}
		}
	}
	if s.ResultRepo != nil {
		completion := &model.LessonCompletion{
			UserID:      userID,
			LessonRef:   lessonID,
			Score:       result.Score,
			Total:       result.Total,
			CompletedAt: time.Now(),
		}
		if err := s.ResultRepo.SaveCompletion(completion); err != nil {
			logger.Log.Error("failed to mirror lesson completion",
				zap.Uint("userId", userID), zap.String("lessonId", lessonID), zap.Error(err))
		}
	}

	return persisted
}

func sessionKey(userID uint, lessonID string) string {
	return fmt.Sprintf("%d:%s", userID, lessonID)
}
