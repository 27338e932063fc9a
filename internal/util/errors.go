package util

import "errors"

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrEmailRegistered  = errors.New("该邮箱已被注册")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnauthorized     = errors.New("unauthorized")

	// 课程/测验
	ErrLessonNotFound         = errors.New("lesson not found")
	ErrQuizUnavailable        = errors.New("lesson has no quiz")
	ErrAttemptNotFound        = errors.New("quiz attempt not found")
	ErrMissingAnswer          = errors.New("current question has no answer")
	ErrAlreadyAtFirstQuestion = errors.New("already at the first question")
	ErrAlreadyAtLastQuestion  = errors.New("already at the last question")
	ErrNotAtLastQuestion      = errors.New("submit is only allowed on the last question")
	ErrQuizNotSubmitted       = errors.New("quiz has not been submitted")
	ErrQuizAlreadySubmitted   = errors.New("quiz already submitted")
	ErrSubmitInProgress       = errors.New("a submission is already in progress")
	ErrQuestionNotFound       = errors.New("question not found")

	// 社区故事
	ErrStoryNotFound   = errors.New("story not found")
	ErrEmptyContent    = errors.New("content is empty")
	ErrContentTooLong  = errors.New("content exceeds the maximum length")
	ErrUnsupportedFile = errors.New("unsupported file type")
)
