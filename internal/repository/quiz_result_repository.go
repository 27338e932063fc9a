package repository

import (
	"errors"
	"finlit_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type QuizResultRepository struct {
	DB *gorm.DB
}

func NewQuizResultRepository(db *gorm.DB) *QuizResultRepository {
	return &QuizResultRepository{DB: db}
}

func (r *QuizResultRepository) SaveSubmission(record *model.QuizSubmissionRecord) error {
	if record.SubmittedAt.IsZero() {
		record.SubmittedAt = time.Now()
	}
	return r.DB.Create(record).Error
}

// SaveCompletion 写入满分完成镜像，同一用户同一课程只保留首次记录
func (r *QuizResultRepository) SaveCompletion(completion *model.LessonCompletion) error {
	var existing model.LessonCompletion
	err := r.DB.Where("user_id = ? AND lesson_ref = ?", completion.UserID, completion.LessonRef).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if completion.CompletedAt.IsZero() {
		completion.CompletedAt = time.Now()
	}
	return r.DB.Create(completion).Error
}

func (r *QuizResultRepository) FindSubmissions(userID uint, lessonRef string, limit int) ([]model.QuizSubmissionRecord, error) {
	var records []model.QuizSubmissionRecord
	query := r.DB.Where("user_id = ?", userID).Order("submitted_at DESC")
	if lessonRef != "" {
		query = query.Where("lesson_ref = ?", lessonRef)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&records).Error
	return records, err
}

func (r *QuizResultRepository) CountCompletions(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LessonCompletion{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
