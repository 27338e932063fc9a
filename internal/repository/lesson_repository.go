package repository

import (
	"finlit_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

// FindAll 读取全部课程目录（带题目），服务层在进程启动时调用一次并缓存
func (r *LessonRepository) FindAll() ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("lesson_questions.order ASC")
		}).
		Order("category ASC, `order` ASC").
		Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) FindByLessonID(lessonID string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("lesson_questions.order ASC")
		}).
		Where("lesson_id = ?", lessonID).
		First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}
