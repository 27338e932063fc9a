package repository

import (
	"errors"
	"finlit_backend/internal/model"

	"gorm.io/gorm"
)

type StoryRepository struct {
	DB *gorm.DB
}

func NewStoryRepository(db *gorm.DB) *StoryRepository {
	return &StoryRepository{DB: db}
}

func (r *StoryRepository) FindWithPagination(offset, limit int, tab string, userID uint) ([]model.Story, int64, error) {
	var stories []model.Story
	var total int64

	query := r.DB.Model(&model.Story{})

	if tab == "my" && userID > 0 {
		query = query.Where("author_id = ?", userID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch tab {
	case "popular":
		query = query.Order("likes DESC, created_at DESC")
	default:
		query = query.Order("created_at DESC")
	}

	err := query.Offset(offset).Limit(limit).
		Preload("Author").
		Find(&stories).Error
	if err != nil {
		return nil, 0, err
	}

	return stories, total, nil
}

func (r *StoryRepository) FindByID(id string) (*model.Story, error) {
	var story model.Story
	err := r.DB.Preload("Author").First(&story, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *StoryRepository) Create(story *model.Story) error {
	return r.DB.Create(story).Error
}

func (r *StoryRepository) Delete(id string) error {
	return r.DB.Delete(&model.Story{}, "id = ?", id).Error
}

func (r *StoryRepository) FindComments(storyID string, offset, limit int) ([]model.StoryComment, int64, error) {
	var comments []model.StoryComment
	var total int64

	query := r.DB.Model(&model.StoryComment{}).Where("story_id = ?", storyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at ASC").
		Offset(offset).Limit(limit).
		Preload("Author").
		Find(&comments).Error
	return comments, total, err
}

func (r *StoryRepository) CreateComment(comment *model.StoryComment) error {
	return r.DB.Create(comment).Error
}

// ToggleLike 点赞/取消点赞，返回操作后是否已点赞
// 点赞计数与点赞记录在同一事务里更新
func (r *StoryRepository) ToggleLike(userID uint, storyID string) (bool, error) {
	liked := false
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var like model.StoryLike
		err := tx.Where("user_id = ? AND story_id = ?", userID, storyID).First(&like).Error
		if err == nil {
			if err := tx.Unscoped().Delete(&like).Error; err != nil {
				return err
			}
			return tx.Model(&model.Story{}).Where("id = ?", storyID).
				Update("likes", gorm.Expr("GREATEST(likes - 1, 0)")).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&model.StoryLike{UserID: userID, StoryID: storyID}).Error; err != nil {
			return err
		}
		liked = true
		return tx.Model(&model.Story{}).Where("id = ?", storyID).
			Update("likes", gorm.Expr("likes + 1")).Error
	})
	return liked, err
}

// HasLiked 查询用户是否点赞过某故事
func (r *StoryRepository) HasLiked(userID uint, storyID string) bool {
	var count int64
	r.DB.Model(&model.StoryLike{}).
		Where("user_id = ? AND story_id = ?", userID, storyID).
		Count(&count)
	return count > 0
}
