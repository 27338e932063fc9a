package repository

import (
	"finlit_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// AddXP 原子累加经验值
func (r *UserRepository) AddXP(userID uint, xp int) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("xp", gorm.Expr("xp + ?", xp)).
		Error
}

func (r *UserRepository) FindTopByXP(limit int) ([]model.User, error) {
	var users []model.User
	err := r.DB.Order("xp DESC").Limit(limit).Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateLastLogin(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_login", time.Now()).
		Error
}

func (r *UserRepository) UpdateLastSeen(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_seen", time.Now()).
		Error
}
