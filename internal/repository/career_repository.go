package repository

import (
	"finlit_backend/internal/model"

	"gorm.io/gorm"
)

type CareerRepository struct {
	DB *gorm.DB
}

func NewCareerRepository(db *gorm.DB) *CareerRepository {
	return &CareerRepository{DB: db}
}

func (r *CareerRepository) FindAll(category string) ([]model.Career, error) {
	var careers []model.Career
	query := r.DB.Model(&model.Career{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("category ASC, title ASC").Find(&careers).Error
	return careers, err
}

func (r *CareerRepository) FindByID(id uint) (*model.Career, error) {
	var career model.Career
	err := r.DB.First(&career, id).Error
	if err != nil {
		return nil, err
	}
	return &career, nil
}

func (r *CareerRepository) FindCostOfLiving(city, region string) ([]model.CostOfLiving, error) {
	var entries []model.CostOfLiving
	query := r.DB.Model(&model.CostOfLiving{})
	if city != "" {
		query = query.Where("city = ?", city)
	}
	if region != "" {
		query = query.Where("region = ?", region)
	}
	err := query.Order("city ASC").Find(&entries).Error
	return entries, err
}
