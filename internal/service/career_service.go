package service

import (
	"errors"
	"finlit_backend/internal/model"
	"finlit_backend/internal/repository"

	"gorm.io/gorm"
)

type CareerService struct {
	CareerRepo *repository.CareerRepository
}

func NewCareerService(careerRepo *repository.CareerRepository) *CareerService {
	return &CareerService{CareerRepo: careerRepo}
}

func (s *CareerService) GetCareers(category string) ([]model.Career, error) {
	return s.CareerRepo.FindAll(category)
}

func (s *CareerService) GetCareer(id uint) (*model.Career, error) {
	career, err := s.CareerRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return career, nil
}

// CostOfLivingResponse 生活成本条目，带月度合计
type CostOfLivingResponse struct {
	model.CostOfLiving
	MonthlyTotal int `json:"monthlyTotal"`
}

func (s *CareerService) GetCostOfLiving(city, region string) ([]CostOfLivingResponse, error) {
	entries, err := s.CareerRepo.FindCostOfLiving(city, region)
	if err != nil {
		return nil, err
	}

	responses := make([]CostOfLivingResponse, len(entries))
	for i := range entries {
		responses[i] = CostOfLivingResponse{
			CostOfLiving: entries[i],
			MonthlyTotal: entries[i].MonthlyTotal(),
		}
	}
	return responses, nil
}
