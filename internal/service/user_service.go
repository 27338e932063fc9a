package service

import (
	"context"
	"finlit_backend/internal/model"
	"finlit_backend/internal/repository"
	"finlit_backend/internal/util"
	"time"
)

// UserService 处理用户资料与经验等级
type UserService struct {
	UserRepo   *repository.UserRepository
	ResultRepo *repository.QuizResultRepository
	Quiz       *QuizService
}

func NewUserService(userRepo *repository.UserRepository, resultRepo *repository.QuizResultRepository, quiz *QuizService) *UserService {
	return &UserService{
		UserRepo:   userRepo,
		ResultRepo: resultRepo,
		Quiz:       quiz,
	}
}

// 等级门槛按 100, 300, 600, 1000 … 递增（升到第 n+1 级需要累计 100·n·(n+1)/2 经验），
// 对应边界: 0→1级, 100→2级, 300→3级, 600→4级
//
// LevelForXP 经验值推导等级，纯函数且随经验单调不减，仅用于展示
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	level := 1
	for threshold := 100; xp >= threshold; level++ {
		threshold += 100 * (level + 1)
	}
	return level
}

// ProfileResponse 个人主页数据
type ProfileResponse struct {
	ID               uint           `json:"id"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	Role             model.UserRole `json:"role"`
	Avatar           string         `json:"avatar"`
	Language         string         `json:"language"`
	XP               int            `json:"xp"`
	Level            int            `json:"level"`
	CompletedLessons int            `json:"completedLessons"`
	JoinedAt         time.Time      `json:"joinedAt"`
}

// GetProfile 读取个人主页：基础资料 + 经验等级 + 已完成课程数
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*ProfileResponse, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	completed := 0
	if s.Quiz != nil {
		completed = len(s.Quiz.GetProgress(ctx, userID).CompletedLessonIDs)
	}

	return &ProfileResponse{
		ID:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		Role:             user.Role,
		Avatar:           user.Avatar,
		Language:         user.Language,
		XP:               user.XP,
		Level:            LevelForXP(user.XP),
		CompletedLessons: completed,
		JoinedAt:         user.CreatedAt,
	}, nil
}

// UpdateProfileRequest 允许用户自助修改的字段
type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Language string `json:"language"`
}

func (s *UserService) UpdateProfile(userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Language != "" {
		user.Language = req.Language
	}
	user.UpdatedAt = time.Now()

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateAvatar(userID uint, avatarURL string) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return util.ErrUserNotFound
	}
	user.Avatar = avatarURL
	return s.UserRepo.Update(user)
}

// GetQuizHistory 用户的测验提交历史，lessonRef 为空时返回全部课程
func (s *UserService) GetQuizHistory(userID uint, lessonRef string, limit int) ([]model.QuizSubmissionRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.ResultRepo.FindSubmissions(userID, lessonRef, limit)
}

// UserOverview 管理端的用户概览
type UserOverview struct {
	Profile          *ProfileResponse `json:"profile"`
	TotalCompletions int64            `json:"totalCompletions"` // 数据库镜像中的完成记录数
	LastSeen         time.Time        `json:"lastSeen"`
}

// GetUserOverview 管理端按ID查看任意用户
func (s *UserService) GetUserOverview(ctx context.Context, userID uint) (*UserOverview, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	completions, err := s.ResultRepo.CountCompletions(userID)
	if err != nil {
		return nil, err
	}

	return &UserOverview{
		Profile:          profile,
		TotalCompletions: completions,
		LastSeen:         user.LastSeen,
	}, nil
}

// LeaderboardEntry 经验值排行榜条目
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
}

func (s *UserService) GetLeaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	users, err := s.UserRepo.FindTopByXP(limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			Rank:   i + 1,
			Name:   u.Name,
			Avatar: u.Avatar,
			XP:     u.XP,
			Level:  LevelForXP(u.XP),
		}
	}
	return entries, nil
}
