package service

import (
	"errors"
	"fmt"
	"finlit_backend/internal/model"
	"finlit_backend/internal/repository"
	"finlit_backend/internal/util"
	"finlit_backend/pkg/logger"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 故事正文长度上限（字符）
const maxStoryLength = 500

type StoryService struct {
	StoryRepo *repository.StoryRepository
	UserRepo  *repository.UserRepository
	Storage   *StorageService
}

func NewStoryService(storyRepo *repository.StoryRepository, userRepo *repository.UserRepository, storage *StorageService) *StoryService {
	return &StoryService{
		StoryRepo: storyRepo,
		UserRepo:  userRepo,
		Storage:   storage,
	}
}

type StoryRequest struct {
	Content  string `json:"content" binding:"required"`
	MediaURL string `json:"mediaUrl"`
}

type StoryResponse struct {
	ID           string    `json:"id"`
	AuthorName   string    `json:"authorName"`
	AuthorAvatar string    `json:"authorAvatar"`
	AuthorLevel  int       `json:"authorLevel"`
	Content      string    `json:"content"`
	MediaURL     string    `json:"mediaUrl,omitempty"`
	Likes        int       `json:"likes"`
	Liked        bool      `json:"liked"`
	CreatedAt    time.Time `json:"createdAt"`
}

type StoryCommentResponse struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (s *StoryService) toResponse(story *model.Story, userID uint) StoryResponse {
	resp := StoryResponse{
		ID:           story.ID,
		AuthorName:   story.Author.Name,
		AuthorAvatar: story.Author.Avatar,
		AuthorLevel:  LevelForXP(story.Author.XP),
		Content:      story.Content,
		MediaURL:     story.MediaURL,
		Likes:        story.Likes,
		CreatedAt:    story.CreatedAt,
	}
	if userID > 0 {
		resp.Liked = s.StoryRepo.HasLiked(userID, story.ID)
	}
	return resp
}

func (s *StoryService) GetStories(page, limit int, tab string, userID uint) ([]StoryResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	stories, total, err := s.StoryRepo.FindWithPagination((page-1)*limit, limit, tab, userID)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]StoryResponse, len(stories))
	for i := range stories {
		responses[i] = s.toResponse(&stories[i], userID)
	}
	return responses, total, nil
}

func (s *StoryService) GetStory(storyID string, userID uint) (*StoryResponse, error) {
	story, err := s.StoryRepo.FindByID(storyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrStoryNotFound
		}
		return nil, err
	}
	resp := s.toResponse(story, userID)
	return &resp, nil
}

func (s *StoryService) CreateStory(userID uint, req StoryRequest) (*StoryResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, util.ErrEmptyContent
	}
	if len([]rune(content)) > maxStoryLength {
		return nil, util.ErrContentTooLong
	}

	story := &model.Story{
		AuthorID: userID,
		Content:  content,
		MediaURL: req.MediaURL,
	}
	if err := s.StoryRepo.Create(story); err != nil {
		return nil, err
	}

	created, err := s.StoryRepo.FindByID(story.ID)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(created, userID)
	return &resp, nil
}

func (s *StoryService) DeleteStory(userID uint, storyID string, role model.UserRole) error {
	story, err := s.StoryRepo.FindByID(storyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrStoryNotFound
		}
		return err
	}
	if story.AuthorID != userID && role != model.Admin {
		return util.ErrPermissionDenied
	}
	return s.StoryRepo.Delete(storyID)
}

func (s *StoryService) GetComments(storyID string, page, limit int) ([]StoryCommentResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	comments, total, err := s.StoryRepo.FindComments(storyID, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]StoryCommentResponse, len(comments))
	for i, c := range comments {
		responses[i] = StoryCommentResponse{
			ID:         c.ID,
			AuthorName: c.Author.Name,
			Content:    c.Content,
			CreatedAt:  c.CreatedAt,
		}
	}
	return responses, total, nil
}

func (s *StoryService) CreateComment(userID uint, storyID, content string) (*StoryCommentResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, util.ErrEmptyContent
	}

	if _, err := s.StoryRepo.FindByID(storyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrStoryNotFound
		}
		return nil, err
	}

	comment := &model.StoryComment{
		StoryID:  storyID,
		AuthorID: userID,
		Content:  content,
	}
	if err := s.StoryRepo.CreateComment(comment); err != nil {
		return nil, err
	}

	author, err := s.UserRepo.FindByID(userID)
	authorName := ""
	if err == nil {
		authorName = author.Name
	}

	return &StoryCommentResponse{
		ID:         comment.ID,
		AuthorName: authorName,
		Content:    comment.Content,
		CreatedAt:  comment.CreatedAt,
	}, nil
}

// ToggleLike 点赞/取消点赞，返回操作后是否已点赞
func (s *StoryService) ToggleLike(userID uint, storyID string) (bool, error) {
	if _, err := s.StoryRepo.FindByID(storyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, util.ErrStoryNotFound
		}
		return false, err
	}
	return s.StoryRepo.ToggleLike(userID, storyID)
}

// UploadMedia 上传故事配图/短视频；视频会探测元数据并生成封面
func (s *StoryService) UploadMedia(c *gin.Context, userID uint, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range util.AllowedStoryMediaExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("%w: %s", util.ErrUnsupportedFile, ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{util.MimeImage, util.MimeVideo})
	if err != nil {
		return "", err
	}
	if seeker, ok := src.(interface {
		Seek(offset int64, whence int) (int64, error)
	}); ok {
		seeker.Seek(0, 0)
	}

	filename := "stories/" + time.Now().Format("20060102150405") + "_" + util.GenerateRandomString(6) + ext
	url, err := s.Storage.Upload(c, filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	// 视频额外探测时长并生成封面，失败不影响上传结果
	if util.IsVideo(mimeType) && s.Storage.Cfg.Storage.Type == util.StorageLocal {
		localPath := filepath.Join(s.Storage.Cfg.Storage.LocalPath, filename)
		if info, err := util.GetVideoInfo(localPath); err != nil {
			logger.Log.Warn("failed to probe story video", zap.String("file", filename), zap.Error(err))
		} else {
			logger.Log.Info("story video uploaded",
				zap.String("file", filename),
				zap.Float64("duration", info.Duration),
				zap.Int("width", info.Width),
				zap.Int("height", info.Height))
			thumbPath := strings.TrimSuffix(localPath, ext) + "_thumb.jpg"
			if err := util.GenerateThumbnail(localPath, thumbPath, "00:00:01"); err != nil {
				logger.Log.Warn("failed to generate story thumbnail", zap.String("file", filename), zap.Error(err))
			}
		}
	}

	return url, nil
}
