package service

import (
	"encoding/json"
	"finlit_backend/internal/model"
	"finlit_backend/internal/repository"
	"finlit_backend/internal/util"
	"finlit_backend/pkg/logger"
	"sync"

	"go.uber.org/zap"
)

// fallbackContentText 正文JSON损坏时兜底展示的占位段落
const fallbackContentText = "课程内容暂时无法显示，请稍后再试。"

// LessonService 课程目录服务
// 目录随应用构建灌库且运行期只读，进程内只从数据库加载一次，
// 加载时做防御性校验：损坏的条目打补丁降级，不让单条脏数据拖垮整个课程页
type LessonService struct {
	LessonRepo *repository.LessonRepository

	mu      sync.RWMutex
	catalog map[string]*catalogEntry
	ordered []*catalogEntry
	loaded  bool
}

// catalogEntry 一门课程经过校验后的缓存形态
type catalogEntry struct {
	lesson    *model.Lesson
	content   []model.ContentBlock
	questions []model.LessonQuestion // 通过形状校验的题目，保持原始顺序
	warnings  []string
}

// LessonSummary 课程列表条目
type LessonSummary struct {
	LessonID    string `json:"lessonId"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Order       int    `json:"order"`
	Time        string `json:"time"`
	Description string `json:"description"`
	XPReward    int    `json:"xpReward"`
	HasQuiz     bool   `json:"hasQuiz"`
}

// LessonView 课程详情，正文已规整、题目不含正确答案
type LessonView struct {
	LessonSummary
	Content   []model.ContentBlock `json:"content"`
	Questions []QuestionView       `json:"questions"`
}

// QuestionView 下发给客户端的题目形态
type QuestionView struct {
	QuestionID          string   `json:"questionId"`
	QuestionType        string   `json:"questionType"`
	QuestionText        string   `json:"questionText"`
	Options             []string `json:"options,omitempty"`
	RelatedContentIndex *int     `json:"relatedContentIndex,omitempty"`
}

func NewLessonService(lessonRepo *repository.LessonRepository) *LessonService {
	return &LessonService{
		LessonRepo: lessonRepo,
		catalog:    map[string]*catalogEntry{},
	}
}

// LoadCatalog 从数据库加载并校验全部课程，启动时调用一次
func (s *LessonService) LoadCatalog() error {
	lessons, err := s.LessonRepo.FindAll()
	if err != nil {
		return err
	}

	catalog := make(map[string]*catalogEntry, len(lessons))
	ordered := make([]*catalogEntry, 0, len(lessons))

	for i := range lessons {
		lesson := lessons[i]
		entry := validateLesson(&lesson)
		for _, w := range entry.warnings {
			logger.Log.Warn("lesson data patched on load",
				zap.String("lessonId", lesson.LessonID), zap.String("warning", w))
		}
		catalog[lesson.LessonID] = entry
		ordered = append(ordered, entry)
	}

	s.mu.Lock()
	s.catalog = catalog
	s.ordered = ordered
	s.loaded = true
	s.mu.Unlock()

	logger.Log.Info("lesson catalog loaded", zap.Int("lessons", len(ordered)))
	return nil
}

func (s *LessonService) entry(lessonID string) (*catalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.catalog[lessonID]
	if !ok {
		return nil, util.ErrLessonNotFound
	}
	return entry, nil
}

// ListLessons 按分类+分类内顺序返回课程列表
func (s *LessonService) ListLessons(category string) []LessonSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]LessonSummary, 0, len(s.ordered))
	for _, entry := range s.ordered {
		if category != "" && entry.lesson.Category != category {
			continue
		}
		summaries = append(summaries, entry.summary())
	}
	return summaries
}

// TotalLessons 目录中的课程总数，用于计算完成百分比
func (s *LessonService) TotalLessons() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered)
}

// GetLesson 按课程ID取详情，未知ID返回 ErrLessonNotFound
func (s *LessonService) GetLesson(lessonID string) (*LessonView, error) {
	entry, err := s.entry(lessonID)
	if err != nil {
		return nil, err
	}

	view := &LessonView{
		LessonSummary: entry.summary(),
		Content:       entry.content,
		Questions:     make([]QuestionView, 0, len(entry.questions)),
	}
	for i := range entry.questions {
		q := &entry.questions[i]
		view.Questions = append(view.Questions, QuestionView{
			QuestionID:          q.QuestionID,
			QuestionType:        q.QuestionType,
			QuestionText:        q.QuestionText,
			Options:             decodeOptions(q.Options),
			RelatedContentIndex: q.RelatedContentIndex,
		})
	}
	return view, nil
}

// QuizQuestions 返回判分用的题目（含正确答案），顺序与展示一致
func (s *LessonService) QuizQuestions(lessonID string) ([]model.LessonQuestion, error) {
	entry, err := s.entry(lessonID)
	if err != nil {
		return nil, err
	}
	return entry.questions, nil
}

// ContentLength 课程正文段落数，回看下标校验用
func (s *LessonService) ContentLength(lessonID string) (int, error) {
	entry, err := s.entry(lessonID)
	if err != nil {
		return 0, err
	}
	return len(entry.content), nil
}

// XPReward 满分完成该课程奖励的经验值
func (s *LessonService) XPReward(lessonID string) int {
	entry, err := s.entry(lessonID)
	if err != nil {
		return 0
	}
	return entry.lesson.XPReward
}

func (e *catalogEntry) summary() LessonSummary {
	return LessonSummary{
		LessonID:    e.lesson.LessonID,
		Title:       e.lesson.Title,
		Category:    e.lesson.Category,
		Order:       e.lesson.Order,
		Time:        e.lesson.Time,
		Description: e.lesson.Description,
		XPReward:    e.lesson.XPReward,
		HasQuiz:     len(e.questions) > 0,
	}
}

// validateLesson 校验并规整一门课程，问题数据打补丁并记录告警，从不报错
func validateLesson(lesson *model.Lesson) *catalogEntry {
	entry := &catalogEntry{lesson: lesson}

	content, warnings := normalizeContent(lesson.Content)
	entry.content = content
	entry.warnings = append(entry.warnings, warnings...)

	questions, qWarnings := normalizeQuestions(lesson.Questions, len(content))
	entry.questions = questions
	entry.warnings = append(entry.warnings, qWarnings...)

	return entry
}

// normalizeContent 正文必须是段落数组；解析失败或为空时替换为单段占位
func normalizeContent(raw json.RawMessage) ([]model.ContentBlock, []string) {
	if len(raw) == 0 {
		return []model.ContentBlock{{Text: fallbackContentText}}, []string{"content missing"}
	}

	var blocks []model.ContentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return []model.ContentBlock{{Text: fallbackContentText}}, []string{"content malformed: " + err.Error()}
	}
	if len(blocks) == 0 {
		return []model.ContentBlock{{Text: fallbackContentText}}, []string{"content empty"}
	}
	return blocks, nil
}

// normalizeQuestions 剔除形状不合法的题目，越界的回看下标置空
// 测验字段整体损坏时课程依旧可读，只是没有测验
func normalizeQuestions(questions []model.LessonQuestion, contentLen int) ([]model.LessonQuestion, []string) {
	valid := make([]model.LessonQuestion, 0, len(questions))
	var warnings []string

	for i := range questions {
		q := questions[i]

		switch q.QuestionType {
		case model.QuestionMultipleChoice, model.QuestionTrueFalse:
			if len(decodeOptions(q.Options)) == 0 {
				warnings = append(warnings, "question "+q.QuestionID+" dropped: options missing")
				continue
			}
			if _, ok := decodeSingleAnswer(q.CorrectAnswer); !ok {
				warnings = append(warnings, "question "+q.QuestionID+" dropped: correct answer malformed")
				continue
			}
		case model.QuestionFreeResponse:
			if len(decodeAcceptedAnswers(q.CorrectAnswer)) == 0 {
				warnings = append(warnings, "question "+q.QuestionID+" dropped: accepted answers missing")
				continue
			}
		default:
			warnings = append(warnings, "question "+q.QuestionID+" dropped: unknown type "+q.QuestionType)
			continue
		}

		if q.RelatedContentIndex != nil {
			if idx := *q.RelatedContentIndex; idx < 0 || idx >= contentLen {
				warnings = append(warnings, "question "+q.QuestionID+": related content index out of range")
				q.RelatedContentIndex = nil
			}
		}

		valid = append(valid, q)
	}

	return valid, warnings
}

func decodeOptions(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var options []string
	if err := json.Unmarshal(raw, &options); err != nil {
		return nil
	}
	return options
}

// decodeSingleAnswer 选择/判断题的唯一正确答案
func decodeSingleAnswer(raw json.RawMessage) (string, bool) {
	var answer string
	if err := json.Unmarshal(raw, &answer); err != nil {
		return "", false
	}
	return answer, true
}

// decodeAcceptedAnswers 简答题的可接受答案集合，单个字符串也按集合处理
func decodeAcceptedAnswers(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var accepted []string
	if err := json.Unmarshal(raw, &accepted); err == nil {
		return accepted
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil && one != "" {
		return []string{one}
	}
	return nil
}
