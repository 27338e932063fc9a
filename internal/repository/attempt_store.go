package repository

import (
	"context"
	"encoding/json"
	"finlit_backend/internal/model"
	"finlit_backend/pkg/logger"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const quizAttemptKeyPrefix = "quiz_attempt:"

// RedisAttemptStore 答题会话存储，JSON整体读写，带TTL
// 放在Redis里使API节点无状态，用户中途换连接不丢进度
type RedisAttemptStore struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisAttemptStore(rdb *redis.Client, ttl time.Duration) *RedisAttemptStore {
	return &RedisAttemptStore{Redis: rdb, TTL: ttl}
}

func attemptKey(userID uint, lessonID string) string {
	return fmt.Sprintf("%s%d:%s", quizAttemptKeyPrefix, userID, lessonID)
}

// Get 读取会话，不存在返回 (nil, nil)，数据损坏时丢弃并视为不存在
func (s *RedisAttemptStore) Get(ctx context.Context, userID uint, lessonID string) (*model.QuizAttempt, error) {
	val, err := s.Redis.Get(ctx, attemptKey(userID, lessonID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var attempt model.QuizAttempt
	if err := json.Unmarshal([]byte(val), &attempt); err != nil {
		logger.Log.Warn("quiz attempt corrupt, discarding",
			zap.Uint("userId", userID), zap.String("lessonId", lessonID), zap.Error(err))
		s.Redis.Del(ctx, attemptKey(userID, lessonID))
		return nil, nil
	}
	if attempt.Answers == nil {
		attempt.Answers = map[string]string{}
	}
	return &attempt, nil
}

func (s *RedisAttemptStore) Save(ctx context.Context, userID uint, attempt *model.QuizAttempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, attemptKey(userID, attempt.LessonID), data, s.TTL).Err()
}

func (s *RedisAttemptStore) Delete(ctx context.Context, userID uint, lessonID string) error {
	return s.Redis.Del(ctx, attemptKey(userID, lessonID)).Err()
}
