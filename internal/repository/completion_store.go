package repository

import (
	"context"
	"encoding/json"
	"finlit_backend/pkg/logger"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const completedLessonsKeyPrefix = "completed_lessons:"

// RedisCompletionStore 已完成课程列表的键值存储
// 列表整存整取：读出整个JSON数组，修改后整体写回。同一用户并发完成
// 两门课程时接受后写覆盖，完成记录非关键数据，不加锁
type RedisCompletionStore struct {
	Redis *redis.Client
}

func NewRedisCompletionStore(rdb *redis.Client) *RedisCompletionStore {
	return &RedisCompletionStore{Redis: rdb}
}

func completedLessonsKey(userID uint) string {
	return fmt.Sprintf("%s%d", completedLessonsKeyPrefix, userID)
}

// ReadCompletedLessons 读取用户已完成的课程ID列表
// 键不存在或数据损坏时返回空列表，不报错
func (s *RedisCompletionStore) ReadCompletedLessons(ctx context.Context, userID uint) ([]string, error) {
	val, err := s.Redis.Get(ctx, completedLessonsKey(userID)).Result()
	if err == redis.Nil {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	ids, err := DecodeCompletedLessons([]byte(val))
	if err != nil {
		logger.Log.Warn("completed lessons record corrupt, resetting to empty",
			zap.Uint("userId", userID), zap.Error(err))
		return []string{}, nil
	}
	return ids, nil
}

// WriteCompletedLessons 整体写回用户已完成的课程ID列表
func (s *RedisCompletionStore) WriteCompletedLessons(ctx context.Context, userID uint, lessonIDs []string) error {
	data, err := EncodeCompletedLessons(lessonIDs)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, completedLessonsKey(userID), data, 0).Err()
}

// EncodeCompletedLessons 序列化为JSON数组，写入与读取必须严格互逆
func EncodeCompletedLessons(lessonIDs []string) ([]byte, error) {
	if lessonIDs == nil {
		lessonIDs = []string{}
	}
	return json.Marshal(lessonIDs)
}

func DecodeCompletedLessons(data []byte) ([]string, error) {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
