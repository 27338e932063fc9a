package service

import (
	"context"
	"encoding/json"
	"finlit_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ProgressRefreshChannel 完成课程后发布刷新信号的 Redis 频道
// 订阅方（如 WebSocket 推送层或其他实例）收到后重新拉取进度展示
const ProgressRefreshChannel = "progress:refresh"

// RedisProgressNotifier 基于 Redis 发布/订阅的进度刷新通知
// 发布是发后不管的：失败只记日志，绝不影响提交流程
type RedisProgressNotifier struct {
	Redis *redis.Client
}

func NewRedisProgressNotifier(rdb *redis.Client) *RedisProgressNotifier {
	return &RedisProgressNotifier{Redis: rdb}
}

type progressRefreshEvent struct {
	UserID    uint   `json:"userId"`
	LessonID  string `json:"lessonId"`
	Timestamp int64  `json:"timestamp"`
}

func (n *RedisProgressNotifier) LessonCompleted(userID uint, lessonID string) {
	payload, err := json.Marshal(progressRefreshEvent{
		UserID:    userID,
		LessonID:  lessonID,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.Redis.Publish(ctx, ProgressRefreshChannel, payload).Err(); err != nil {
		logger.Log.Warn("failed to publish progress refresh",
			zap.Uint("userId", userID), zap.String("lessonId", lessonID), zap.Error(err))
	}
}
