package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/jacl-coder/InkBrawl-Server/internal/models"
	"github.com/jacl-coder/InkBrawl-Server/pkg/logger"
)

// RecentResultsKey 最近对局列表的键
const RecentResultsKey = "inkbrawl:results:recent"

const defaultRecentLimit = 50

// RedisRecorder 在 Redis 列表中保留最近的对局结果
type RedisRecorder struct {
	client *redis.Client
	limit  int
}

// NewRedisRecorder 创建 Redis 结果缓存，limit 不大于 0 时使用默认值
func NewRedisRecorder(client *redis.Client, limit int) *RedisRecorder {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return &RedisRecorder{client: client, limit: limit}
}

// Record 将结果压入列表头部并裁剪长度
func (r *RedisRecorder) Record(ctx context.Context, result models.MatchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("序列化对局结果失败: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, RecentResultsKey, data)
	pipe.LTrim(ctx, RecentResultsKey, 0, int64(r.limit-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("写入Redis失败: %w", err)
	}
	return nil
}

// Recent 读取最近 n 场对局，最新的在前
func (r *RedisRecorder) Recent(ctx context.Context, n int) ([]models.MatchResult, error) {
	n = clampLimit(n, r.limit)

	raw, err := r.client.LRange(ctx, RecentResultsKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("读取Redis失败: %w", err)
	}
	return decodeResults(raw), nil
}

func clampLimit(n, limit int) int {
	if n <= 0 || n > limit {
		return limit
	}
	return n
}

// decodeResults 跳过无法解析的条目
func decodeResults(raw []string) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(raw))
	for _, item := range raw {
		var res models.MatchResult
		if err := json.Unmarshal([]byte(item), &res); err != nil {
			logger.Log.WithError(err).Warn("跳过无法解析的对局记录")
			continue
		}
		results = append(results, res)
	}
	return results
}
