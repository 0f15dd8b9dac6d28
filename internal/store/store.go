// Package store 对局结果的持久化
//
// 对局历史只写入，不参与任何会话的恢复。
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jacl-coder/InkBrawl-Server/internal/models"
)

// Recorder 结果写入接口
type Recorder interface {
	Record(ctx context.Context, result models.MatchResult) error
}

// RecentReader 最近对局查询接口
type RecentReader interface {
	Recent(ctx context.Context, n int) ([]models.MatchResult, error)
}

// NopRecorder 不做任何事
type NopRecorder struct{}

// Record 丢弃结果
func (NopRecorder) Record(context.Context, models.MatchResult) error { return nil }

// Recent 总是返回空列表
func (NopRecorder) Recent(context.Context, int) ([]models.MatchResult, error) {
	return []models.MatchResult{}, nil
}

// MultiRecorder 依次写入多个后端，单个失败不影响其余后端
type MultiRecorder []Recorder

// Record 写入所有后端并合并错误
func (m MultiRecorder) Record(ctx context.Context, result models.MatchResult) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Record(ctx, result); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", r, err))
		}
	}
	return errors.Join(errs...)
}
