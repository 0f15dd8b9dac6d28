package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jacl-coder/InkBrawl-Server/internal/models"
)

// ErrNoDatabase 未配置数据库连接
var ErrNoDatabase = errors.New("数据库未连接")

const insertResultSQL = `
INSERT INTO match_results (id, room_code, winner_id, reason, start_time, end_time, ticks)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO NOTHING`

const insertParticipantSQL = `
INSERT INTO match_participants (match_id, participant_id, display_name, fighter_name, hp, max_hp, winner)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (match_id, participant_id) DO NOTHING`

// PostgresRecorder 将对局结果写入 PostgreSQL
type PostgresRecorder struct {
	db *sql.DB
}

// NewPostgresRecorder 创建 PostgreSQL 结果写入器
func NewPostgresRecorder(db *sql.DB) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// Record 在一个事务内写入结果和参与者
func (p *PostgresRecorder) Record(ctx context.Context, result models.MatchResult) error {
	if p.db == nil {
		return ErrNoDatabase
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, insertResultSQL,
		result.ID, result.RoomCode, result.WinnerID, result.Reason,
		result.StartTime, result.EndTime, result.Ticks)
	if err != nil {
		return fmt.Errorf("写入对局结果失败: %w", err)
	}

	for _, pr := range result.Participants {
		_, err = tx.ExecContext(ctx, insertParticipantSQL,
			result.ID, pr.ParticipantID, pr.DisplayName, pr.FighterName,
			pr.HP, pr.MaxHP, pr.Winner)
		if err != nil {
			return fmt.Errorf("写入参与者失败: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}
