// schema.go

package db

// 对局历史只写不读，服务重启后不会恢复任何会话

// CreateAllTablesSQL 创建所有表的SQL语句
const CreateAllTablesSQL = `
-- 对局结果表
CREATE TABLE IF NOT EXISTS match_results (
    id UUID PRIMARY KEY,
    room_code VARCHAR(16) NOT NULL,
    winner_id VARCHAR(64) NOT NULL,
    reason VARCHAR(16) NOT NULL,
    start_time TIMESTAMP WITH TIME ZONE NOT NULL,
    end_time TIMESTAMP WITH TIME ZONE NOT NULL,
    ticks BIGINT DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
);

-- 对局参与者表
CREATE TABLE IF NOT EXISTS match_participants (
    match_id UUID REFERENCES match_results(id) ON DELETE CASCADE,
    participant_id VARCHAR(64) NOT NULL,
    display_name VARCHAR(64),
    fighter_name VARCHAR(64),
    hp DECIMAL(8,2) DEFAULT 0,
    max_hp DECIMAL(8,2) DEFAULT 0,
    winner BOOLEAN DEFAULT false,
    PRIMARY KEY (match_id, participant_id)
);

-- 创建索引
CREATE INDEX IF NOT EXISTS idx_match_results_room_code ON match_results(room_code);
CREATE INDEX IF NOT EXISTS idx_match_results_end_time ON match_results(end_time);
CREATE INDEX IF NOT EXISTS idx_match_participants_participant_id ON match_participants(participant_id);
`

// DropAllTablesSQL 删除所有表
const DropAllTablesSQL = `
DROP TABLE IF EXISTS match_participants CASCADE;
DROP TABLE IF EXISTS match_results CASCADE;
`

// InitAllTables 初始化所有数据库表
func InitAllTables() error {
	_, err := DB.Exec(CreateAllTablesSQL)
	if err != nil {
		return err
	}
	return nil
}

// DropAllTables 删除所有数据库表
func DropAllTables() error {
	_, err := DB.Exec(DropAllTablesSQL)
	return err
}
