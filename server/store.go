package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/lib/pq" // postgres 驱动注册
)

// PlayerStore 玩家位置持久化接口：跨会话保留站位
// 以 PlayerID 为键；Load 查不到视为首次进入（found=false，不算错误）
type PlayerStore interface {
	Save(ctx context.Context, id PlayerID, pos Vector3) error
	Load(ctx context.Context, id PlayerID) (pos Vector3, found bool, err error)
	BatchSave(ctx context.Context, positions map[PlayerID]Vector3) error
	Close() error
}

// MemoryStore 进程内实现（默认）：重启即失，供单机试跑与测试
type MemoryStore struct {
	mu        sync.RWMutex
	positions map[PlayerID]Vector3
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{positions: make(map[PlayerID]Vector3)}
}

func (s *MemoryStore) Save(_ context.Context, id PlayerID, pos Vector3) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[id] = pos
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id PlayerID) (Vector3, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pos, ok := s.positions[id]
	return pos, ok, nil
}

func (s *MemoryStore) BatchSave(_ context.Context, positions map[PlayerID]Vector3) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, pos := range positions {
		s.positions[id] = pos
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// PostgresStore 基于 PostgreSQL 的实现（lib/pq），多实例共享存档时使用
type PostgresStore struct {
	db *sql.DB
}

const createPositionsTable = `
CREATE TABLE IF NOT EXISTS player_positions (
	player_id  TEXT PRIMARY KEY,
	x          REAL NOT NULL,
	y          REAL NOT NULL,
	z          REAL NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertPosition = `
INSERT INTO player_positions (player_id, x, y, z)
VALUES ($1, $2, $3, $4)
ON CONFLICT (player_id) DO UPDATE
SET x = EXCLUDED.x, y = EXCLUDED.y, z = EXCLUDED.z, updated_at = now()`

// NewPostgresStore 连接数据库并确保建表
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.Exec(createPositionsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create player_positions: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Save(ctx context.Context, id PlayerID, pos Vector3) error {
	if _, err := s.db.ExecContext(ctx, upsertPosition, string(id), pos.X, pos.Y, pos.Z); err != nil {
		return fmt.Errorf("save position %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, id PlayerID) (Vector3, bool, error) {
	var pos Vector3
	row := s.db.QueryRowContext(ctx,
		`SELECT x, y, z FROM player_positions WHERE player_id = $1`, string(id))
	if err := row.Scan(&pos.X, &pos.Y, &pos.Z); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Vector3{}, false, nil
		}
		return Vector3{}, false, fmt.Errorf("load position %s: %w", id, err)
	}
	return pos, true, nil
}

// BatchSave 在单事务内批量 upsert（周期落盘用）
func (s *PostgresStore) BatchSave(ctx context.Context, positions map[PlayerID]Vector3) error {
	if len(positions) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch save: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, upsertPosition)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch save: %w", err)
	}
	for id, pos := range positions {
		if _, err := stmt.ExecContext(ctx, string(id), pos.X, pos.Y, pos.Z); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("batch save %s: %w", id, err)
		}
	}
	_ = stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch save: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
