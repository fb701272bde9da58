package database

import (
	"github.com/rs/zerolog/log"
)

// Close đóng tất cả connections trong pool.
// Safe to call multiple times - subsequent calls sẽ là no-op
func (db *PostgresDB) Close() error {
	if db.Pool == nil {
		return nil
	}

	log.Info().Msg("[DATABASE] Closing database connection pool...")
	db.Pool.Close()
	db.Pool = nil
	log.Info().Msg("[DATABASE] Connection pool closed successfully")

	return nil
}

// PoolStats chứa thống kê connection pool, dùng cho health endpoint
type PoolStats struct {
	TotalConns    int32 `json:"total_connections"`
	IdleConns     int32 `json:"idle_connections"`
	AcquiredConns int32 `json:"acquired_connections"`
	MaxConns      int32 `json:"max_connections"`
}

// Stats trả về snapshot của pool, nil nếu pool chưa được khởi tạo
func (db *PostgresDB) Stats() *PoolStats {
	if db.Pool == nil {
		return nil
	}

	s := db.Pool.Stat()
	return &PoolStats{
		TotalConns:    s.TotalConns(),
		IdleConns:     s.IdleConns(),
		AcquiredConns: s.AcquiredConns(),
		MaxConns:      s.MaxConns(),
	}
}
