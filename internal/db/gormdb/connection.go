package gormdb

import (
	"context"
	"fmt"

	"github.com/oggyb/wa-dispatch/internal/db"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	conn *gorm.DB
}

func New(dsn string) (*GormDB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return &GormDB{conn: conn}, nil
}

func (g *GormDB) Conn() any {
	return g.conn
}

// Ping checks the underlying connection pool.
func (g *GormDB) Ping(ctx context.Context) error {
	sqlDB, err := g.conn.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (g *GormDB) Close() error {
	sqlDB, err := g.conn.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs AutoMigrate for the given models.
func (g *GormDB) Migrate(models ...any) error {
	return g.conn.AutoMigrate(models...)
}

// verify it satisfies db.DB
var _ db.DB = (*GormDB)(nil)
