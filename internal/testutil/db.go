// Package testutil 提供测试用的数据库夹具
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bedtime-story-api/internal/domain/entity"
	"bedtime-story-api/internal/infrastructure/persistence/postgres"
)

// NewClient 创建基于内存 SQLite 的数据库客户端并完成迁移
func NewClient(t *testing.T) *postgres.Client {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: postgres.NewGormLogger("silent", 0),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库按连接隔离，必须固定为单连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, postgres.AutoMigrate(context.Background(), db))
	return postgres.NewClientFromDB(db)
}

// SeedUser 插入一个测试用户
func SeedUser(t *testing.T, client *postgres.Client, email string) *entity.User {
	t.Helper()

	user := entity.NewUser(email)
	require.NoError(t, client.DB().Create(user).Error)
	return user
}

// CountStories 统计故事表行数
func CountStories(t *testing.T, client *postgres.Client) int64 {
	t.Helper()

	var n int64
	require.NoError(t, client.DB().Model(&entity.Story{}).Count(&n).Error)
	return n
}
