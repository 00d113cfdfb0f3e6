// Package testutil 测试用的数据库与配置
package testutil

import (
	"testing"
	"time"

	"survey_backend/internal/config"
	"survey_backend/internal/util"
	"survey_backend/pkg/database"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const TestSecret = "test-secret-for-survey-backend-0123456789"

// SetupTestDB 每个测试独立的内存 SQLite，已完成迁移
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: "test", BasePath: "/api/survey"},
		Database:  config.DatabaseConfig{Driver: "sqlite"},
		JWT:       config.JWTConfig{Secret: TestSecret},
		Storage:   config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		Redis:     config.RedisConfig{Channel: "survey_events"},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 1},
		Policy:    config.PolicyConfig{Roles: config.DefaultRoles(), DefaultRole: "respondent"},
		Survey:    config.SurveyConfig{StrictAnswers: true},
	}
}

// IssueToken 按指定角色签发测试用 Token
func IssueToken(t *testing.T, userRef, role string) string {
	t.Helper()
	token, err := util.GenerateJWT(userRef, role, TestSecret, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}
