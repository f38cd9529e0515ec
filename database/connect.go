package database

import (
	"log"
	"time"

	"NovaCTF/config"
	"NovaCTF/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	var err error
	DB, err = gorm.Open(mysql.Open(config.C.MySQLDSN), &gorm.Config{
		// 唯一约束冲突需要被识别为 gorm.ErrDuplicatedKey（令牌重放、Tick 幂等都依赖它）
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("Failed to get underlying sql.DB:", err)
	}

	// SetMaxIdleConns 用于设置连接池中空闲连接的最大数量。
	sqlDB.SetMaxIdleConns(10)

	// SetMaxOpenConns 设置打开数据库连接的最大数量。
	sqlDB.SetMaxOpenConns(100)

	// SetConnMaxLifetime 设置了连接可复用的最大时间。
	// 用于规避 MySQL 的 'wait_timeout' 断连问题。
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Database connection successfully established and connection pool configured.")
}

// MigrateTables 生产环境表结构由运维管理，此函数仅供本地开发使用
func MigrateTables() {
	err := DB.AutoMigrate(
		&models.User{}, &models.Team{}, &models.TeamMember{},
		&models.Challenge{}, &models.ChallengeSnapshot{},
		&models.Submission{}, &models.ScoreEvent{},
		&models.TeamServiceInstance{}, &models.DefenseToken{},
		&models.AttackEvent{}, &models.OwnershipEvent{}, &models.RoundTick{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	log.Println("Database migration completed.")
}
