package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"NovaCTF/config"
	"NovaCTF/database"
	"NovaCTF/models"
	"NovaCTF/utils"
	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

// setupTestEnv 搭建测试环境：内存 SQLite + miniredis，直接替换全局句柄
func setupTestEnv(t *testing.T) {
	t.Helper()

	config.C = config.Config{
		Port:                     "8080",
		JWTSecret:                "test-secret",
		FlagPepper:               "test-pepper",
		MinPointsFloor:           50,
		SchedulerIntervalSeconds: 5,
		ProbeTimeoutSeconds:      1,
		SwarmNodeIP:              "127.0.0.1",
	}

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	database.DB = db
	database.MigrateTables()

	mr := miniredis.RunT(t)
	database.RDB = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		sqlDB.Close()
	})
}

// mkTeam 创建一个用户和以其为队长的队伍，返回队伍和队长用户 ID
func mkTeam(t *testing.T, name string) (*models.Team, uint32) {
	t.Helper()

	user := models.User{
		Username: name + "-leader",
		Password: "password123",
		Email:    name + "@example.com",
	}
	require.NoError(t, database.DB.Create(&user).Error)

	team := models.Team{
		TeamName:       name,
		LeaderID:       user.ID,
		InvitationCode: utils.GenerateInvitationCode(12),
	}
	require.NoError(t, database.DB.Create(&team).Error)
	require.NoError(t, database.DB.Create(&models.TeamMember{
		TeamID:   team.ID,
		UserID:   user.ID,
		Role:     models.TeamRoleLeader,
		JoinedAt: time.Now(),
	}).Error)
	return &team, user.ID
}

// mkChallenge 创建一道已开放的题目
func mkChallenge(t *testing.T, name string, mode models.ChallengeMode, scoring models.ScoringModel, flag string) *models.Challenge {
	t.Helper()

	released := time.Now().Add(-time.Minute)
	chal := models.Challenge{
		ChallengeName: name,
		Author:        "tester",
		Description:   "test challenge",
		State:         models.ChallengeStateVisible,
		Mode:          mode,
		ScoringModel:  scoring,
		PointsMin:     50,
		PointsMax:     500,
		DecayK:        0.018,
		TickSeconds:   60,
		ReleasedAt:    &released,
	}
	if flag != "" {
		chal.FlagHmac = utils.HmacFlag(flag)
	}
	require.NoError(t, database.DB.Create(&chal).Error)
	return &chal
}

func scoreEventCount(t *testing.T, teamID uint32, typ models.ScoreEventType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, database.DB.Model(&models.ScoreEvent{}).
		Where("team_id = ? AND type = ?", teamID, typ).Count(&count).Error)
	return count
}
