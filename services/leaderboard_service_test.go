package services

import (
	"testing"
	"time"

	"NovaCTF/database"
	"NovaCTF/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addScore(t *testing.T, teamID uint32, delta int) {
	t.Helper()
	require.NoError(t, database.DB.Create(&models.ScoreEvent{
		TeamID:    teamID,
		Type:      models.ScoreTypeSolve,
		Delta:     delta,
		CreatedAt: time.Now(),
	}).Error)
}

func TestProjectLeaderboardDenseRank(t *testing.T) {
	setupTestEnv(t)
	alpha, _ := mkTeam(t, "alpha")
	bravo, _ := mkTeam(t, "bravo")
	charlie, _ := mkTeam(t, "charlie")
	mkTeam(t, "delta") // 没有任何流水的队伍

	addScore(t, alpha.ID, 100)
	addScore(t, bravo.ID, 100)
	addScore(t, charlie.ID, 50)

	entries, err := ProjectLeaderboard()
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// 同分共享名次且按队名升序，下一档名次只 +1（密集排名）
	assert.Equal(t, []string{"alpha", "bravo", "charlie", "delta"},
		[]string{entries[0].TeamName, entries[1].TeamName, entries[2].TeamName, entries[3].TeamName})
	assert.Equal(t, uint(1), entries[0].Rank)
	assert.Equal(t, uint(1), entries[1].Rank)
	assert.Equal(t, uint(2), entries[2].Rank)
	assert.Equal(t, uint(3), entries[3].Rank)
	assert.Equal(t, int64(0), entries[3].Score, "无流水队伍按 0 分计入")
}

func TestLeaderboardCompensationEvent(t *testing.T) {
	setupTestEnv(t)
	alpha, _ := mkTeam(t, "alpha")

	addScore(t, alpha.ID, 100)
	// 改分走负 delta 补偿事件，总分始终是流水之和
	require.NoError(t, database.DB.Create(&models.ScoreEvent{
		TeamID:    alpha.ID,
		Type:      models.ScoreTypeBonus,
		Delta:     -30,
		CreatedAt: time.Now(),
	}).Error)

	assert.Equal(t, int64(70), TeamTotal(alpha.ID))
}

func TestGetCachedLeaderboard(t *testing.T) {
	setupTestEnv(t)
	alpha, _ := mkTeam(t, "alpha")
	addScore(t, alpha.ID, 100)

	first, err := GetCachedLeaderboard()
	require.NoError(t, err)
	require.Len(t, first, 1)

	// 缓存窗口内看到的是旧榜
	addScore(t, alpha.ID, 50)
	cached, err := GetCachedLeaderboard()
	require.NoError(t, err)
	assert.Equal(t, int64(100), cached[0].Score)

	// 失效后重算
	InvalidateLeaderboardCache()
	fresh, err := GetCachedLeaderboard()
	require.NoError(t, err)
	assert.Equal(t, int64(150), fresh[0].Score)
}

func TestBroadcastLeaderboardPublishes(t *testing.T) {
	setupTestEnv(t)
	alpha, _ := mkTeam(t, "alpha")
	addScore(t, alpha.ID, 100)

	sub := database.RDB.Subscribe(database.Ctx, TopicLeaderboard)
	defer sub.Close()
	_, err := sub.Receive(database.Ctx)
	require.NoError(t, err)

	BroadcastLeaderboard()

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, TopicLeaderboard, msg.Channel)
		assert.Contains(t, msg.Payload, `"leaderboard.update"`)
	case <-time.After(2 * time.Second):
		t.Fatal("no leaderboard message received")
	}
}
