package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NovaCTF/database"
	"NovaCTF/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCheckerHealthOK(t *testing.T) {
	setupTestEnv(t)

	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer up.Close()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	checker := &HTTPChecker{}
	conf := models.CheckerConf{HealthPath: "/healthz"}

	assert.True(t, checker.HealthOK(&models.TeamServiceInstance{EndpointURL: up.URL}, conf))
	assert.False(t, checker.HealthOK(&models.TeamServiceInstance{EndpointURL: down.URL}, conf))
	assert.False(t, checker.HealthOK(&models.TeamServiceInstance{EndpointURL: ""}, conf))
	assert.False(t, checker.HealthOK(&models.TeamServiceInstance{EndpointURL: "http://127.0.0.1:1"}, conf),
		"连接失败按离线处理")
}

func TestHTTPCheckerKothOwnerProof(t *testing.T) {
	setupTestEnv(t)
	alpha, _ := mkTeam(t, "alpha")
	chal := mkChallenge(t, "koth-1", models.ModeKotH, models.ScoringStatic, "")

	proof := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "status page\nowned_by: %d\n", alpha.ID)
	}))
	defer proof.Close()

	inst := models.TeamServiceInstance{
		TeamID:      alpha.ID,
		ChallengeID: chal.ID,
		Status:      models.InstanceRunning,
		EndpointURL: proof.URL,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, database.DB.Create(&inst).Error)

	checker := &HTTPChecker{}
	owner, found := checker.KothOwner([]models.TeamServiceInstance{inst}, chal.CheckerConf())
	require.True(t, found)
	assert.Equal(t, alpha.ID, owner)

	// 探测顺带回写实例的检查时间
	var updated models.TeamServiceInstance
	require.NoError(t, database.DB.First(&updated, inst.ID).Error)
	assert.NotNil(t, updated.LastCheckAt)
}

func TestHTTPCheckerKothOwnerFallback(t *testing.T) {
	setupTestEnv(t)
	alpha, _ := mkTeam(t, "alpha")
	chal := mkChallenge(t, "koth-1", models.ModeKotH, models.ScoringStatic, "")

	// 可达但无占领关键字：按服务归属方占领
	blank := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "hello")
	}))
	defer blank.Close()

	inst := models.TeamServiceInstance{
		TeamID:      alpha.ID,
		ChallengeID: chal.ID,
		Status:      models.InstanceRunning,
		EndpointURL: blank.URL,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, database.DB.Create(&inst).Error)

	checker := &HTTPChecker{}
	owner, found := checker.KothOwner([]models.TeamServiceInstance{inst}, chal.CheckerConf())
	require.True(t, found)
	assert.Equal(t, alpha.ID, owner)
}

func TestHTTPCheckerKothOwnerAllDown(t *testing.T) {
	setupTestEnv(t)

	checker := &HTTPChecker{}
	insts := []models.TeamServiceInstance{
		{EndpointURL: ""},
		{EndpointURL: "http://127.0.0.1:1"},
	}
	_, found := checker.KothOwner(insts, models.CheckerConf{ProofKeyword: "owned_by:"})
	assert.False(t, found)
}

func TestGetCheckerFallback(t *testing.T) {
	httpChecker := checkerRegistry["http"]

	assert.Same(t, httpChecker, GetChecker(models.CheckerConf{}))
	assert.Same(t, httpChecker, GetChecker(models.CheckerConf{Checker: "does-not-exist"}))

	custom := &fakeChecker{}
	RegisterChecker("custom", custom)
	assert.Same(t, custom, GetChecker(models.CheckerConf{Checker: "custom"}))
}
