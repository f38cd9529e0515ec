package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"NovaCTF/config"
	"NovaCTF/database"
	"NovaCTF/models"
	"NovaCTF/routes"
	"NovaCTF/utils"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var apiDBSeq atomic.Int64

func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.C = config.Config{
		Port:           "8080",
		JWTSecret:      "test-secret",
		FlagPepper:     "test-pepper",
		MinPointsFloor: 50,
	}

	dsn := fmt.Sprintf("file:apidb%d?mode=memory&cache=shared", apiDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	database.DB = db
	database.MigrateTables()

	mr := miniredis.RunT(t)
	database.RDB = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() { sqlDB.Close() })
	return routes.SetupRouter()
}

type apiResp struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResp) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResp
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func adminToken(t *testing.T) string {
	t.Helper()
	admin := models.User{
		Username: "admin",
		Password: "password123",
		Email:    "admin@example.com",
		Role:     models.RoleAdmin,
	}
	require.NoError(t, database.DB.Create(&admin).Error)
	token, err := utils.GenerateToken(admin)
	require.NoError(t, err)
	return token
}

func TestRegisterLoginFlow(t *testing.T) {
	r := setupAPI(t)

	_, resp := doJSON(t, r, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"username": "player1", "password": "password123", "email": "p1@example.com",
	})
	assert.Equal(t, 0, resp.Code, resp.Msg)

	// 重复注册被拒
	_, resp = doJSON(t, r, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"username": "player1", "password": "password123", "email": "p1@example.com",
	})
	assert.Equal(t, 2001, resp.Code)

	_, resp = doJSON(t, r, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"username": "player1", "password": "password123",
	})
	require.Equal(t, 0, resp.Code, resp.Msg)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &login))
	assert.NotEmpty(t, login.Token)

	_, resp = doJSON(t, r, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"username": "player1", "password": "wrong-password",
	})
	assert.Equal(t, 2002, resp.Code)
}

func TestChallengeSolveFlow(t *testing.T) {
	r := setupAPI(t)
	admin := adminToken(t)

	// 管理员建题并开放
	_, resp := doJSON(t, r, http.MethodPost, "/api/v1/challenges", admin, gin.H{
		"challenge_name": "web-1",
		"author":         "staff",
		"description":    "find the flag",
		"mode":           "jeopardy",
		"scoring_model":  "static",
		"flag":           "flag{api-test}",
		"points_max":     500,
	})
	require.Equal(t, 0, resp.Code, resp.Msg)
	var created struct {
		ID uint32 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))

	_, resp = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/challenges/%d", created.ID), admin, gin.H{
		"state": "visible", "release": true,
	})
	require.Equal(t, 0, resp.Code, resp.Msg)

	// 选手注册、登录、建队、提交
	_, resp = doJSON(t, r, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"username": "player1", "password": "password123", "email": "p1@example.com",
	})
	require.Equal(t, 0, resp.Code, resp.Msg)
	_, resp = doJSON(t, r, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"username": "player1", "password": "password123",
	})
	require.Equal(t, 0, resp.Code, resp.Msg)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &login))

	// 未组队提交被拒
	_, resp = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/challenges/%d/submit", created.ID), login.Token, gin.H{
		"flag": "flag{api-test}",
	})
	assert.Equal(t, 3005, resp.Code)

	_, resp = doJSON(t, r, http.MethodPost, "/api/v1/teams", login.Token, gin.H{
		"team_name": "alpha",
	})
	require.Equal(t, 0, resp.Code, resp.Msg)

	_, resp = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/challenges/%d/submit", created.ID), login.Token, gin.H{
		"flag": "flag{api-test}",
	})
	require.Equal(t, 0, resp.Code, resp.Msg)
	var result struct {
		Correct       bool `json:"correct"`
		FirstBlood    bool `json:"first_blood"`
		PointsAwarded int  `json:"points_awarded"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.True(t, result.Correct)
	assert.True(t, result.FirstBlood)
	assert.Equal(t, 550, result.PointsAwarded)

	// 排行榜体现得分
	_, resp = doJSON(t, r, http.MethodGet, "/api/v1/scoreboard", "", nil)
	require.Equal(t, 0, resp.Code, resp.Msg)
	var board struct {
		Entries []struct {
			Rank     uint   `json:"rank"`
			TeamName string `json:"team_name"`
			Score    int64  `json:"score"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &board))
	require.Len(t, board.Entries, 1)
	assert.Equal(t, "alpha", board.Entries[0].TeamName)
	assert.Equal(t, int64(550), board.Entries[0].Score)
}

func TestAdminEndpointsRequireRole(t *testing.T) {
	r := setupAPI(t)

	_, resp := doJSON(t, r, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"username": "player1", "password": "password123", "email": "p1@example.com",
	})
	require.Equal(t, 0, resp.Code, resp.Msg)
	_, resp = doJSON(t, r, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"username": "player1", "password": "password123",
	})
	require.Equal(t, 0, resp.Code, resp.Msg)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &login))

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/challenges", login.Token, gin.H{
		"challenge_name": "nope", "author": "x", "description": "y",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, resp = doJSON(t, r, http.MethodPost, "/api/v1/challenges", "", gin.H{})
	assert.Equal(t, 4001, resp.Code, "缺少 Token 直接被拦截")
}

func TestAuditVerifyEndpoint(t *testing.T) {
	r := setupAPI(t)
	admin := adminToken(t)

	_, resp := doJSON(t, r, http.MethodPost, "/api/v1/challenges", admin, gin.H{
		"challenge_name": "web-1", "author": "staff", "description": "d",
		"mode": "jeopardy", "scoring_model": "static", "flag": "flag{x}",
	})
	require.Equal(t, 0, resp.Code, resp.Msg)

	_, resp = doJSON(t, r, http.MethodPost, "/api/v1/admin/audit/verify", admin, nil)
	require.Equal(t, 0, resp.Code, resp.Msg)
	var verify struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &verify))
	assert.True(t, verify.Valid)
}
