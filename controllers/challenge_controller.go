package controllers

import (
	"strconv"
	"time"

	"NovaCTF/database"
	"NovaCTF/dto"
	"NovaCTF/mappers"
	"NovaCTF/models"
	"NovaCTF/services"
	"NovaCTF/utils"
	"github.com/gin-gonic/gin"
)

// CreateChallenge —— 管理员创建题目，明文 Flag 只在此处出现，入库即 HMAC
func CreateChallenge(c *gin.Context) {
	var req dto.CreateChallengeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}
	req.Normalize()

	if req.ChallengeName == "" || req.Author == "" || req.Description == "" {
		utils.Error(c, 1001, "缺少必填字段")
		return
	}
	if req.Mode != "jeopardy" && req.Mode != "attack_defense" && req.Mode != "koth" {
		utils.Error(c, 1001, "mode 取值无效（jeopardy/attack_defense/koth）")
		return
	}
	if req.ScoringModel != "static" && req.ScoringModel != "dynamic" {
		utils.Error(c, 1001, "scoring_model 取值无效（static/dynamic）")
		return
	}
	if req.Mode == "jeopardy" && req.Flag == "" {
		utils.Error(c, 1002, "Jeopardy 题目必须提供 Flag")
		return
	}
	if req.PointsMin > req.PointsMax {
		utils.Error(c, 1001, "points_min 不能大于 points_max")
		return
	}

	chal := models.Challenge{
		ChallengeName:    req.ChallengeName,
		Category:         req.Category,
		Author:           req.Author,
		Description:      req.Description,
		Hint:             req.Hint,
		Mode:             models.ChallengeMode(req.Mode),
		ScoringModel:     models.ScoringModel(req.ScoringModel),
		PointsMin:        req.PointsMin,
		PointsMax:        req.PointsMax,
		DecayK:           req.DecayK,
		TickSeconds:      req.TickSeconds,
		CheckerConfig:    req.CheckerConfig,
		Image:            req.Image,
		Ports:            req.Ports,
		InstanceRequired: req.Mode != "jeopardy",
	}
	if req.Flag != "" {
		chal.FlagHmac = utils.HmacFlag(req.Flag)
	}

	if err := database.DB.Create(&chal).Error; err != nil {
		utils.Error(c, 5000, "创建题目失败: "+err.Error())
		return
	}

	actor := currentUserID(c)
	services.AppendAudit(&actor, "challenge.create", "challenge", services.AuditTargetID(chal.ID), map[string]interface{}{
		"name": chal.ChallengeName, "mode": string(chal.Mode),
	})

	utils.Success(c, "Challenge created successfully", gin.H{"id": chal.ID})
}

// UpdateChallenge —— 管理员更新题目（含开放操作，开放即确定 Tick 计时起点）
func UpdateChallenge(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var chal models.Challenge
	if err := database.DB.First(&chal, id).Error; err != nil {
		utils.Error(c, 4004, "题目不存在")
		return
	}

	var req dto.UpdateChallengeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.State != nil {
		if *req.State != "visible" && *req.State != "hidden" {
			utils.Error(c, 1001, "state 取值无效（visible/hidden）")
			return
		}
		updates["state"] = *req.State
	}
	if req.Hint != nil {
		updates["hint"] = *req.Hint
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.PointsMin != nil {
		updates["points_min"] = *req.PointsMin
	}
	if req.PointsMax != nil {
		updates["points_max"] = *req.PointsMax
	}
	if req.DecayK != nil {
		updates["decay_k"] = *req.DecayK
	}
	if req.TickSeconds != nil {
		updates["tick_seconds"] = *req.TickSeconds
	}
	if req.CheckerConfig != nil {
		updates["checker_config"] = *req.CheckerConfig
	}
	if req.Release != nil && *req.Release && chal.ReleasedAt == nil {
		updates["released_at"] = time.Now()
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&chal).Updates(updates).Error; err != nil {
			utils.Error(c, 5000, "更新题目失败: "+err.Error())
			return
		}
	}

	actor := currentUserID(c)
	services.AppendAudit(&actor, "challenge.update", "challenge", services.AuditTargetID(chal.ID), map[string]interface{}{
		"fields": len(updates),
	})

	utils.Success(c, "Challenge updated successfully", nil)
}

// ListChallenges —— 用户可见的题目列表
func ListChallenges(c *gin.Context) {
	var challenges []models.Challenge
	db := database.DB.Model(&models.Challenge{}).
		Where("state = ?", models.ChallengeStateVisible)

	if category := c.Query("category"); category != "" {
		db = db.Where("category = ?", category)
	}
	if mode := c.Query("mode"); mode != "" {
		db = db.Where("mode = ?", models.ChallengeMode(mode))
	}

	if err := db.Order("id ASC").Find(&challenges).Error; err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}

	items := make([]dto.ChallengeItemResp, 0, len(challenges))
	for i := range challenges {
		items = append(items, mappers.ToChallengeItemResp(&challenges[i], solvedCount(challenges[i].ID)))
	}

	utils.Success(c, "success", gin.H{
		"total":      len(items),
		"challenges": items,
	})
}

// GetChallengeDetail —— 用户可见的题目详情
func GetChallengeDetail(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var challenge models.Challenge
	if err := database.DB.First(&challenge, id).Error; err != nil {
		utils.Error(c, 4004, "题目不存在")
		return
	}
	if challenge.State != models.ChallengeStateVisible {
		utils.Error(c, 4003, "题目不可见")
		return
	}

	resp := mappers.ToChallengeDetailResp(&challenge, solvedCount(challenge.ID))
	utils.Success(c, "success", resp)
}

// SubmitFlag —— 提交 Flag，判定与计分在服务层的单事务内完成
func SubmitFlag(c *gin.Context) {
	challengeID, _ := strconv.Atoi(c.Param("id"))

	var req dto.SubmitFlagReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}
	req.Normalize()
	if req.Flag == "" {
		utils.Error(c, 1001, "flag 不能为空")
		return
	}

	result, err := services.SubmitFlag(
		currentUserID(c),
		uint32(challengeID),
		req.Flag,
		c.ClientIP(),
		c.Request.UserAgent(),
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, result.Message, result)
}

// SnapshotChallenge —— 管理员为题目当前计分参数留档
func SnapshotChallenge(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var chal models.Challenge
	if err := database.DB.First(&chal, id).Error; err != nil {
		utils.Error(c, 4004, "题目不存在")
		return
	}

	var req dto.SnapshotReq
	_ = c.ShouldBindJSON(&req)
	reason := models.SnapshotReason(req.Reason)
	if reason != models.SnapshotReasonFreeze && reason != models.SnapshotReasonModeration {
		reason = models.SnapshotReasonManual
	}

	snap := models.ChallengeSnapshot{
		ChallengeID:   chal.ID,
		ChallengeName: chal.ChallengeName,
		ScoringModel:  chal.ScoringModel,
		PointsMin:     chal.PointsMin,
		PointsMax:     chal.PointsMax,
		DecayK:        chal.DecayK,
		ReleasedAt:    chal.ReleasedAt,
		Reason:        reason,
		CreatedAt:     time.Now(),
	}
	if err := database.DB.Create(&snap).Error; err != nil {
		utils.Error(c, 5000, "快照创建失败: "+err.Error())
		return
	}

	actor := currentUserID(c)
	services.AppendAudit(&actor, "challenge.snapshot", "challenge", services.AuditTargetID(chal.ID), map[string]interface{}{
		"snapshot_id": snap.ID, "reason": string(reason),
	})

	utils.Success(c, "Snapshot created successfully", gin.H{"id": snap.ID, "created_at": snap.CreatedAt})
}

func solvedCount(challengeID uint32) int64 {
	var count int64
	database.DB.Model(&models.Submission{}).
		Where("challenge_id = ? AND is_correct = ?", challengeID, true).
		Count(&count)
	return count
}
