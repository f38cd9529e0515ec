package services

import (
	"encoding/json"
	"math"
	"time"

	"NovaCTF/config"
	"NovaCTF/database"
	"NovaCTF/models"
	"NovaCTF/utils"
	"gorm.io/gorm"
)

// SubmitResult Flag 提交的判定结果
type SubmitResult struct {
	Correct       bool   `json:"correct"`
	PointsAwarded int    `json:"points_awarded"`
	FirstBlood    bool   `json:"first_blood"`
	ChallengeID   uint32 `json:"challenge_id"`
	TeamTotal     int64  `json:"team_total"`
	Message       string `json:"message"`
}

// SubmitFlag 校验 Flag 提交并完成计分。
// 首杀判定与动态分数都依赖"此前有多少正确提交"，因此整个判定-写入流程
// 在一个事务内进行，并对题目行加锁，串行化同一题目的并发提交。
func SubmitFlag(userID uint32, challengeID uint32, flag, ip, userAgent string) (*SubmitResult, error) {
	result := &SubmitResult{ChallengeID: challengeID}
	scoreChanged := false

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// 题目存在性优先于队伍归属判定；对题目行加锁，避免首杀与动态分数的并发竞争
		var challenge models.Challenge
		if err := lockForUpdate(tx).First(&challenge, challengeID).Error; err != nil {
			return ErrChallengeNotFound
		}
		if challenge.Mode != models.ModeJeopardy {
			return ErrWrongMode
		}
		if challenge.State != models.ChallengeStateVisible {
			return ErrChallengeHidden
		}
		if challenge.ReleasedAt == nil || challenge.ReleasedAt.After(time.Now()) {
			return ErrNotReleased
		}

		team, err := teamOfUser(tx, userID)
		if err != nil {
			return err
		}
		if team.TeamStatus == models.TeamStatusBanned {
			return ErrTeamBanned
		}

		// 同队伍重复解题：幂等返回，不再写任何流水
		var solved int64
		tx.Model(&models.Submission{}).
			Where("challenge_id = ? AND team_id = ? AND is_correct = ?", challengeID, team.ID, true).
			Count(&solved)
		if solved > 0 {
			result.Correct = true
			result.Message = "已经解出此题"
			result.TeamTotal = teamTotalTx(tx, team.ID)
			return nil
		}

		isCorrect := utils.VerifyFlag(challenge.FlagHmac, flag)
		flagPrefix := flag
		if len(flagPrefix) > 6 {
			flagPrefix = flagPrefix[:6]
		}

		if !isCorrect {
			// 错误提交只留审计记录，不写计分流水
			result.Message = "Flag 错误"
			return tx.Create(&models.Submission{
				ChallengeID: challengeID,
				UserID:      userID,
				TeamID:      team.ID,
				IsCorrect:   false,
				FlagPrefix:  flagPrefix,
				IPAddress:   ip,
				UserAgent:   userAgent,
				SubmittedAt: time.Now(),
			}).Error
		}

		// 正确提交：先数此前的正确提交，再写入本次
		var solvesBefore int64
		tx.Model(&models.Submission{}).
			Where("challenge_id = ? AND is_correct = ?", challengeID, true).
			Count(&solvesBefore)

		pointsAwarded := challenge.CurrentPoints(int(solvesBefore), config.C.MinPointsFloor)
		firstBlood := solvesBefore == 0
		fbBonus := 0
		if firstBlood {
			fbBonus = int(math.Round(float64(challenge.PointsMax) * 0.10))
		}

		if err := tx.Create(&models.Submission{
			ChallengeID: challengeID,
			UserID:      userID,
			TeamID:      team.ID,
			IsCorrect:   true,
			FlagPrefix:  flagPrefix,
			IPAddress:   ip,
			UserAgent:   userAgent,
			SubmittedAt: time.Now(),
		}).Error; err != nil {
			return err
		}

		meta, _ := json.Marshal(map[string]interface{}{"solve_index": solvesBefore + 1})
		if err := tx.Create(&models.ScoreEvent{
			TeamID:      team.ID,
			UserID:      &userID,
			ChallengeID: &challengeID,
			Type:        models.ScoreTypeSolve,
			Delta:       pointsAwarded,
			Metadata:    string(meta),
			CreatedAt:   time.Now(),
		}).Error; err != nil {
			return err
		}

		if firstBlood && fbBonus > 0 {
			if err := tx.Create(&models.ScoreEvent{
				TeamID:      team.ID,
				UserID:      &userID,
				ChallengeID: &challengeID,
				Type:        models.ScoreTypeFirstBlood,
				Delta:       fbBonus,
				CreatedAt:   time.Now(),
			}).Error; err != nil {
				return err
			}
		}

		result.Correct = true
		result.PointsAwarded = pointsAwarded + fbBonus
		result.FirstBlood = firstBlood
		result.TeamTotal = teamTotalTx(tx, team.ID)
		result.Message = "Flag 正确！"
		scoreChanged = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 广播在事务提交之后进行，发布失败不回滚计分
	if scoreChanged {
		BroadcastLeaderboard()
	}
	return result, nil
}
