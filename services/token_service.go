package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"NovaCTF/database"
	"NovaCTF/models"
	"NovaCTF/utils"
	"gorm.io/gorm"
)

// MintDefenseToken 为某队伍在某 Tick 铸造防御令牌，tick_seconds 后过期。
// (team, challenge, tick) 唯一，重复铸造（Tick 重放）时返回已存在的无需报错。
func MintDefenseToken(tx *gorm.DB, teamID uint32, challenge *models.Challenge, instanceID *uint64, tick int64) (*models.DefenseToken, error) {
	now := time.Now()
	token := &models.DefenseToken{
		TeamID:      teamID,
		ChallengeID: challenge.ID,
		InstanceID:  instanceID,
		Tick:        tick,
		Token:       utils.GenerateDefenseToken(),
		MintedAt:    now,
		ExpiresAt:   now.Add(time.Duration(challenge.TickSeconds) * time.Second),
	}
	if err := tx.Create(token).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil
		}
		return nil, err
	}
	return token, nil
}

// SubmitDefenseToken 提交夺取的对手令牌换取攻击分。
// 判定顺序：令牌存在 → 非本队 → 未过期 → 未被使用；
// "已使用"由 AttackEvent 的 (challenge, token_hash) 唯一约束仲裁，
// 两个攻击者并发提交同一令牌时数据库只放行一条。
func SubmitDefenseToken(userID uint32, challengeID uint32, tokenText string) (*models.AttackEvent, error) {
	tokenText = strings.TrimSpace(tokenText)

	var challenge models.Challenge
	if err := database.DB.First(&challenge, challengeID).Error; err != nil {
		return nil, ErrChallengeNotFound
	}
	if challenge.Mode != models.ModeAttackDefense {
		return nil, ErrWrongMode
	}

	team, err := TeamOfUser(userID)
	if err != nil {
		return nil, err
	}

	var attack *models.AttackEvent
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var dt models.DefenseToken
		if err := tx.Where("challenge_id = ? AND token = ?", challengeID, tokenText).
			First(&dt).Error; err != nil {
			return ErrInvalidToken
		}
		if dt.TeamID == team.ID {
			return ErrSelfAttack
		}
		if time.Now().After(dt.ExpiresAt) {
			return ErrTokenExpired
		}

		sum := sha256.Sum256([]byte(tokenText))
		tokenHash := hex.EncodeToString(sum[:])

		points := challenge.CheckerConf().ADAttackPoints
		ev := &models.AttackEvent{
			AttackerTeamID: team.ID,
			VictimTeamID:   dt.TeamID,
			ChallengeID:    challengeID,
			Tick:           dt.Tick,
			TokenHash:      tokenHash,
			PointsAwarded:  points,
			CreatedAt:      time.Now(),
		}
		if err := tx.Create(ev).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrTokenUsed
			}
			return err
		}

		meta, _ := json.Marshal(map[string]interface{}{"victim_team_id": dt.TeamID, "tick": dt.Tick})
		if err := tx.Create(&models.ScoreEvent{
			TeamID:      team.ID,
			UserID:      &userID,
			ChallengeID: &challengeID,
			Type:        models.ScoreTypeADAttackSuccess,
			Delta:       points,
			Metadata:    string(meta),
			CreatedAt:   time.Now(),
		}).Error; err != nil {
			return err
		}
		attack = ev
		return nil
	})
	if err != nil {
		return nil, err
	}

	BroadcastAttackEvent(attack)
	BroadcastADStatus(challengeID)
	BroadcastLeaderboard()
	return attack, nil
}
