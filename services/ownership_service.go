package services

import (
	"errors"
	"time"

	"NovaCTF/models"
	"gorm.io/gorm"
)

// ReconcileOwnership KotH 占领状态机，在 Tick 事务内执行一次转移判定：
//   - 无开放区间 → 为检测到的队伍新开一条；
//   - 开放区间属于同一队伍 → 不转移，占领分累计到该区间；
//   - 开放区间属于别的队伍 → 关闭旧区间并新开一条（唯一的交接路径）。
//
// 未检测到占领方时调用方不会进入这里：旧区间保持开放，探测抖动不掉权。
// 返回发生变更（新开或交接）的区间，未转移时返回 nil。
func ReconcileOwnership(tx *gorm.DB, challengeID uint32, ownerTeamID uint32, now time.Time, holdPoints int) (*models.OwnershipEvent, error) {
	var open models.OwnershipEvent
	err := lockForUpdate(tx).
		Where("challenge_id = ? AND to_ts IS NULL", challengeID).
		First(&open).Error

	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		created := &models.OwnershipEvent{
			ChallengeID:   challengeID,
			OwnerTeamID:   ownerTeamID,
			FromTs:        now,
			PointsAwarded: holdPoints,
		}
		if err := tx.Create(created).Error; err != nil {
			return nil, err
		}
		return created, nil
	}

	if open.OwnerTeamID == ownerTeamID {
		// 持续占领，只累计区间分
		return nil, tx.Model(&open).
			Update("points_awarded", gorm.Expr("points_awarded + ?", holdPoints)).Error
	}

	// 交接：关闭旧区间、开新区间必须同事务完成，保证单开放区间不变式
	if err := tx.Model(&open).Update("to_ts", now).Error; err != nil {
		return nil, err
	}
	created := &models.OwnershipEvent{
		ChallengeID:   challengeID,
		OwnerTeamID:   ownerTeamID,
		FromTs:        now,
		PointsAwarded: holdPoints,
	}
	if err := tx.Create(created).Error; err != nil {
		return nil, err
	}
	return created, nil
}

// CurrentOwner 查询题目当前的开放占领区间
func CurrentOwner(tx *gorm.DB, challengeID uint32) (*models.OwnershipEvent, error) {
	var open models.OwnershipEvent
	err := tx.Where("challenge_id = ? AND to_ts IS NULL", challengeID).
		Order("from_ts DESC").
		First(&open).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &open, nil
}
