package services

import (
	"NovaCTF/database"
	"NovaCTF/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate 对查询加 FOR UPDATE 行锁。
// SQLite（测试环境）没有行锁语法，事务本身已串行化，直接返回原查询。
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// teamOfUser 解析用户归属的队伍，未加入队伍返回 ErrNoTeam
func teamOfUser(tx *gorm.DB, userID uint32) (*models.Team, error) {
	var member models.TeamMember
	if err := tx.Where("user_id = ?", userID).First(&member).Error; err != nil {
		return nil, ErrNoTeam
	}
	var team models.Team
	if err := tx.First(&team, member.TeamID).Error; err != nil {
		return nil, ErrNoTeam
	}
	return &team, nil
}

// TeamOfUser 对外暴露的队伍归属查询，供控制器使用
func TeamOfUser(userID uint32) (*models.Team, error) {
	return teamOfUser(database.DB, userID)
}
