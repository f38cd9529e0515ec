package controllers

import (
	"strconv"

	"NovaCTF/database"
	"NovaCTF/models"
	"NovaCTF/services"
	"NovaCTF/utils"
	"github.com/gin-gonic/gin"
)

// GetAuditLogs —— 管理员分页查询审计日志
func GetAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	db := database.DB.Model(&models.AuditLog{})
	if targetType := c.Query("target_type"); targetType != "" {
		db = db.Where("target_type = ?", targetType)
	}
	if action := c.Query("action"); action != "" {
		db = db.Where("action = ?", action)
	}

	var total int64
	db.Count(&total)

	var logs []models.AuditLog
	if err := db.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&logs).Error; err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}

	utils.Success(c, "success", gin.H{
		"total": total,
		"page":  page,
		"logs":  logs,
	})
}

// VerifyAuditChain —— 管理员触发审计链完整性校验
func VerifyAuditChain(c *gin.Context) {
	ok, firstBadID, err := services.VerifyAuditChain()
	if err != nil {
		utils.Error(c, 5000, "校验失败: "+err.Error())
		return
	}
	if !ok {
		utils.Success(c, "Audit chain broken", gin.H{
			"valid":        false,
			"first_bad_id": firstBadID,
		})
		return
	}
	utils.Success(c, "Audit chain intact", gin.H{"valid": true})
}
