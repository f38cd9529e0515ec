package controllers

import (
	"errors"

	"NovaCTF/services"
	"NovaCTF/utils"
	"github.com/gin-gonic/gin"
)

// respondServiceError 业务哨兵错误到响应码的统一映射
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrChallengeNotFound),
		errors.Is(err, services.ErrInstanceNotFound):
		utils.Error(c, 4004, err.Error())
	case errors.Is(err, services.ErrChallengeHidden),
		errors.Is(err, services.ErrNotReleased),
		errors.Is(err, services.ErrTeamBanned),
		errors.Is(err, services.ErrNotYourInstance):
		utils.Error(c, 4003, err.Error())
	case errors.Is(err, services.ErrNoTeam):
		utils.Error(c, 3005, err.Error())
	case errors.Is(err, services.ErrWrongMode):
		utils.Error(c, 1002, err.Error())
	case errors.Is(err, services.ErrInvalidToken):
		utils.Error(c, 4005, err.Error())
	case errors.Is(err, services.ErrSelfAttack),
		errors.Is(err, services.ErrTokenUsed):
		utils.Error(c, 7004, err.Error())
	case errors.Is(err, services.ErrTokenExpired):
		utils.Error(c, 7005, err.Error())
	default:
		utils.Error(c, 5000, "服务器内部错误: "+err.Error())
	}
}

func currentUserID(c *gin.Context) uint32 {
	userIDAny, _ := c.Get("user_id")
	return userIDAny.(uint32)
}
