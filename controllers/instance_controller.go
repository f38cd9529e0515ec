package controllers

import (
	"strconv"

	"NovaCTF/database"
	"NovaCTF/dto"
	"NovaCTF/models"
	"NovaCTF/services"
	"NovaCTF/utils"
	"github.com/gin-gonic/gin"
)

// SpawnInstance —— 为本队拉起 AD/KotH 题目的服务实例
func SpawnInstance(c *gin.Context) {
	var req dto.SpawnInstanceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "请求参数错误")
		return
	}

	team, err := services.TeamOfUser(currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if team.TeamStatus == models.TeamStatusBanned {
		utils.Error(c, 4003, "队伍已被封禁")
		return
	}

	var challenge models.Challenge
	if err := database.DB.First(&challenge, req.ChallengeID).Error; err != nil {
		utils.Error(c, 4004, "题目不存在")
		return
	}
	if challenge.Mode == models.ModeJeopardy {
		utils.Error(c, 1002, "Jeopardy 题目无需实例")
		return
	}

	// 同一队伍同一题目只允许一个存活实例
	var existing models.TeamServiceInstance
	err = database.DB.Where(
		"team_id = ? AND challenge_id = ? AND status IN ?",
		team.ID, challenge.ID, []models.InstanceStatus{models.InstancePending, models.InstanceRunning},
	).First(&existing).Error
	if err == nil {
		utils.Error(c, 7004, "该题目已有存活实例")
		return
	}

	image := req.Image
	if image == "" {
		image = challenge.Image
	}
	ports := req.Ports
	if ports == "" {
		ports = challenge.Ports
	}

	inst, err := services.ProvisionInstance(team, &challenge, image, ports)
	if err != nil {
		utils.Error(c, 5000, "实例创建失败: "+err.Error())
		return
	}

	utils.Success(c, "实例创建成功", gin.H{
		"instance_id":  inst.ID,
		"status":       inst.Status,
		"endpoint_url": inst.EndpointURL,
	})
}

// StopInstance —— 销毁实例，仅限本队成员或管理员
func StopInstance(c *gin.Context) {
	instanceID, _ := strconv.Atoi(c.Param("id"))

	var inst models.TeamServiceInstance
	if err := database.DB.First(&inst, instanceID).Error; err != nil {
		utils.Error(c, 4004, "实例不存在")
		return
	}

	roleAny, _ := c.Get("user_role")
	role, _ := roleAny.(models.UserRole)
	if role != models.RoleAdmin && role != models.RoleRootAdmin {
		team, err := services.TeamOfUser(currentUserID(c))
		if err != nil || team.ID != inst.TeamID {
			utils.Error(c, 4003, "只能操作本队的实例")
			return
		}
	}

	if err := services.StopInstance(&inst); err != nil {
		utils.Error(c, 5000, "实例销毁失败: "+err.Error())
		return
	}
	utils.Success(c, "实例已销毁", nil)
}

// MyInstances —— 列出本队的全部实例
func MyInstances(c *gin.Context) {
	team, err := services.TeamOfUser(currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var instances []models.TeamServiceInstance
	database.DB.Where("team_id = ?", team.ID).Order("created_at DESC").Find(&instances)

	type instanceRow struct {
		ID          uint64                `json:"id"`
		ChallengeID uint32                `json:"challenge_id"`
		Status      models.InstanceStatus `json:"status"`
		EndpointURL string                `json:"endpoint_url"`
		CreatedAt   string                `json:"created_at"`
	}
	result := make([]instanceRow, 0, len(instances))
	for _, inst := range instances {
		result = append(result, instanceRow{
			ID:          inst.ID,
			ChallengeID: inst.ChallengeID,
			Status:      inst.Status,
			EndpointURL: inst.EndpointURL,
			CreatedAt:   inst.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	utils.Success(c, "success", result)
}
