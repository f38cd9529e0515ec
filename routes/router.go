package routes

import (
	"NovaCTF/controllers"
	"NovaCTF/middlewares"
	"NovaCTF/models"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	apiV1 := r.Group("/api/v1")
	{
		// --- 用户模块 ---
		usersPublic := apiV1.Group("/users")
		{
			usersPublic.POST("/register", controllers.Register)
			usersPublic.POST("/login", controllers.Login)
		}

		// --- 队伍模块 ---
		teamRoutes := apiV1.Group("/teams")
		teamRoutes.Use(middlewares.JWTAuthMiddleware())
		{
			teamRoutes.POST("", controllers.CreateTeam)
			teamRoutes.POST("/join", controllers.JoinTeam)
			teamRoutes.GET("/mine", controllers.MyTeam)
		}

		// --- 题目模块 ---
		challengeRoutes := apiV1.Group("/challenges")
		{
			// 用户接口
			challengeRoutes.GET("", middlewares.JWTAuthMiddleware(), controllers.ListChallenges)
			challengeRoutes.GET("/:id", middlewares.JWTAuthMiddleware(), controllers.GetChallengeDetail)
			challengeRoutes.POST("/:id/submit", middlewares.JWTAuthMiddleware(), controllers.SubmitFlag)

			// AD 模式：防御令牌兑换与状态查询
			challengeRoutes.POST("/:id/token", middlewares.JWTAuthMiddleware(), controllers.SubmitToken)
			challengeRoutes.GET("/:id/attacks", middlewares.JWTAuthMiddleware(), controllers.GetAttackLog)
			challengeRoutes.GET("/:id/service-status", middlewares.JWTAuthMiddleware(), controllers.GetServiceStatus)

			// KotH 模式：占领状态与历史
			challengeRoutes.GET("/:id/koth", middlewares.JWTAuthMiddleware(), controllers.GetKothStatus)
			challengeRoutes.GET("/:id/koth/history", middlewares.JWTAuthMiddleware(), controllers.GetOwnershipHistory)

			// 管理员接口
			challengeRoutes.POST("", middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin), controllers.CreateChallenge)
			challengeRoutes.PUT("/:id", middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin), controllers.UpdateChallenge)
			challengeRoutes.POST("/:id/snapshot", middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin), controllers.SnapshotChallenge)
		}

		// --- 实例模块 ---
		instanceRoutes := apiV1.Group("/instances")
		instanceRoutes.Use(middlewares.JWTAuthMiddleware())
		{
			instanceRoutes.POST("", controllers.SpawnInstance)
			instanceRoutes.GET("/mine", controllers.MyInstances)
			instanceRoutes.DELETE("/:id", controllers.StopInstance)
		}

		// --- 排行榜模块 ---
		scoreboardRoutes := apiV1.Group("/scoreboard")
		{
			scoreboardRoutes.GET("", controllers.GetScoreboard)
			scoreboardRoutes.GET("/mine", middlewares.JWTAuthMiddleware(), controllers.GetTeamScore)
		}

		// --- 审计模块（管理员） ---
		auditRoutes := apiV1.Group("/admin/audit")
		auditRoutes.Use(middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin))
		{
			auditRoutes.GET("/logs", controllers.GetAuditLogs)
			auditRoutes.POST("/verify", controllers.VerifyAuditChain)
		}
	}

	return r
}
