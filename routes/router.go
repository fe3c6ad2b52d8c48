// file: routes/router.go
package routes

import (
	"github.com/CCEE-SRM/ctf-dashboard-sub000/controllers"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/middlewares"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	apiV1 := r.Group("/api/v1")
	{
		// --- 用户 ---
		usersPublic := apiV1.Group("/users")
		{
			usersPublic.POST("/register", controllers.Register)
			usersPublic.POST("/login", controllers.Login)
		}
		usersAuth := apiV1.Group("/users")
		usersAuth.Use(middlewares.JWTAuthMiddleware())
		{
			usersAuth.GET("/:id", controllers.GetUserDetail)
			usersAuth.PUT("/:id", controllers.UpdateUser)
		}
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminRoutes.GET("/users", controllers.GetUserList)
			adminRoutes.DELETE("/users/:id", controllers.DeleteUser)
			adminRoutes.PUT("/users/:id/status", controllers.UpdateUserStatus)
			adminRoutes.PUT("/users/:id/role", middlewares.RoleAuthMiddleware(models.RoleRootAdmin), controllers.UpdateUserRole)

			// 比赛配置与排行榜修复
			adminRoutes.GET("/event-config", controllers.GetEventConfig)
			adminRoutes.PUT("/event-config", controllers.UpdateEventConfig)
			adminRoutes.POST("/scoreboard/rebuild", controllers.RebuildScoreboard)

			// 题目管理视图（不受可见性限制）
			adminRoutes.GET("/challenges", controllers.AdminListChallenges)
			adminRoutes.GET("/challenges/:id", controllers.AdminGetChallengeDetail)

			// Flag 提交日志审计
			adminRoutes.GET("/flag-logs", controllers.GetFlagLogs)
			adminRoutes.PUT("/flag-logs/:id/suspect", controllers.MarkSuspectSubmission)
		}

		// --- 队伍 ---
		teamRoutes := apiV1.Group("/teams")
		teamRoutes.Use(middlewares.JWTAuthMiddleware())
		{
			teamRoutes.POST("", controllers.CreateTeam)
			teamRoutes.POST("/join", controllers.JoinTeam)
			teamRoutes.POST("/leave", controllers.LeaveTeam)
			teamRoutes.DELETE("/:id", controllers.DisbandTeam)
			teamRoutes.DELETE("/:id/members/:user_id", controllers.KickMember)
			teamRoutes.PUT("/:id", controllers.UpdateTeam)
			teamRoutes.GET("/:id/solves", controllers.GetTeamSolves)
			teamRoutes.GET("/:id/hint-purchases", controllers.GetTeamHintPurchases)
		}
		adminTeamRoutes := apiV1.Group("/admin/teams")
		adminTeamRoutes.Use(middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminTeamRoutes.GET("", controllers.AdminGetTeams)
			adminTeamRoutes.PUT("/:id/status", controllers.AdminUpdateTeamStatus)
			adminTeamRoutes.DELETE("/:id", controllers.AdminDeleteTeam)
		}

		// --- 题目分类 ---
		categoryRoutes := apiV1.Group("/categories")
		{
			// 公开接口
			categoryRoutes.GET("", controllers.GetCategoryList)
			categoryRoutes.GET("/:id", controllers.GetCategoryDetail)

			// 管理员接口
			categoryRoutes.POST("", middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin), controllers.CreateCategory)
			categoryRoutes.PUT("/:id", middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin), controllers.UpdateCategory)
			categoryRoutes.DELETE("/:id", middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin), controllers.DeleteCategory)
		}

		// --- 题目模块 ---
		challengeRoutes := apiV1.Group("/challenges")
		{
			// 用户接口
			challengeRoutes.GET("", middlewares.JWTAuthMiddleware(), controllers.ListChallenges)
			challengeRoutes.GET("/:id", middlewares.JWTAuthMiddleware(), controllers.GetChallengeDetail)
			challengeRoutes.POST("/:id/submit", middlewares.JWTAuthMiddleware(), controllers.SubmitFlag)

			// 管理员接口
			challengeRoutes.POST("", middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin), controllers.CreateChallenge)
			challengeRoutes.PUT("/:id", middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin), controllers.UpdateChallenge)
			challengeRoutes.DELETE("/:id", middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin), controllers.DeleteChallenge)
			challengeRoutes.POST("/:id/hints", middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin), controllers.AddHint)
		}

		// --- 提示 ---
		hintRoutes := apiV1.Group("/hints")
		{
			hintRoutes.POST("/:id/purchase", middlewares.JWTAuthMiddleware(), controllers.PurchaseHint)
			hintRoutes.PUT("/:id", middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin), controllers.UpdateHint)
			hintRoutes.DELETE("/:id", middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin), controllers.DeleteHint)
		}

		// --- 排行榜与实时信息 ---
		apiV1.GET("/scoreboard", controllers.GetScoreboard)
		apiV1.GET("/solve-feed", controllers.GetSolveFeed)
		apiV1.GET("/event-status", controllers.GetEventStatus)
		apiV1.GET("/live", controllers.StreamEvents)
	}

	return r
}
