// file: controllers/user_controller.go
package controllers

import (
	"strconv"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/database"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/utils"
	"github.com/gin-gonic/gin"
)

// --- 公开接口 ---

func Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
		Email    string `json:"email" binding:"required,email"`
		RealName string `json:"real_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	var user models.User
	if err := database.DB.Where("username = ? OR email = ?", req.Username, req.Email).First(&user).Error; err == nil {
		utils.Error(c, 2001, "用户名或邮箱已被注册")
		return
	}

	newUser := models.User{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		RealName: req.RealName,
	}

	if err := database.DB.Create(&newUser).Error; err != nil {
		utils.Error(c, 5000, "数据库错误: "+err.Error())
		return
	}

	utils.Success(c, "User registered successfully", gin.H{
		"id":       newUser.ID,
		"username": newUser.Username,
		"role":     newUser.Role,
	})
}

func Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.Error(c, 2002, "用户不存在或密码错误")
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Error(c, 2002, "用户不存在或密码错误")
		return
	}

	if user.Status == models.StatusBanned {
		utils.Error(c, 2005, "用户已被封禁")
		return
	}

	token, err := utils.GenerateToken(user)
	if err != nil {
		utils.Error(c, 5002, "Token 生成失败")
		return
	}

	utils.Success(c, "Login success", gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
			"points":   user.Points,
		},
	})
}

// --- 登录用户接口 ---

func GetUserDetail(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		utils.Error(c, 4004, "用户不存在")
		return
	}

	// 所在队伍（可能没有）
	var member models.TeamMember
	var teamInfo gin.H
	if err := database.DB.Where("user_id = ?", user.ID).First(&member).Error; err == nil {
		var team models.Team
		if err := database.DB.First(&team, member.TeamID).Error; err == nil {
			teamInfo = gin.H{
				"id":        team.ID,
				"team_name": team.TeamName,
				"points":    team.Points,
			}
		}
	}

	utils.Success(c, "success", gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"real_name": user.RealName,
		"role":      user.Role,
		"status":    user.Status,
		"points":    user.Points,
		"team":      teamInfo,
	})
}

func UpdateUser(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	callerIDAny, _ := c.Get("user_id")
	callerID := callerIDAny.(uint32)
	roleAny, _ := c.Get("user_role")
	role := roleAny.(models.UserRole)

	// 只能修改自己，管理员除外
	if uint32(id) != callerID && role != models.RoleAdmin && role != models.RoleRootAdmin {
		utils.Error(c, 4003, "权限不足")
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		utils.Error(c, 4004, "用户不存在")
		return
	}

	var req struct {
		RealName *string `json:"real_name"`
		Password *string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效")
		return
	}

	if req.RealName != nil {
		user.RealName = *req.RealName
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			utils.Error(c, 1001, "密码长度至少 8 位")
			return
		}
		user.Password = *req.Password
	}

	if err := database.DB.Save(&user).Error; err != nil {
		utils.Error(c, 5000, "更新用户失败")
		return
	}

	utils.Success(c, "User updated successfully", nil)
}

// --- 管理员接口 ---

func GetUserList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	search := c.Query("search")

	db := database.DB.Model(&models.User{})
	if search != "" {
		db = db.Where("username LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	db.Count(&total)

	var users []models.User
	if err := db.Order("id asc").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}

	utils.Success(c, "success", gin.H{
		"total": total,
		"page":  page,
		"limit": limit,
		"users": users,
	})
}

func DeleteUser(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	if err := database.DB.Delete(&models.User{}, id).Error; err != nil {
		utils.Error(c, 5000, "删除用户失败")
		return
	}
	utils.Success(c, "User deleted successfully", nil)
}

func UpdateUserStatus(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req struct {
		Status models.UserStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效")
		return
	}
	if req.Status != models.StatusActive && req.Status != models.StatusBanned {
		utils.Error(c, 1001, "status 取值无效（active/banned）")
		return
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", id).Update("status", req.Status)
	if result.Error != nil {
		utils.Error(c, 5000, "更新用户状态失败")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(c, 4004, "用户不存在")
		return
	}

	utils.Success(c, "User status updated successfully", nil)
}

func UpdateUserRole(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req struct {
		Role models.UserRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效")
		return
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		utils.Error(c, 1001, "role 取值无效（user/admin）")
		return
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", id).Update("role", req.Role)
	if result.Error != nil {
		utils.Error(c, 5000, "更新用户角色失败")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(c, 4004, "用户不存在")
		return
	}

	utils.Success(c, "User role updated successfully", nil)
}
