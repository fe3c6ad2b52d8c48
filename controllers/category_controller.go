// file: controllers/category_controller.go
package controllers

import (
	"strconv"

	"github.com/CCEE-SRM/ctf-dashboard-sub000/database"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/models"
	"github.com/CCEE-SRM/ctf-dashboard-sub000/utils"
	"github.com/gin-gonic/gin"
)

// CreateCategory 新增题目分类
func CreateCategory(c *gin.Context) {
	var req struct {
		Direction   string `json:"direction" binding:"required"`
		Alias       string `json:"alias"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	var existing models.Category
	if err := database.DB.Where("direction = ?", req.Direction).First(&existing).Error; err == nil {
		utils.Error(c, 4001, "Category already exists")
		return
	}

	newCategory := models.Category{
		Direction:   req.Direction,
		Alias:       req.Alias,
		Description: req.Description,
	}

	if err := database.DB.Create(&newCategory).Error; err != nil {
		utils.Error(c, 5000, "数据库错误: "+err.Error())
		return
	}

	utils.Success(c, "Category created successfully", gin.H{
		"id":        newCategory.ID,
		"direction": newCategory.Direction,
	})
}

// GetCategoryList 查询题目分类列表
func GetCategoryList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	search := c.Query("search")

	var categories []models.Category
	var total int64

	db := database.DB.Model(&models.Category{})

	if search != "" {
		db = db.Where("direction LIKE ? OR alias LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	db.Count(&total)
	if err := db.Order("id asc").Offset((page - 1) * limit).Limit(limit).Find(&categories).Error; err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}

	utils.Success(c, "success", gin.H{
		"total":      total,
		"categories": categories,
	})
}

// GetCategoryDetail 查询题目分类详情
func GetCategoryDetail(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var category models.Category
	if err := database.DB.First(&category, id).Error; err != nil {
		utils.Error(c, 4004, "分类不存在")
		return
	}

	utils.Success(c, "success", category)
}

// UpdateCategory 修改题目分类
func UpdateCategory(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var category models.Category
	if err := database.DB.First(&category, id).Error; err != nil {
		utils.Error(c, 4004, "分类不存在")
		return
	}

	var req struct {
		Direction   *string `json:"direction"`
		Alias       *string `json:"alias"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效")
		return
	}

	updates := map[string]interface{}{}
	if req.Direction != nil {
		updates["direction"] = *req.Direction
	}
	if req.Alias != nil {
		updates["alias"] = *req.Alias
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		utils.Error(c, 1001, "没有需要更新的字段")
		return
	}

	if err := database.DB.Model(&category).Updates(updates).Error; err != nil {
		utils.Error(c, 5000, "更新分类失败")
		return
	}

	utils.Success(c, "Category updated successfully", nil)
}

// DeleteCategory 删除题目分类（被题目引用时拒绝）
func DeleteCategory(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var count int64
	database.DB.Model(&models.Challenge{}).Where("category_id = ?", id).Count(&count)
	if count > 0 {
		utils.Error(c, 4002, "该分类下仍有题目，无法删除")
		return
	}

	result := database.DB.Delete(&models.Category{}, id)
	if result.Error != nil {
		utils.Error(c, 5000, "删除分类失败")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(c, 4004, "分类不存在")
		return
	}

	utils.Success(c, "Category deleted successfully", nil)
}
