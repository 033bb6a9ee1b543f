package api

import (
	"net/http"                     // HTTP status codes
	"strconv"                      // String conversion
	"turso_wallet/internal/domain" // Importing domain models
	"turso_wallet/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// UsersResponse is one page of the admin user listing
type UsersResponse struct {
	Users      []domain.User `json:"users"`       // List of users
	Page       int           `json:"page"`        // Current page
	PageSize   int           `json:"page_size"`   // Page size
	Total      int64         `json:"total"`       // Total number of users
	TotalPages int           `json:"total_pages"` // Total pages
	Cached     bool          `json:"cached"`      // Served from Redis
}

// RoleRequest is the body of PUT /admin/users/:id/role
type RoleRequest struct {
	Role string `json:"role" binding:"required"` // Usuario or Administrador
}

// ListUsersHandler returns all users with their balance and role
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		page, pageSize := utils.ParsePagination(c.Query("page"), c.Query("page_size"))
		cacheKey := "admin:users:page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var resp UsersResponse
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &resp); err == nil && found {
			resp.Cached = true
			c.JSON(http.StatusOK, resp)
			return
		}
		var total int64 // Total user count
		if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
			return
		}
		users := []domain.User{}
		if err := db.Omit("password_hash", "transactions_history").
			Order("id").
			Offset((page - 1) * pageSize).
			Limit(pageSize).
			Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		resp = UsersResponse{
			Users:      users,
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: utils.TotalPages(total, pageSize),
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, utils.CacheTTL) // Cache the response
		c.JSON(http.StatusOK, resp)
	}
}

func userIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// SetRoleHandler changes a user's role
func SetRoleHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := userIDParam(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}
		var req RoleRequest
		if err := c.ShouldBindJSON(&req); err != nil || !domain.ValidRole(req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be " + domain.RoleUser + " or " + domain.RoleAdmin})
			return
		}
		res := db.Model(&domain.User{}).Where("id = ?", id).Update("role", req.Role)
		if res.Error != nil {
			logrus.WithError(res.Error).WithField("user_id", id).Error("Failed to update role")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": id,       // Target user
			"role":    req.Role, // New role
		}).Info("Role updated")
		_ = utils.DeletePattern(c.Request.Context(), rdb, utils.AdminUsersPattern)
		c.JSON(http.StatusOK, gin.H{"message": "Role updated", "role": req.Role})
	}
}

// UserTransactionsHandler returns any user's history, optionally filtered by type
func UserTransactionsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := userIDParam(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}
		entryType := c.Query("type")
		switch entryType {
		case "", domain.EntryDeposit, domain.EntryTransferIn, domain.EntryTransferOut:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown transaction type"})
			return
		}
		page, pageSize := utils.ParsePagination(c.Query("page"), c.Query("page_size"))
		resp, status, msg := loadHistory(db, id, entryType, page, pageSize)
		if status != http.StatusOK {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HealthHandler reports whether the database answers
func HealthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.WithContext(c.Request.Context()).Exec("SELECT 1").Error; err != nil {
			logrus.WithError(err).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
