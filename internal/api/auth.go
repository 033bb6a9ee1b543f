package api

import (
	"errors"                       // Error inspection
	"net/http"                     // HTTP status codes
	"regexp"                       // Regular expressions
	"strings"                      // String manipulation
	"turso_wallet/internal/domain" // Importing domain models
	"turso_wallet/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/crypto/bcrypt"   // Password hashing
	"gorm.io/gorm"                 // GORM ORM library
)

// RegisterRequest is the body of POST /user
type RegisterRequest struct {
	Username     string `json:"username" binding:"required"`    // Username must be provided
	Email        string `json:"email" binding:"required,email"` // Valid email must be provided
	Phone        string `json:"phone"`                          // Optional phone number
	Password     string `json:"password" binding:"required"`    // Password must be provided
	ReferralCode string `json:"referral_code"`                  // Optional referral code
}

// LoginRequest is the body of POST /user/login; Username may also be an email
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username or email
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse is returned on successful login
type AuthResponse struct {
	Token string      `json:"token"` // JWT token
	User  domain.User `json:"user"`  // Authenticated user
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,32}$`)

// isValidUsername checks the username is 3-32 letters, digits or underscores
func isValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// isValidPassword checks the password length is between 8 and 72 bytes (bcrypt limit)
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 72
}

// isUniqueViolation reports whether err comes from a UNIQUE constraint.
// The sqlite3 driver is translated by gorm; libSQL errors only carry the message.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// RegisterHandler creates a new user with the default role and a zero balance
func RegisterHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if !isValidUsername(req.Username) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 3-32 letters, digits or underscores"})
			return
		}
		if !isValidPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-72 characters"})
			return
		}
		username := strings.ToLower(req.Username) // Lowercase to keep uniqueness case-insensitive
		email := strings.ToLower(strings.TrimSpace(req.Email))

		var taken int64 // Reject duplicates before hashing
		if err := db.Model(&domain.User{}).Where("username = ? OR email = ?", username, email).Count(&taken).Error; err != nil {
			logrus.WithError(err).Error("Failed to check existing users")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
			return
		}
		if taken > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user := domain.User{
			Username:            username,
			Email:               email,
			Phone:               optional(req.Phone),
			PasswordHash:        string(hash),
			ReferralCode:        optional(req.ReferralCode),
			Role:                domain.RoleUser,
			TransactionsHistory: "[]",
		}
		if err := db.Create(&user).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"username": username,    // Requested username
				"error":    err.Error(), // Error message
			}).Error("Failed to create user")
			if isUniqueViolation(err) { // Lost a race with a concurrent registration
				c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
			return
		}
		if err := db.First(&user, user.ID).Error; err != nil { // Reload to pick up database defaults
			logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to reload registered user")
		}
		if err := utils.DeletePattern(c.Request.Context(), rdb, utils.AdminUsersPattern); err != nil {
			logrus.WithError(err).Warn("Failed to invalidate admin users cache")
		}
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,  // New user ID
			"username": username, // Username
		}).Info("User registered")
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": user})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		login := strings.ToLower(strings.TrimSpace(req.Username))
		var user domain.User // Fetch user by username or email
		if err := db.Where("username = ? OR email = ?", login, login).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		token, err := utils.GenerateJWT(user.ID, user.Username, jwtSecret)
		if err != nil {
			logrus.WithError(err).Error("Failed to generate token")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
	}
}
