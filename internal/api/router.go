package api

import (
	"errors" // Error values

	"turso_wallet/internal/middleware" // Auth and logging middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

var errNoSecret = errors.New("JWT_SECRET is not set")

// NewRouter wires every route. rdb may be nil, which disables caching.
func NewRouter(db *gorm.DB, rdb *redis.Client, jwtSecret string) (*gin.Engine, error) {
	if jwtSecret == "" {
		return nil, errNoSecret
	}
	r := gin.New()
	r.Use(middleware.Logging(logrus.StandardLogger()), gin.Recovery())

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		return nil, err
	}

	r.GET("/health", HealthHandler(db))

	// Auth routes
	r.POST("/user", RegisterHandler(db, rdb))          // Registration endpoint
	r.POST("/user/login", LoginHandler(db, jwtSecret)) // Login endpoint

	// Wallet routes (protected by JWT)
	walletGroup := r.Group("/wallet")
	walletGroup.Use(middleware.JWTAuthMiddleware(jwtSecret))
	walletGroup.GET("", GetWalletHandler(db, rdb))                          // Balance endpoint
	walletGroup.POST("/deposit", DepositHandler(db, rdb))                   // Deposit endpoint
	walletGroup.POST("/transfer", TransferHandler(db, rdb))                 // Transfer endpoint
	walletGroup.GET("/transactions", GetTransactionHistoryHandler(db, rdb)) // Transaction history endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(jwtSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/users", ListUsersHandler(db, rdb))                    // List users endpoint
	adminGroup.PUT("/users/:id/role", SetRoleHandler(db, rdb))             // Role assignment endpoint
	adminGroup.GET("/users/:id/transactions", UserTransactionsHandler(db)) // Per-user history endpoint

	return r, nil
}
