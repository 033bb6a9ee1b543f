package api

import (
	"context"                          // Context for Redis operations
	"errors"                           // Error inspection
	"net/http"                         // HTTP status codes
	"strings"                          // String manipulation
	"time"                             // Timestamps
	"turso_wallet/internal/domain"     // Importing domain models
	"turso_wallet/internal/middleware" // Authenticated user lookup
	"turso_wallet/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// WalletResponse is returned by GET /wallet
type WalletResponse struct {
	UserID   uint    `json:"user_id"`  // Owner ID
	Username string  `json:"username"` // Owner username
	Balance  float64 `json:"balance"`  // Current balance
	Cached   bool    `json:"cached"`   // Served from Redis
}

// HistoryResponse is one page of a user's transaction history
type HistoryResponse struct {
	Transactions []domain.HistoryEntry `json:"transactions"` // Newest first
	Page         int                   `json:"page"`         // Current page
	PageSize     int                   `json:"page_size"`    // Page size
	Total        int64                 `json:"total"`        // Total entries
	TotalPages   int                   `json:"total_pages"`  // Total pages
	Cached       bool                  `json:"cached"`       // Served from Redis
}

// TransferRequest represents a transfer request
type TransferRequest struct {
	ToUsername string  `json:"to_username" binding:"required"` // Target username
	Amount     float64 `json:"amount" binding:"required,gt=0"` // Transfer amount
}

// DepositRequest represents a deposit request
type DepositRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"` // Deposit amount
}

// invalidateWallet drops the cached balance and history pages of each user
func invalidateWallet(ctx context.Context, rdb *redis.Client, userIDs ...uint) {
	for _, id := range userIDs {
		if err := utils.DeleteCache(ctx, rdb, utils.WalletKey(id)); err != nil {
			logrus.WithError(err).WithField("user_id", id).Warn("Failed to invalidate wallet cache")
		}
		if err := utils.DeletePattern(ctx, rdb, utils.HistoryPattern(id)); err != nil {
			logrus.WithError(err).WithField("user_id", id).Warn("Failed to invalidate history cache")
		}
	}
	// Balances appear in admin listings
	if err := utils.DeletePattern(ctx, rdb, utils.AdminUsersPattern); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate admin users cache")
	}
}

// GetWalletHandler returns the balance of the authenticated user
func GetWalletHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := c.Request.Context()
		cacheKey := utils.WalletKey(userID)
		var resp WalletResponse
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &resp); err == nil && found {
			resp.Cached = true
			c.JSON(http.StatusOK, resp)
			return
		}
		var user domain.User
		if err := db.Select("id", "username", "balance").First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		resp = WalletResponse{UserID: user.ID, Username: user.Username, Balance: user.Balance}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, utils.CacheTTL) // Cache the wallet
		c.JSON(http.StatusOK, resp)
	}
}

// DepositHandler adds funds to the authenticated user's balance
func DepositHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req DepositRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		var user domain.User
		// Balance and history are rewritten together inside one transaction
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&user, userID).Error; err != nil {
				return err
			}
			if err := user.Credit(domain.EntryDeposit, req.Amount, "", time.Now().UTC()); err != nil {
				return err
			}
			return saveWallet(tx, &user)
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"amount":  req.Amount,  // Deposit amount
				"error":   err.Error(), // Error message
			}).Error("Deposit failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Deposit failed"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id": userID,       // User ID
			"amount":  req.Amount,   // Deposit amount
			"balance": user.Balance, // Resulting balance
			"type":    domain.EntryDeposit,
		}).Info("Deposit transaction")
		invalidateWallet(c.Request.Context(), rdb, userID)
		c.JSON(http.StatusOK, gin.H{"message": "Deposit successful", "balance": user.Balance})
	}
}

// TransferHandler moves funds from the authenticated user to another user
func TransferHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		fromUserID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req TransferRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var toUser domain.User // Find target user
		if err := db.Select("id", "username").Where("username = ?", strings.ToLower(req.ToUsername)).First(&toUser).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Target user not found"})
			return
		}
		if toUser.ID == fromUserID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot transfer to yourself"})
			return
		}

		var from domain.User
		err := db.Transaction(func(tx *gorm.DB) error {
			var to domain.User
			if err := tx.First(&from, fromUserID).Error; err != nil {
				return err
			}
			if err := tx.First(&to, toUser.ID).Error; err != nil {
				return err
			}
			now := time.Now().UTC()
			if err := from.Debit(domain.EntryTransferOut, req.Amount, to.Username, now); err != nil {
				return err
			}
			if err := to.Credit(domain.EntryTransferIn, req.Amount, from.Username, now); err != nil {
				return err
			}
			if err := saveWallet(tx, &from); err != nil {
				return err
			}
			return saveWallet(tx, &to)
		})
		switch {
		case errors.Is(err, domain.ErrInsufficientFunds):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient funds"})
			return
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		case err != nil:
			logrus.WithFields(logrus.Fields{
				"from_user_id": fromUserID,  // Sender user ID
				"to_user_id":   toUser.ID,   // Recipient user ID
				"amount":       req.Amount,  // Transfer amount
				"error":        err.Error(), // Error message
			}).Error("Transfer failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Transfer failed"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"from_user_id": fromUserID, // Sender user ID
			"to_user_id":   toUser.ID,  // Recipient user ID
			"amount":       req.Amount, // Transfer amount
			"type":         "transfer",
		}).Info("Transfer transaction")
		invalidateWallet(c.Request.Context(), rdb, fromUserID, toUser.ID)
		c.JSON(http.StatusOK, gin.H{"message": "Transfer successful", "balance": from.Balance})
	}
}

// GetTransactionHistoryHandler returns the authenticated user's history, newest first
func GetTransactionHistoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page, pageSize := utils.ParsePagination(c.Query("page"), c.Query("page_size"))
		ctx := c.Request.Context()
		cacheKey := utils.HistoryKey(userID, page, pageSize)
		var resp HistoryResponse
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &resp); err == nil && found {
			resp.Cached = true
			c.JSON(http.StatusOK, resp)
			return
		}
		resp, status, msg := loadHistory(db, userID, "", page, pageSize)
		if status != http.StatusOK {
			c.JSON(status, gin.H{"error": msg})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, utils.CacheTTL)
		c.JSON(http.StatusOK, resp)
	}
}

// loadHistory reads and pages a user's history, optionally keeping one entry
// type. On failure it returns the HTTP status and a client-facing message.
func loadHistory(db *gorm.DB, userID uint, entryType string, page, pageSize int) (HistoryResponse, int, string) {
	var user domain.User
	if err := db.Select("id", "transactions_history").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return HistoryResponse{}, http.StatusNotFound, "User not found"
		}
		return HistoryResponse{}, http.StatusInternalServerError, "Failed to fetch transactions"
	}
	entries, err := user.History()
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Corrupt transaction history")
		return HistoryResponse{}, http.StatusInternalServerError, "Failed to read transactions"
	}
	if entryType != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Type == entryType {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	total := int64(len(entries))
	return HistoryResponse{
		Transactions: domain.Page(entries, page, pageSize),
		Page:         page,
		PageSize:     pageSize,
		Total:        total,
		TotalPages:   utils.TotalPages(total, pageSize),
	}, http.StatusOK, ""
}

// saveWallet persists only the balance and history columns
func saveWallet(tx *gorm.DB, u *domain.User) error {
	return tx.Model(u).Updates(map[string]any{
		"balance":              u.Balance,
		"transactions_history": u.TransactionsHistory,
	}).Error
}
