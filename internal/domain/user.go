package domain

// Roles stored in users.role
const (
	RoleUser  = "Usuario"       // Default role for every new account
	RoleAdmin = "Administrador" // Grants access to /admin routes
)

// User Model, mapped onto the users table managed by the schema reconciler
type User struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`                                              // Primary key
	Username            string    `gorm:"unique;not null" json:"username"`                                   // Unique username
	Email               string    `gorm:"unique;not null" json:"email"`                                      // Unique email
	Phone               *string   `json:"phone,omitempty"`                                                   // Optional phone number
	PasswordHash        string    `gorm:"column:password_hash;not null" json:"-"`                            // Hashed password
	ReferralCode        *string   `json:"referral_code,omitempty"`                                           // Optional referral code
	Role                string    `gorm:"default:Usuario;not null" json:"role"`                              // Usuario or Administrador
	TransactionsHistory string    `gorm:"column:transactions_history;default:[]" json:"-"`                   // JSON list of HistoryEntry
	Balance             float64   `gorm:"default:0" json:"balance"`                                          // Wallet balance
	CreatedAt           Timestamp `gorm:"column:created_at;<-:false;autoCreateTime:false" json:"created_at"` // Set by the database default
}

// TableName pins the model to the users table
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidRole reports whether role is one of the known roles
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
