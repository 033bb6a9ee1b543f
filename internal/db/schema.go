package db

// UsersTable is the only table the service owns.
const UsersTable = "users"

// createUsersTable holds the full, current definition used for fresh installs.
const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    email TEXT UNIQUE NOT NULL,
    phone TEXT,
    password_hash TEXT NOT NULL,
    referral_code TEXT,
    role TEXT DEFAULT 'Usuario' NOT NULL,
    transactions_history TEXT DEFAULT '[]',
    balance REAL DEFAULT 0.00,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Column describes one expected column of the users table.
type Column struct {
	Name       string
	Type       string
	Definition string // column definition as written in ADD COLUMN
}

// UserColumns is the expected column set, in table order.
var UserColumns = []Column{
	{Name: "id", Type: "INTEGER", Definition: "id INTEGER PRIMARY KEY AUTOINCREMENT"},
	{Name: "username", Type: "TEXT", Definition: "username TEXT UNIQUE NOT NULL"},
	{Name: "email", Type: "TEXT", Definition: "email TEXT UNIQUE NOT NULL"},
	{Name: "phone", Type: "TEXT", Definition: "phone TEXT"},
	{Name: "password_hash", Type: "TEXT", Definition: "password_hash TEXT NOT NULL"},
	{Name: "referral_code", Type: "TEXT", Definition: "referral_code TEXT"},
	roleColumn,
	historyColumn,
	balanceColumn,
	{Name: "created_at", Type: "DATETIME", Definition: "created_at DATETIME DEFAULT CURRENT_TIMESTAMP"},
}

var (
	roleColumn    = Column{Name: "role", Type: "TEXT", Definition: "role TEXT DEFAULT 'Usuario' NOT NULL"}
	historyColumn = Column{Name: "transactions_history", Type: "TEXT", Definition: "transactions_history TEXT DEFAULT '[]'"}
	balanceColumn = Column{Name: "balance", Type: "REAL", Definition: "balance REAL DEFAULT 0.00"}
)

// evolvableColumns were introduced after the first release and are added to
// older tables on startup. Order is significant.
var evolvableColumns = []Column{roleColumn, historyColumn, balanceColumn}

func addColumnStatement(c Column) string {
	return "ALTER TABLE " + UsersTable + " ADD COLUMN " + c.Definition
}
