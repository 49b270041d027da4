package models

// User is an account row. Passwords are stored as salted PBKDF2 hashes
// only; the plaintext never reaches the database.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:10;uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"column:password;size:255;not null" json:"-"`
}

// TableName keeps the legacy table name the schema was created with.
func (User) TableName() string { return "users" }
