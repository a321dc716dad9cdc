package entity

import "time"

// User represents an account row in the `users` table. The password hash is
// never serialized; plaintext passwords exist only transiently in handlers.
type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
