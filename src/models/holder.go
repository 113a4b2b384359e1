package models

import "time"

// Holder is an account that can declare positions. Its Positions are read
// through the holder_positions index, never stored on the struct.
type Holder struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	FirstName    string    `db:"first_name" json:"firstName"`
	LastName     string    `db:"last_name" json:"lastName"`
	PasswordHash string    `db:"password_hash" json:"-"`
	AddressID    *int      `db:"address_id" json:"addressId,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
