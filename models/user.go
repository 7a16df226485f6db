package models

import "time"

// User is a loyalty customer. Profile fields stay null for users created
// implicitly by their first points operation.
type User struct {
	ID        string    `gorm:"primaryKey" json:"id" firestore:"id"`
	Name      *string   `json:"name" firestore:"name"`
	Email     *string   `json:"email" firestore:"email"`
	Phone     *string   `json:"phone" firestore:"phone"`
	Points    int       `gorm:"not null;default:0" json:"points" firestore:"points"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// NewUser returns an empty profile with a zero balance.
func NewUser(id string) User {
	return User{
		ID:        id,
		Points:    0,
		CreatedAt: Now(),
	}
}

// Now is the clock used for every persisted timestamp.
func Now() time.Time {
	return time.Now().UTC()
}
