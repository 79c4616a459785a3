package models

import "gorm.io/gorm"

// User represents a trader profile linked to a Firebase account
type User struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name"`
	Email       string `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Bio         string `json:"bio,omitempty"`
	FirebaseUID string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // Link to Firebase User UID; also the id the social core uses
}

type CreateUserRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Bio         string `json:"bio,omitempty" validate:"omitempty,max=300"`
	FirebaseUID string `json:"firebase_uid" validate:"required"` // Firebase UID will be provided by the client after Firebase Auth
}

type UpdateUserRequest struct {
	Name string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Bio  string `json:"bio,omitempty" validate:"omitempty,max=300"`
}
