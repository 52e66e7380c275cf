package models

import "time"

type Profile struct {
	UserID          string    `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Email           string    `gorm:"column:email;type:text" json:"email"`
	FullName        string    `gorm:"column:full_name;type:text" json:"full_name"`
	ProfileComplete bool      `gorm:"column:profile_complete;default:false" json:"profile_complete"`
	CreatedAt       time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	LastLogin       time.Time `gorm:"column:last_login;type:timestamptz" json:"last_login"`
}

func (Profile) TableName() string { return "profiles" }
