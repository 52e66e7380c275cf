package models

import "strings"

// User is the identity handle issued by Supabase Auth.
type User struct {
	ID          string `json:"id"` // uuid
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func (u *User) Name() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}
