package model

// User is the minimal profile kept client-side
type User struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email"`
}
