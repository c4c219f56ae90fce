package model

type User struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Gym   string `json:"gym,omitempty"`
}

// AuthPayload is the data part of a login or signup response.
type AuthPayload struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
