package model

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Gym      string `json:"gym,omitempty"`
}

type SignupRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Phone                string `json:"phone,omitempty"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Gym                  string `json:"gym,omitempty"`
}

type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}
