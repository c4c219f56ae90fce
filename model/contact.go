package model

import "strings"

type ContactInfo struct {
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	OpeningHours string `json:"opening_hours,omitempty"`
}

type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// Validate returns field errors keyed the way the server reports them.
func (m ContactMessage) Validate() map[string][]string {
	errs := make(map[string][]string)
	if strings.TrimSpace(m.Name) == "" {
		errs["name"] = append(errs["name"], "The name field is required.")
	}
	if strings.TrimSpace(m.Email) == "" {
		errs["email"] = append(errs["email"], "The email field is required.")
	} else if !strings.Contains(m.Email, "@") {
		errs["email"] = append(errs["email"], "The email must be a valid email address.")
	}
	if strings.TrimSpace(m.Message) == "" {
		errs["message"] = append(errs["message"], "The message field is required.")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
