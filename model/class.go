package model

// GymClass ..
type GymClass struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Instructor      string `json:"instructor,omitempty"`
	Schedule        string `json:"schedule,omitempty"`
	Capacity        int    `json:"capacity,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}
