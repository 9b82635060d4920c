package model

// All responses carry the success flag; errors carry only a message so no
// internal detail reaches clients.

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AuthResponse struct {
	Success bool   `json:"success"`
	User    User   `json:"user"`
	Token   string `json:"token"`
}

type ProfileResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

type VideoResponse struct {
	Success bool  `json:"success"`
	Video   Video `json:"video"`
}

type VideoListResponse struct {
	Success bool    `json:"success"`
	Count   int     `json:"count"`
	Videos  []Video `json:"videos"`
}
