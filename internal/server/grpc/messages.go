package grpc

import "time"

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Session struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
}

type CreateCapsuleRequest struct {
	Message  string    `json:"message"`
	UnlockAt time.Time `json:"unlock_at"`
}

type CreateCapsuleResponse struct {
	ID         string    `json:"id"`
	UnlockCode string    `json:"unlock_code"`
	UnlockAt   time.Time `json:"unlock_at"`
}

// CapsuleRef addresses a capsule together with its unlock code.
type CapsuleRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type Capsule struct {
	ID            string    `json:"id"`
	Message       string    `json:"message"`
	UnlockAt      time.Time `json:"unlock_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
}

type ListCapsulesRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type CapsuleSummary struct {
	ID        string    `json:"id"`
	Message   *string   `json:"message"`
	UnlockAt  time.Time `json:"unlock_at"`
	Retired   bool      `json:"retired"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListCapsulesResponse struct {
	Capsules   []CapsuleSummary `json:"capsules"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

type UpdateCapsuleRequest struct {
	ID       string     `json:"id"`
	Code     string     `json:"code"`
	Message  *string    `json:"message,omitempty"`
	UnlockAt *time.Time `json:"unlock_at,omitempty"`
}

type CapsuleID struct {
	ID string `json:"id"`
}
