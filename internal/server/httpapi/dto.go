package httpapi

import "time"

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Token   string `json:"token"`
}

type createCapsuleRequest struct {
	Message  *string `json:"message"`
	UnlockAt *string `json:"unlock_at"`
}

type createdCapsule struct {
	ID         string    `json:"id"`
	UnlockCode string    `json:"unlock_code"`
	UnlockAt   time.Time `json:"unlock_at"`
}

type createCapsuleResponse struct {
	Message string         `json:"message"`
	Capsule createdCapsule `json:"capsule"`
}

type capsuleResponse struct {
	ID            string    `json:"id"`
	Message       string    `json:"message"`
	UnlockAt      time.Time `json:"unlock_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	AttachmentURL string    `json:"attachment_url,omitempty"`
}

type capsuleSummary struct {
	ID        string    `json:"id"`
	Message   *string   `json:"message"`
	UnlockAt  time.Time `json:"unlock_at"`
	Retired   bool      `json:"retired"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type listResponse struct {
	Capsules   []capsuleSummary `json:"capsules"`
	Pagination pagination       `json:"pagination"`
}

type updateCapsuleRequest struct {
	Message  *string `json:"message"`
	UnlockAt *string `json:"unlock_at"`
}

type mutationResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type attachmentResponse struct {
	ID        string `json:"id"`
	UploadURL string `json:"upload_url"`
}

type notYetUnlockedResponse struct {
	Error    string    `json:"error"`
	UnlockAt time.Time `json:"unlock_at"`
}
