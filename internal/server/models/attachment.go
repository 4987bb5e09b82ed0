package models

// AttachmentUpload tells the client where to PUT an attachment for a capsule.
type AttachmentUpload struct {
	// CapsuleID identifies the capsule the attachment belongs to.
	CapsuleID string
	// URL is a temporary presigned HTTP URL accepting the attachment bytes.
	URL string
}
