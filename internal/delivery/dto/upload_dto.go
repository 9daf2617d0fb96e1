package dto

import "time"

// Request DTOs

type PresignUploadRequest struct {
	Purpose     string `json:"purpose" validate:"required,oneof=design payment_proof production_photo site_photo"`
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required,max=100"`
}

type PresignDownloadRequest struct {
	Key string `json:"key" validate:"required,max=512"`
}

// Response DTOs

type PresignResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}
