package dto

import "studyflow/internal/model"

// DocumentUploadResponseDTO is returned after a successful upload
type DocumentUploadResponseDTO struct {
	Message  string          `json:"message"`
	Document *model.Document `json:"document"`
}
