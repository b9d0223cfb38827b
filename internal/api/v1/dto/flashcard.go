package dto

import "studyflow/internal/model"

// FlashcardCreateDTO is used for incoming flashcard create requests
type FlashcardCreateDTO struct {
	DocumentID string  `json:"documentId" validate:"required"`
	Front      string  `json:"front" validate:"required"`
	Back       string  `json:"back" validate:"required"`
	Hint       *string `json:"hint,omitempty"`
	Difficulty string  `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
	Category   *string `json:"category,omitempty"`
}

type FlashcardCreateResponseDTO struct {
	Message   string           `json:"message"`
	Flashcard *model.Flashcard `json:"flashcard"`
}
