package dto

// StudySessionCreateDTO records one study sitting
type StudySessionCreateDTO struct {
	DocumentID      *string `json:"documentId,omitempty"`
	SessionType     string  `json:"sessionType,omitempty" validate:"omitempty,max=50"`
	CardsStudied    int     `json:"cardsStudied" validate:"gte=0"`
	CorrectAnswers  int     `json:"correctAnswers" validate:"gte=0,ltefield=CardsStudied"`
	SessionDuration int     `json:"sessionDuration" validate:"gte=0"`
}
