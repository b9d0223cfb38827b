package dto

import "studyflow/internal/model"

// StoryCreateDTO is the body of POST /api/story
type StoryCreateDTO struct {
	InputText     string `json:"inputText"`
	NarrationMode string `json:"narrationMode,omitempty"`
}

// StoryResponseDTO carries the generated narration and the stored row
type StoryResponseDTO struct {
	Story         string       `json:"story"`
	NarrationMode string       `json:"narrationMode"`
	StoryID       string       `json:"storyId"`
	SavedStory    *model.Story `json:"savedStory"`
}

type AudioResponseDTO struct {
	AudioURL string `json:"audioUrl"`
	Message  string `json:"message"`
}
