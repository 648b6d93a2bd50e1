package dto

import "github.com/bpadilla17/radladder-game/internal/models"

type OptionInput struct {
	Label string `json:"label" binding:"required,oneof=A B C D"`
	Text  string `json:"text" binding:"required"`
}

type CreateQuestionRequest struct {
	ID            string        `json:"id"`
	Rung          int           `json:"rung" binding:"required,min=1,max=10"`
	Scenario      string        `json:"scenario" binding:"required"`
	Options       []OptionInput `json:"options" binding:"required,min=2,max=4,dive"`
	CorrectOption string        `json:"correct_option" binding:"required,oneof=A B C D"`
	TeachingPoint string        `json:"teaching_point"`
	ImageRefs     []string      `json:"image_refs"`
}

func (r *CreateQuestionRequest) ToModel() *models.Question {
	options := make([]models.Option, len(r.Options))
	for i, o := range r.Options {
		options[i] = models.Option{Label: o.Label, Text: o.Text}
	}
	return &models.Question{
		ID:            r.ID,
		Rung:          r.Rung,
		Scenario:      r.Scenario,
		Options:       options,
		CorrectOption: r.CorrectOption,
		TeachingPoint: r.TeachingPoint,
		ImageRefs:     r.ImageRefs,
	}
}

type QuestionResponse struct {
	Question *models.Question `json:"question"`
}

type QuestionsResponse struct {
	Questions []*models.Question `json:"questions"`
	Total     int                `json:"total"`
}
