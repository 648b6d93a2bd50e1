package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bpadilla17/radladder-game/internal/models"
)

// LoadSeedFile reads a JSON array of questions.
func LoadSeedFile(path string) ([]*models.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var questions []*models.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return questions, nil
}
