package pipeline

import (
	"unicode/utf8"

	"github.com/acceleratedhq/report-api/internal/dto"
	"github.com/acceleratedhq/report-api/internal/models"
)

var validTypes = map[string]bool{
	models.TypeCrash:      true,
	models.TypeSlow:       true,
	models.TypeBug:        true,
	models.TypeSuggestion: true,
}

func validate(req dto.CreateReportRequest) error {
	if utf8.RuneCountInString(req.Message) < 3 {
		return &ValidationError{Reason: "Message must be at least 3 characters"}
	}
	if !validTypes[req.Type] {
		return &ValidationError{Reason: "Type must be one of: crash, slow, bug, suggestion"}
	}
	return nil
}
