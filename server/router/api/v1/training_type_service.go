package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// TrainingType is one entry of the static training catalog.
type TrainingType struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Duration int    `json:"duration"` // minutes
}

var trainingTypes = []TrainingType{
	{ID: 1, Name: "Azure Fundamentals", Category: "Azure", Duration: 60},
	{ID: 2, Name: "Python Basics", Category: "Python", Duration: 90},
	{ID: 3, Name: "Advanced Python", Category: "Python", Duration: 120},
	{ID: 4, Name: "Azure DevOps", Category: "Azure", Duration: 90},
	{ID: 5, Name: "Data Science with Python", Category: "Python", Duration: 120},
	{ID: 6, Name: "Azure AI Services", Category: "Azure", Duration: 90},
	{ID: 7, Name: "Web Development", Category: "General", Duration: 120},
	{ID: 8, Name: "Database Management", Category: "General", Duration: 90},
}

// ListTrainingTypes returns the training catalog, optionally filtered by
// category (case-insensitive).
// GET /api/v1/training-types
func (s *APIV1Service) ListTrainingTypes(c echo.Context) error {
	category := c.QueryParam("category")

	out := make([]TrainingType, 0, len(trainingTypes))
	for _, t := range trainingTypes {
		if category != "" && !strings.EqualFold(t.Category, category) {
			continue
		}
		out = append(out, t)
	}
	return c.JSON(http.StatusOK, out)
}
