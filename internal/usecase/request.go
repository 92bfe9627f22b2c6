package usecase

import (
	"celestial/internal/domain/models"
	"celestial/pkg/util"
)

// BirthInputFromRequest converts a bound and validated ChartRequest into a
// BirthInput. Date and clock are taken as UTC civil time.
func BirthInputFromRequest(req models.ChartRequest) (models.BirthInput, error) {
	if req.Latitude == nil {
		return models.BirthInput{}, &models.ValidationError{Field: "latitude", Message: "is required"}
	}
	if req.Longitude == nil {
		return models.BirthInput{}, &models.ValidationError{Field: "longitude", Message: "is required"}
	}
	if _, err := util.ParseDate(req.BirthDate); err != nil {
		return models.BirthInput{}, &models.ValidationError{Field: "birth_date", Message: err.Error()}
	}
	ts, err := util.ParseBirthDateTime(req.BirthDate, req.BirthTime)
	if err != nil {
		return models.BirthInput{}, &models.ValidationError{Field: "birth_time", Message: err.Error()}
	}
	return models.NewBirthInput(req.Name, ts, *req.Latitude, *req.Longitude)
}
