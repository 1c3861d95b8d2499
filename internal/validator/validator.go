// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"momolens/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("tx_category", validateCategory)
		_ = v.RegisterValidation("upload_status", validateUploadStatus)
	}
}

// validateCategory accepts any known category plus the "all" filter value.
func validateCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "all" {
		return true
	}
	return models.Category(value).Valid()
}

func validateUploadStatus(fl validator.FieldLevel) bool {
	return models.UploadStatus(fl.Field().String()).Valid()
}
