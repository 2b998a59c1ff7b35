package validate

import (
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"
)

// validateMongoURI checks that a string is a parseable MongoDB connection string.
// Tag usage: mongouri
func validateMongoURI(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true // left to "required"
	}

	_, err := connstring.ParseAndValidate(s)

	return err == nil
}

// validateLogLevel checks that a string is a zerolog level name.
// Tag usage: loglevel
func validateLogLevel(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true // default level
	}

	_, err := zerolog.ParseLevel(s)

	return err == nil
}
