// Package forms holds form inputs and their validation rules,
// decoupled from any particular request object.
package forms

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Errors maps a field name to its validation message
type Errors map[string]string

// MovieForm carries the submitted movie fields. RemoveCover is only
// honored on edit and only when no new file is attached.
type MovieForm struct {
	Title       string `form:"title" validate:"required"`
	Year        int    `form:"year" validate:"required,min=1888"`
	Genre       string `form:"genre" validate:"required,oneof=动作 科幻 剧情 喜剧 恐怖 动画 其他"`
	Rating      int    `form:"rating" validate:"required,min=1,max=10"`
	Notes       string `form:"notes"`
	RemoveCover bool   `form:"remove_cover"`
}

// Validate checks the form against its rules and returns field-level
// messages; an empty map means the form is valid
func (f *MovieForm) Validate() Errors {
	fieldErrors := Errors{}

	err := validate.Struct(f)
	if err == nil {
		return fieldErrors
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fieldErrors["form"] = "invalid input"
		return fieldErrors
	}

	for _, fe := range verrs {
		switch fe.Field() {
		case "Title":
			fieldErrors["title"] = "Title must not be empty"
		case "Year":
			fieldErrors["year"] = "Year must be 1888 or later"
		case "Genre":
			fieldErrors["genre"] = "Genre must be one of the listed choices"
		case "Rating":
			fieldErrors["rating"] = "Rating must be between 1 and 10"
		}
	}
	return fieldErrors
}
