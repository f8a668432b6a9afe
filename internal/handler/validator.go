package handler

import (
	"errors"
	"regexp"

	"github.com/goevery/retroboard/internal/ierr"
)

const maxIdLength = 128

// IdValidator checks client supplied retrospective and note ids. REST path
// ids must match idRegex; room ids from presence messages are opaque.
type IdValidator struct {
	idRegex *regexp.Regexp
}

func NewIdValidator() *IdValidator {
	return &IdValidator{
		idRegex: regexp.MustCompile(`^[\w-]+$`),
	}
}

func (v *IdValidator) Validate(field string, id string) error {
	if len(id) > maxIdLength || !v.idRegex.MatchString(id) {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid "+field))
	}

	return nil
}

// ValidateRoomId accepts any non-empty room id up to maxIdLength bytes.
func (v *IdValidator) ValidateRoomId(id string) error {
	if id == "" || len(id) > maxIdLength {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid retrospectiveId"))
	}

	return nil
}
