package auth

import (
	"regexp"

	"github.com/hazyrose/inkwell/internal/common"
)

var (
	usernameRX = regexp.MustCompile(`^[a-zA-Z0-9]{3,25}$`)
	emailRX    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

func ValidateUsername(v *common.Validator, username string) {
	v.Check(username != "", "username", "must be provided")
	v.Check(v.Matches(username, usernameRX), "username", "must be 3-25 alphanumeric characters")
}

func ValidateEmail(v *common.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(v.Matches(email, emailRX), "email", "must be a valid email address")
}

func ValidatePassword(v *common.Validator, password string) {
	v.Check(password != "", "password", "must be provided")
	v.Check(v.CheckStringLength(password, 8, 72), "password", "must be between 8 and 72 characters")
}

func ValidateRegistration(v *common.Validator, username, email, password string) {
	ValidateUsername(v, username)
	ValidateEmail(v, email)
	ValidatePassword(v, password)
}
