package services

import (
	"net/mail"
	"unicode/utf8"

	"github.com/tudao164/KiemThuPhanMem/types"
)

const (
	minPasswordBytes = 6
	maxPasswordBytes = 72 // bcrypt ignores anything longer
	maxNameRunes     = 100
	maxEmailRunes    = 255
	maxTitleRunes    = 200
)

func validateEmail(errs fieldErrors, email string) {
	switch {
	case email == "":
		errs.add("email", "is required")
	case utf8.RuneCountInString(email) > maxEmailRunes:
		errs.add("email", "is too long")
	default:
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			errs.add("email", "is not a valid email address")
		}
	}
}

func validatePassword(errs fieldErrors, password string) {
	switch {
	case password == "":
		errs.add("password", "is required")
	case len(password) < minPasswordBytes:
		errs.add("password", "must be at least 6 characters")
	case len(password) > maxPasswordBytes:
		errs.add("password", "must be at most 72 bytes")
	}
}

func validateName(errs fieldErrors, name string) {
	switch {
	case name == "":
		errs.add("name", "is required")
	case utf8.RuneCountInString(name) > maxNameRunes:
		errs.add("name", "must be at most 100 characters")
	}
}

func validateTitle(errs fieldErrors, title string) {
	switch {
	case title == "":
		errs.add("title", "is required")
	case utf8.RuneCountInString(title) > maxTitleRunes:
		errs.add("title", "must be at most 200 characters")
	}
}

func validateStatus(errs fieldErrors, field string, status types.TaskStatus) {
	if status != "" && !status.Valid() {
		errs.add(field, "must be one of pending, in_progress, completed")
	}
}

func validatePriority(errs fieldErrors, field string, priority types.TaskPriority) {
	if priority != "" && !priority.Valid() {
		errs.add(field, "must be one of low, medium, high")
	}
}
