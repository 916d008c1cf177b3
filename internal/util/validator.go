package util

import (
	"errors"
	"net/mail"
	"net/url"
	"strings"
)

// ValidateEmail rejects empty or malformed addresses.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("email is invalid")
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// RequireString rejects blank values.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " is required")
	}
	return nil
}

// ValidateLink accepts absolute http(s) URLs only.
func ValidateLink(link, field string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return errors.New(field + " is required")
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New(field + " must be an http(s) URL")
	}
	return nil
}
