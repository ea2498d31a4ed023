package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// UsernamePattern повторяет правила Django auth: буквы, цифры и @ . + - _
var UsernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// MaxUsernameLen максимальная длина username на сервере
const MaxUsernameLen = 150

// ValidateUsername проверяет username до отправки на сервер
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if utf8.RuneCountInString(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters, digits and @/./+/-/_")
	}

	return nil
}

// ValidatePassword проверяет только наличие пароля.
// Политику сложности применяет сервер.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	return nil
}

// ValidateCredentials проверяет пару логин/пароль
func ValidateCredentials(username, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	return ValidatePassword(password)
}
