// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

// Allows + prefix followed by up to 15 digits, no leading zero
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

var phoneReplacer = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// CleanPhone strips the separators customers commonly type.
func CleanPhone(phone string) string {
	return phoneReplacer.Replace(strings.TrimSpace(phone))
}

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(CleanPhone(phone))
}
