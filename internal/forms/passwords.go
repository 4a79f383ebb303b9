package forms

import (
	_ "embed"
	"strings"
)

// Denylist of passwords seen in public breach corpora. Matched
// case-insensitively, same as the registration form's other checks.
//
//go:embed common_passwords.txt
var commonPasswordData string

var commonPasswords = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(commonPasswordData, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		set[strings.ToLower(line)] = struct{}{}
	}
	return set
}()

func isCommonPassword(password string) bool {
	_, ok := commonPasswords[strings.ToLower(password)]
	return ok
}
