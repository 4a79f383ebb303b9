package forms

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 150
	minPasswordLen = 8

	// Above this ratio a password is considered too close to the username
	// or email to be safe.
	similarityThreshold = 0.7
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

type RegisterForm struct {
	Username string
	Email    string
	Password string
	Confirm  string
}

// Validate applies every field rule that does not need the database.
// Uniqueness of username/email is left to the store's constraints.
func (f *RegisterForm) Validate() Errors {
	errs := Errors{}

	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)

	switch {
	case f.Username == "":
		errs.Add("username", "Username is required.")
	case len([]rune(f.Username)) < minUsernameLen:
		errs.Add("username", "Username must be at least 3 characters long.")
	case len([]rune(f.Username)) > maxUsernameLen:
		errs.Add("username", "Username is too long.")
	case !usernameRe.MatchString(f.Username):
		errs.Add("username", "Username can only contain letters, numbers, and underscores.")
	}

	if f.Email == "" {
		errs.Add("email", "Email is required.")
	} else if _, err := mail.ParseAddress(f.Email); err != nil {
		errs.Add("email", "Enter a valid email address.")
	}

	f.validatePassword(errs)

	if f.Confirm != f.Password {
		errs.Add("confirm", "The two password fields do not match.")
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (f *RegisterForm) validatePassword(errs Errors) {
	if f.Password == "" {
		errs.Add("password", "Password is required.")
		return
	}
	if len([]rune(f.Password)) < minPasswordLen {
		errs.Add("password", "Password must be at least 8 characters long.")
	}
	if allDigits(f.Password) {
		errs.Add("password", "Password cannot be entirely numeric.")
	}
	if isCommonPassword(f.Password) {
		errs.Add("password", "Password is too common.")
	}
	if tooSimilar(f.Password, f.Username) || tooSimilar(f.Password, f.Email) || tooSimilar(f.Password, emailLocalPart(f.Email)) {
		errs.Add("password", "Password is too similar to your username or email.")
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func emailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return ""
}

func tooSimilar(password, attr string) bool {
	if attr == "" {
		return false
	}
	return similarity(strings.ToLower(password), strings.ToLower(attr)) >= similarityThreshold
}

// similarity is 2*LCS/(len(a)+len(b)), a symmetric ratio in [0,1]. Identical
// strings score 1, disjoint strings 0.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		cur[0] = 0
		for j := 1; j <= len(rb); j++ {
			switch {
			case ra[i-1] == rb[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}
