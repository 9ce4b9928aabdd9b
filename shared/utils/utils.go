package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PasswordRuleMessage is returned whenever a password fails ValidPassword.
const PasswordRuleMessage = "password must contain at least 8 characters, 1 lowercase letter, 1 uppercase letter, 1 special character and 1 number"

// GenerateID generates a unique ID with the given prefix
func GenerateID(prefix string) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 12

	result := make([]byte, length)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[num.Int64()]
	}

	return fmt.Sprintf("%s-%s", prefix, string(result))
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword checks if a password matches a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidPassword requires at least 8 characters with one upper case letter,
// one lower case letter, one digit and one character that is neither a word
// character nor whitespace.
func ValidPassword(password string) bool {
	if len([]rune(password)) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case r == '_' || unicode.IsSpace(r):
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			special = true
		}
	}
	return upper && lower && digit && special
}

// HashToken returns the hex sha256 of a token. Only hashes are stored so a
// leaked table cannot be replayed.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NewToken returns a random token to hand to the user and the hash to store.
func NewToken() (raw, hashed string, err error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}
	raw = hex.EncodeToString(buf)
	return raw, HashToken(raw), nil
}

// GeneratePassword returns a random password that satisfies ValidPassword,
// for accounts created on a user's behalf.
func GeneratePassword() (string, error) {
	raw, _, err := NewToken()
	if err != nil {
		return "", err
	}
	return "Xp" + raw[:10] + "#7", nil
}

// GenerateCode returns a random numeric code of n digits.
func GenerateCode(n int) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

// DialPrefix strips the leading "+" from a dialling code. Codes written with
// a dash, such as "+1-876", lose their first three characters instead.
func DialPrefix(phoneCode string) string {
	if strings.Contains(phoneCode, "-") {
		if len(phoneCode) <= 3 {
			return ""
		}
		return phoneCode[3:]
	}
	return strings.TrimPrefix(phoneCode, "+")
}

// FormatPhoneNumber builds the stored phone number from a dialling code and
// a local number: "+234" and "08031234567" give "2348031234567".
func FormatPhoneNumber(phoneCode, number string) string {
	if len(number) > 0 {
		number = number[1:]
	}
	return DialPrefix(phoneCode) + number
}

// Slugify lower-cases s and joins its words with dashes.
func Slugify(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, "-")
}

// Initials returns the upper-cased first letter of each word in s.
func Initials(s string) string {
	var b strings.Builder
	for _, w := range strings.Fields(s) {
		r := []rune(w)
		b.WriteRune(unicode.ToUpper(r[0]))
	}
	return b.String()
}
