package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"unicode"
)

// avatarColors are the DiceBear background colors used for admin avatars.
var avatarColors = []string{
	"FF6B6B", "4ECDC4", "45B7D1", "96CEB4", "FFEAA7",
	"DDA0DD", "98D8C8", "F7DC6F", "BB8FCE", "85C1E9",
}

// AdminAvatarURL returns a DiceBear initials avatar for an admin account.
func AdminAvatarURL(name string) string {
	color := avatarColors[0]
	if idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(avatarColors)))); err == nil {
		color = avatarColors[idx.Int64()]
	}
	return fmt.Sprintf("https://api.dicebear.com/7.x/initials/svg?seed=%s&backgroundColor=%s",
		url.QueryEscape(Initials(name)), color)
}

// Initials returns up to two upper-case initials for name: the first letter
// of the first and second words, or the first letter twice for a single word.
func Initials(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '.' || r == '_' || r == '-'
	})
	if len(words) == 0 {
		return "A"
	}

	first := []rune(words[0])[0]
	second := first
	if len(words) > 1 {
		second = []rune(words[1])[0]
	}
	return strings.ToUpper(string([]rune{first, second}))
}
