package identity

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

const avatarBase = "https://www.gravatar.com/avatar"

// FallbackAvatarURL derives a deterministic avatar URL from an email
// address. The same email always maps to the same URL, so two screens
// rendering the same account agree without coordination.
func FallbackAvatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("%s/%s?d=identicon", avatarBase, hex.EncodeToString(sum[:]))
}
