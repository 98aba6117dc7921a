package teams

import (
	"strings"

	"github.com/google/uuid"
)

// InviteCodeLength is the number of characters in an invite code.
const InviteCodeLength = 8

// GenerateInviteCode takes the leading characters of a random v4 uuid and
// uppercases them. Uniqueness is enforced by the caller and the
// ux_teams_invite_code index.
func GenerateInviteCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:InviteCodeLength])
}

// NormalizeInviteCode trims and uppercases user input.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidInviteCode reports whether code has the generated shape.
func ValidInviteCode(code string) bool {
	if len(code) != InviteCodeLength {
		return false
	}
	for _, r := range code {
		if (r < '0' || r > '9') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
