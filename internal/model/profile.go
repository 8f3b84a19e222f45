package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultAdminRole is the role shown until the admin edits their profile.
const DefaultAdminRole = "Administrator"

// AdminProfile is cosmetic display metadata for the signed-in admin.
// It has no bearing on authorization.
type AdminProfile struct {
	DisplayName  string `json:"displayName"`
	Role         string `json:"role"`
	Bio          string `json:"bio,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"` // inline data: URL
}

// DefaultAdminProfile derives the profile shown before anything was saved.
func DefaultAdminProfile(email string) AdminProfile {
	return AdminProfile{
		DisplayName: DisplayNameFromEmail(email),
		Role:        DefaultAdminRole,
	}
}

// DisplayNameFromEmail capitalizes the first letter of the email local-part.
// Returns "Admin" when email is empty.
func DisplayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "Admin"
	}
	r, size := utf8.DecodeRuneInString(local)
	return string(unicode.ToUpper(r)) + local[size:]
}

// Initials returns up to two upper-case initials of the display name.
func (p AdminProfile) Initials() string {
	words := strings.Fields(p.DisplayName)
	var b strings.Builder
	for i := 0; i < len(words) && i < 2; i++ {
		r, _ := utf8.DecodeRuneInString(words[i])
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
