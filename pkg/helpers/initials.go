package helpers

import "strings"

// DeriveInitials produces the 1-2 letter display abbreviation stored on a
// user at registration. Two or more name parts yield the first rune of each
// of the first two parts; a single part yields its first two runes (or one,
// for a single-rune name). Empty or all-whitespace input yields "".
func DeriveInitials(fullName string) string {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return ""
	}
	if len(parts) >= 2 {
		a := []rune(parts[0])
		b := []rune(parts[1])
		return strings.ToUpper(string(a[0]) + string(b[0]))
	}
	r := []rune(parts[0])
	if len(r) == 1 {
		return strings.ToUpper(string(r[0]))
	}
	return strings.ToUpper(string(r[0]) + string(r[1]))
}
