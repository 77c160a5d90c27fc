package validation

import "regexp"

// roomCodePattern accepts exactly four alphanumeric characters. It is
// deliberately wider than the generation alphabet so that codes typed in
// lower case, or with ambiguous characters, still reach the lookup.
var roomCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{4}$`)

// ValidRoomCode reports whether a client-supplied room code is well-formed
func ValidRoomCode(code string) bool {
	return roomCodePattern.MatchString(code)
}
