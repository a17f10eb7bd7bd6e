package roster

import (
	"fmt"
	"strings"
)

// unsafeKeyChars are characters the document store does not accept in
// document keys.
const unsafeKeyChars = "./[]#$"

// ResolveID derives the stable player identifier from the immutable personal
// fields. The same logical person always resolves to the same ID across
// re-imports, regardless of row order, letter case, or surrounding
// whitespace.
//
// Two distinct players sharing normalized first name, last name, and date of
// birth collide by design; their notes end up on one record. Documented
// limitation, not silently papered over.
func ResolveID(firstName, lastName, dob string) string {
	first := strings.ToLower(strings.TrimSpace(firstName))
	last := strings.ToLower(strings.TrimSpace(lastName))
	birth := strings.TrimSpace(dob)

	id := first + "-" + last + "-" + birth

	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeKeyChars, r) {
			return '_'
		}
		return r
	}, id)
}

// LegacyID is the position-based fallback identifier, valid only within one
// import batch. It exists so note documents written before the stable scheme
// can still be found.
func LegacyID(index int) string {
	return fmt.Sprintf("player-%d", index)
}
