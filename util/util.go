package util

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsUnderScore(b byte) bool {
	return b == '_'
}

// MiniJava identifiers may also contain '$', like Java.
func IsDollar(b byte) bool {
	return b == '$'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func IsIdentifierStart(b byte) bool {
	return IsLetter(b) || IsUnderScore(b) || IsDollar(b)
}

func IsIdentifierPart(b byte) bool {
	return IsIdentifierStart(b) || IsNumber(b)
}

// IsIdentifier reports whether name is a well formed MiniJava identifier.
// Keywords are not rejected here.
func IsIdentifier(name string) bool {
	if len(name) == 0 || !IsIdentifierStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !IsIdentifierPart(name[i]) {
			return false
		}
	}
	return true
}
