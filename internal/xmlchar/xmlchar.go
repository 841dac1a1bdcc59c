// Package xmlchar classifies codepoints against the XML 1.0 Name and Char
// productions.
//
// https://www.w3.org/TR/xml/#charsets
package xmlchar

// Edition selects the variant of the Char production in use. Edition 5 is the
// permissive set from the fifth edition of XML 1.0; Edition 4 additionally
// rejects the non-character block U+FDD0–U+FDEF. The two are identical for
// ASCII input.
type Edition int

const (
	Edition5 Edition = 5
	Edition4 Edition = 4
)

// IsNameStartByte reports whether b can begin a Name, considering only the
// ASCII range. Callers use it as a fast path before decoding a full rune.
func IsNameStartByte(b byte) bool {
	return 'A' <= b && b <= 'Z' || 'a' <= b && b <= 'z' || b == '_' || b == ':'
}

// IsNameByte reports whether b can continue a Name, considering only the
// ASCII range.
func IsNameByte(b byte) bool {
	return IsNameStartByte(b) ||
		'0' <= b && b <= '9' || b == '-' || b == '.'
}

// IsNameStart reports whether r matches NameStartChar. The colon is accepted
// here because the tokenizer reads qualified names; NCName validation (no
// colon) is the namespace layer's concern.
func IsNameStart(r rune) bool {
	switch {
	case 'A' <= r && r <= 'Z' || 'a' <= r && r <= 'z':
		return true
	case r == '_' || r == ':':
		return true
	case 0xC0 <= r && r <= 0xD6:
		return true
	case 0xD8 <= r && r <= 0xF6:
		return true
	case 0xF8 <= r && r <= 0x2FF:
		return true
	case 0x370 <= r && r <= 0x37D:
		return true
	case 0x37F <= r && r <= 0x1FFF:
		return true
	case 0x200C <= r && r <= 0x200D:
		return true
	case 0x2070 <= r && r <= 0x218F:
		return true
	case 0x2C00 <= r && r <= 0x2FEF:
		return true
	case 0x3001 <= r && r <= 0xD7FF:
		return true
	case 0xF900 <= r && r <= 0xFDCF:
		return true
	case 0xFDF0 <= r && r <= 0xFFFD:
		return true
	case 0x10000 <= r && r <= 0xEFFFF:
		return true
	}
	return false
}

// IsNameChar reports whether r matches NameChar.
func IsNameChar(r rune) bool {
	if IsNameStart(r) {
		return true
	}
	switch {
	case r == '-' || r == '.':
		return true
	case '0' <= r && r <= '9':
		return true
	case r == 0xB7:
		return true
	case 0x300 <= r && r <= 0x36F:
		return true
	case 0x203F <= r && r <= 0x2040:
		return true
	}
	return false
}

// IsChar reports whether r is allowed anywhere in an XML document under the
// given edition of the Char production.
func IsChar(r rune, e Edition) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case 0x20 <= r && r <= 0xD7FF:
		return true
	case 0xE000 <= r && r <= 0xFFFD:
		if e == Edition4 && 0xFDD0 <= r && r <= 0xFDEF {
			return false
		}
		return true
	case 0x10000 <= r && r <= 0x10FFFF:
		return true
	}
	return false
}

// IsSpace reports whether b matches the S production.
func IsSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
