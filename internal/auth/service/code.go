package service

// CodeLength is the only accepted one-time code length.
const CodeLength = 6

// NormalizeCode strips everything but ASCII digits and truncates to six,
// mirroring what the code input accepts as the operator types.
func NormalizeCode(raw string) string {
	out := make([]byte, 0, CodeLength)
	for i := 0; i < len(raw) && len(out) < CodeLength; i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			out = append(out, c)
		}
	}
	return string(out)
}

// ValidCode reports whether code is exactly six ASCII digits.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
