package helper

import "strings"

// SplitRight splits string s on the last occurrence of c.
// If c is not found then s is returned as the right side with an empty left side.
func SplitRight(s string, c string) (string, string) {
	idx := strings.LastIndex(s, c)
	if idx < 0 { // if the separator was not found...
		return "", s
	}
	return s[:idx], s[idx+len(c):]
}

// Split splits string s on the first occurrence of c.
// If c is not found then s is returned as the left side with an empty right side.
func Split(s string, c string) (string, string) {
	idx := strings.Index(s, c)
	if idx < 0 { // if the separator was not found...
		return s, ""
	}
	return s[:idx], s[idx+len(c):]
}

// GetTrueFalseStringAsBool is lenient about what constitutes true.
func GetTrueFalseStringAsBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true
	default:
		return false
	}
}

// BaseNameNoExt returns the file name component of an object key without its extension.
// "incoming/facilities-2024.json" -> "facilities-2024".
func BaseNameNoExt(key string) string {
	_, name := SplitRight(key, "/")
	if left, _ := SplitRight(name, "."); left != "" { // if the name has an extension...
		return left
	}
	return name
}
