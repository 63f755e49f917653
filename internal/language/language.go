package language

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Normalize converts a recognizer language code or BCP 47 tag to its base
// language (usually ISO 639-1, e.g. "en-US" -> "en", "eng" -> "en"). Input
// that does not parse is returned lowercased and trimmed.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return code
	}
	return base.String()
}

// DisplayName returns the English name for code, "Unknown" for empty input,
// or the uppercased code when it is not a known language.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return strings.ToUpper(trimmed)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return strings.ToUpper(trimmed)
	}
	return name
}

// Describe renders a code with its detection probability, e.g.
// "English (en, 98%)". A non-positive probability is omitted.
func Describe(code string, probability float64) string {
	code = Normalize(code)
	name := DisplayName(code)
	if code == "" {
		return name
	}
	if probability <= 0 {
		return name + " (" + code + ")"
	}
	return name + " (" + code + ", " + formatPercent(probability) + ")"
}

func formatPercent(p float64) string {
	if p > 1 {
		p = 1
	}
	return strconv.Itoa(int(p*100+0.5)) + "%"
}
