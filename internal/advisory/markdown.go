package advisory

import (
	"regexp"
	"strings"
)

// Generated text sometimes arrives with markdown despite the prompt asking
// for plain text. Strip the common constructs before handing it to clients.
var (
	reHeading  = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s*`)
	reBold     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	reItalic   = regexp.MustCompile(`_(.*?)_`)
	reCode     = regexp.MustCompile("`{1,3}([^`]*)`{1,3}")
	reBullet   = regexp.MustCompile(`(?m)^\s*[-*•]\s*`)
	reNumbered = regexp.MustCompile(`(?m)^\s*\d+\.\s*`)
	reBlank    = regexp.MustCompile(`\n{3,}`)
)

// CleanMarkdown removes markdown formatting from generated text.
func CleanMarkdown(md string) string {
	md = reHeading.ReplaceAllString(md, "")
	md = reBold.ReplaceAllString(md, "$1")
	md = reItalic.ReplaceAllString(md, "$1")
	md = reCode.ReplaceAllString(md, "$1")
	md = reBullet.ReplaceAllString(md, "")
	md = reNumbered.ReplaceAllString(md, "")
	md = reBlank.ReplaceAllString(md, "\n\n")
	return strings.TrimSpace(md)
}

// languageNames maps supported language codes to display names used in
// fallback content. English is the default for unknown codes.
var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"kn": "Kannada",
	"te": "Telugu",
	"ta": "Tamil",
}

// NormalizeLanguage returns lang if supported, otherwise "en".
func NormalizeLanguage(lang string) string {
	if _, ok := languageNames[lang]; ok {
		return lang
	}
	return "en"
}
