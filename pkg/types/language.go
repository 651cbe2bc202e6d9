package types

import "strings"

// Language identifies the source language of an indexed chunk
type Language string

const (
	LanguageGo         Language = "go"
	LanguageRust       Language = "rust"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageJava       Language = "java"
	LanguageC          Language = "c"
	LanguageCpp        Language = "cpp"
	LanguageShell      Language = "shell"
	LanguageMarkdown   Language = "markdown"
	LanguageYAML       Language = "yaml"
	LanguageJSON       Language = "json"
	LanguagePlainText  Language = "plaintext"
)

// languageNames maps lowercase names and aliases onto the enum
var languageNames = map[string]Language{
	"go":         LanguageGo,
	"golang":     LanguageGo,
	"rust":       LanguageRust,
	"rs":         LanguageRust,
	"python":     LanguagePython,
	"py":         LanguagePython,
	"javascript": LanguageJavaScript,
	"js":         LanguageJavaScript,
	"typescript": LanguageTypeScript,
	"ts":         LanguageTypeScript,
	"java":       LanguageJava,
	"c":          LanguageC,
	"cpp":        LanguageCpp,
	"c++":        LanguageCpp,
	"shell":      LanguageShell,
	"bash":       LanguageShell,
	"sh":         LanguageShell,
	"markdown":   LanguageMarkdown,
	"md":         LanguageMarkdown,
	"yaml":       LanguageYAML,
	"yml":        LanguageYAML,
	"json":       LanguageJSON,
	"plaintext":  LanguagePlainText,
	"text":       LanguagePlainText,
}

// ParseLanguage resolves a language name. Unknown names map to LanguagePlainText.
func ParseLanguage(name string) Language {
	if lang, ok := LookupLanguage(name); ok {
		return lang
	}
	return LanguagePlainText
}

// LookupLanguage resolves a language name or alias, reporting whether it is known
func LookupLanguage(name string) (Language, bool) {
	lang, ok := languageNames[strings.ToLower(strings.TrimSpace(name))]
	return lang, ok
}

// String returns the canonical language name
func (l Language) String() string {
	return string(l)
}

// extensionLanguages maps file extensions onto languages
var extensionLanguages = map[string]Language{
	".go":   LanguageGo,
	".rs":   LanguageRust,
	".py":   LanguagePython,
	".js":   LanguageJavaScript,
	".jsx":  LanguageJavaScript,
	".mjs":  LanguageJavaScript,
	".ts":   LanguageTypeScript,
	".tsx":  LanguageTypeScript,
	".java": LanguageJava,
	".c":    LanguageC,
	".h":    LanguageC,
	".cc":   LanguageCpp,
	".cpp":  LanguageCpp,
	".hpp":  LanguageCpp,
	".sh":   LanguageShell,
	".bash": LanguageShell,
	".md":   LanguageMarkdown,
	".yaml": LanguageYAML,
	".yml":  LanguageYAML,
	".json": LanguageJSON,
	".txt":  LanguagePlainText,
}

// LanguageForPath detects the language from a file extension. ok is false
// for extensions that are not indexed.
func LanguageForPath(path string) (lang Language, ok bool) {
	dot := strings.LastIndexByte(path, '.')
	if dot < 0 {
		return LanguagePlainText, false
	}
	lang, ok = extensionLanguages[strings.ToLower(path[dot:])]
	if !ok {
		return LanguagePlainText, false
	}
	return lang, true
}
