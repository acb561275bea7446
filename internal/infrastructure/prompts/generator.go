package prompts

import (
	"bytes"
	"strings"
	"text/template"
)

var languageNames = map[string]string{
	"es": "Spanish",
	"zh": "Mandarin",
	"en": "English",
}

type SystemPromptData struct {
	Language string
	Concise  bool
}

// LanguageName maps a language code from the client to the name used in
// the prompt. "auto" and "" mean no preference; unknown codes pass through.
func LanguageName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, "auto") {
		return ""
	}
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

func GenerateSystemPrompt(baseTemplate, lang string, concise bool) (string, error) {
	tmpl, err := template.New("system").Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, SystemPromptData{Language: LanguageName(lang), Concise: concise}); err != nil {
		return "", err
	}

	return strings.TrimSpace(buf.String()), nil
}
