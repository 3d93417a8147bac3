package judge_service

import (
	"fmt"
	"strings"

	"github.com/tcp_snm/arena/internal/arena_errors"
)

var languageIDs = map[string]int{
	"javascript": 63,
	"python":     71,
	"java":       62,
	"c":          50,
	"cpp":        54,
}

// LanguageID resolves a language name to the judge's language id.
func LanguageID(language string) (int, error) {
	id, ok := languageIDs[strings.ToLower(strings.TrimSpace(language))]
	if !ok {
		return 0, fmt.Errorf("%w, %q is not supported", arena_errors.ErrUnsupportedLanguage, language)
	}
	return id, nil
}

func SupportedLanguages() []string {
	return []string{"javascript", "python", "java", "c", "cpp"}
}
