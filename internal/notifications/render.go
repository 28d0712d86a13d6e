package notifications

import (
	"regexp"
	"sort"

	"leadflow-workers/internal/common/errors"
)

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

// Render substitutes {token} placeholders. Any token without a value is a
// configuration error; nothing is left as literal text.
func Render(name, tmpl string, values map[string]string) (string, error) {
	missing := map[string]struct{}{}
	out := placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := match[1 : len(match)-1]
		if v, ok := values[key]; ok {
			return v
		}
		missing[key] = struct{}{}
		return match
	})
	if len(missing) > 0 {
		tokens := make([]string, 0, len(missing))
		for k := range missing {
			tokens = append(tokens, k)
		}
		sort.Strings(tokens)
		return "", errors.NewTemplatePlaceholderError(name, tokens)
	}
	return out, nil
}
