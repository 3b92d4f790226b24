package placeholder

import "regexp"

var tokenPattern = regexp.MustCompile(`{{\s*([^}\s]+)\s*}}`)

// Fill replaces every {{ name }} token in source with the matching scope
// value. Tokens whose name is not bound are emitted unchanged, inner
// whitespace included. Substituted values are not scanned again.
func Fill(source string, scope Scope) string {
	if len(source) == 0 || scope.Len() == 0 {
		return source
	}
	return tokenPattern.ReplaceAllStringFunc(source, func(token string) string {
		match := tokenPattern.FindStringSubmatch(token)
		if len(match) < 2 {
			return token
		}
		value, ok := scope.Lookup(match[1])
		if !ok {
			return token
		}
		return Stringify(value)
	})
}

// Names lists the placeholder names referenced by source in order of
// appearance, duplicates included.
func Names(source string) []string {
	matches := tokenPattern.FindAllStringSubmatch(source, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, match[1])
	}
	return names
}
