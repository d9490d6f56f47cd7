package runner

import (
	"bytes"
	"fmt"
)

// minRedactLength skips very short values whose bytes would match too much
// unrelated output.
const minRedactLength = 4

type replacement struct {
	secret      []byte
	placeholder []byte
}

// Redactor replaces injected secret values in captured output with a
// placeholder naming the environment variable they were bound to.
type Redactor struct {
	replacements []replacement
}

func newRedactor(resolved []resolvedBinding) *Redactor {
	var replacements []replacement
	for _, r := range resolved {
		if len(r.value) < minRedactLength {
			continue
		}
		replacements = append(replacements, replacement{
			secret:      []byte(r.value),
			placeholder: fmt.Appendf(nil, "[REDACTED:%s]", r.EnvVar),
		})
	}
	return &Redactor{replacements: replacements}
}

func (r *Redactor) Redact(data []byte) []byte {
	if len(r.replacements) == 0 {
		return data
	}
	result := data
	for _, rep := range r.replacements {
		result = bytes.ReplaceAll(result, rep.secret, rep.placeholder)
	}
	return result
}
