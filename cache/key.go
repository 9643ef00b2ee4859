package cache

import (
	"crypto/md5" //nolint:gosec // cache key fingerprint, not a security boundary
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SchemaVersion is folded into named cache keys. Bump it whenever the shape
// of what gets cached changes, to invalidate stale entries globally.
const SchemaVersion = 2

// CreateKey builds the deterministic cache key for one invocation.
//
// Two requests with identical (operation, prompt, parameters, history) after
// normalization always produce the same key. The optional name tag keeps
// distinctly-named calls that share an operation from colliding, and carries
// the schema version so a version bump invalidates every named entry.
func CreateKey(operation, prompt string, parameters map[string]any, history any, name string) string {
	fingerprint := parameterFingerprint(parameters)

	var digest string
	if historyJSON, ok := marshalHistory(history); ok {
		historyDigest := hash(historyJSON)
		digest = hash(prompt + fingerprint + historyDigest)
	} else {
		digest = hash(prompt + fingerprint)
	}

	if name != "" {
		return fmt.Sprintf("%s-%s-v%d-%s", name, operation, SchemaVersion, digest)
	}
	return fmt.Sprintf("%s-%s", operation, digest)
}

// parameterFingerprint serializes parameters as a sorted list of (key, value)
// pairs. Normalization: a request that sets max_tokens without n gets an
// explicit nil n, so equivalent parameter sets hash identically.
func parameterFingerprint(parameters map[string]any) string {
	normalized := make(map[string]any, len(parameters)+1)
	for k, v := range parameters {
		normalized[k] = v
	}
	if _, hasMax := normalized["max_tokens"]; hasMax {
		if _, hasN := normalized["n"]; !hasN {
			normalized["n"] = nil
		}
	}

	keys := make([]string, 0, len(normalized))
	for k := range normalized {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("(%s, %v)", k, normalized[k]))
	}
	return "[" + strings.Join(pairs, ", ") + "]"
}

// marshalHistory returns the JSON form of history and whether it is non-empty.
func marshalHistory(history any) (string, bool) {
	if history == nil {
		return "", false
	}
	data, err := json.Marshal(history)
	if err != nil {
		// Unserializable history still has to influence the key.
		return fmt.Sprintf("%v", history), true
	}
	s := string(data)
	if s == "null" || s == "[]" || s == `""` {
		return "", false
	}
	return s, true
}

func hash(s string) string {
	sum := md5.Sum([]byte(s)) //nolint:gosec // fast and stable matters, not strength
	return hex.EncodeToString(sum[:])
}
