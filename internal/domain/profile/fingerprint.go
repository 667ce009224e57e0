package profile

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// Fingerprint is a stable hash over every field that influences calorie
// math, restrictions or preferences. DisplayName is excluded.
func (p Profile) Fingerprint() string {
	var b strings.Builder
	b.WriteString("v1")
	writeField(&b, "age", strconv.Itoa(p.Age))
	writeField(&b, "height", strconv.FormatFloat(p.Height, 'f', -1, 64))
	writeField(&b, "weight", strconv.FormatFloat(p.Weight, 'f', -1, 64))
	writeField(&b, "gender", string(p.Gender))
	writeField(&b, "activity", string(p.ActivityLevel))
	writeField(&b, "goal", string(p.Goal))
	writeField(&b, "restrictions", strings.Join(canonicalTags(p.Restrictions), ","))
	writeField(&b, "preferences", strings.Join(canonicalTags(p.Preferences), ","))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}

func writeField(b *strings.Builder, key, value string) {
	b.WriteByte('|')
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
}

// canonicalTags lowercases, trims, dedupes and sorts tags so that
// ordering and casing do not change the fingerprint.
func canonicalTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
