package str

import "strings"

// FirstWords keeps at most n first words of a string. Words are separated
// by one or more whitespace characters and are joined back with a single
// space.
func FirstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// JoinNonEmpty joins strings with a separator, skipping empty ones.
func JoinNonEmpty(sep string, ss ...string) string {
	res := make([]string, 0, len(ss))
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			res = append(res, s)
		}
	}
	return strings.Join(res, sep)
}

// SplitList splits a comma-separated list, trims the elements and drops
// empty ones.
func SplitList(s string) []string {
	var res []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			res = append(res, v)
		}
	}
	return res
}
