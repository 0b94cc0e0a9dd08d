package render

import "time"

// templates index into fixed-size lists (attendees, commitments), so a
// short list breaks rendering. NormalizeList pads with empty maps up to
// minLen; existing entries are kept as-is.
func NormalizeList(items []map[string]any, minLen int) []map[string]any {
	out := make([]map[string]any, 0, max(len(items), minLen))
	out = append(out, items...)
	for len(out) < minLen {
		out = append(out, map[string]any{})
	}
	return out
}

// FormatDate renders a timestamp the way the document templates expect.
// Zero times become an empty string rather than the zero-value date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// WithDefaults returns a copy of data where every key in defaults that
// is absent or nil in data takes the default value. Nested maps are not
// merged; a present key wins wholesale.
func WithDefaults(data, defaults map[string]any) map[string]any {
	out := make(map[string]any, len(data)+len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range data {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}
