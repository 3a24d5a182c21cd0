package holidays

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

var isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// dateKeys are checked in order on record objects before falling back to a
// scan of the remaining string values.
var dateKeys = []string{"date", "Date", "fecha"}

// ExtractDates pulls YYYY-MM-DD candidates out of an upstream payload of
// unknown shape: an array of strings, an array of records, or an object
// whose values hold such arrays or bare date strings. Each candidate is the
// first ten characters of the matched value. Object keys are visited in
// sorted order so the result is deterministic.
func ExtractDates(raw []byte) ([]string, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode holiday payload: %w", err)
	}

	var c collector
	switch node := doc.(type) {
	case []any:
		for _, item := range node {
			switch v := item.(type) {
			case string:
				c.add(v)
			case map[string]any:
				c.addRecord(v)
			}
		}
	case map[string]any:
		for _, key := range sortedKeys(node) {
			switch v := node[key].(type) {
			case []any:
				for _, item := range v {
					switch it := item.(type) {
					case string:
						if isoDatePattern.MatchString(it) {
							c.add(it)
						}
					case map[string]any:
						c.addRecord(it)
					}
				}
			case string:
				if isoDatePattern.MatchString(v) {
					c.add(v)
				}
			}
		}
	}
	return c.out, nil
}

type collector struct {
	seen map[string]struct{}
	out  []string
}

func (c *collector) add(s string) {
	if len(s) > 10 {
		s = s[:10]
	}
	if c.seen == nil {
		c.seen = map[string]struct{}{}
	}
	if _, ok := c.seen[s]; ok {
		return
	}
	c.seen[s] = struct{}{}
	c.out = append(c.out, s)
}

func (c *collector) addRecord(rec map[string]any) {
	for _, key := range dateKeys {
		if v, ok := rec[key]; ok && v != nil {
			c.add(scalarString(v))
			return
		}
	}
	for _, key := range sortedKeys(rec) {
		if s, ok := rec[key].(string); ok && isoDatePattern.MatchString(s) {
			c.add(s)
			return
		}
	}
}

// scalarString renders JSON numbers without exponent notation.
func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
