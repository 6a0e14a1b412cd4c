package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/intellitip/internal/core/domain"
)

var identifier = regexp.MustCompile(`^[a-zA-Z_$][a-zA-Z0-9_$]*$`)

// Stringifier pretty-prints decoded values so detail blocks read like type declarations.
type Stringifier struct {
	// Indent is the number of spaces per nesting level.
	Indent int
	// Unquoted lists keys whose string values are printed bare.
	Unquoted []string
}

// DefaultStringifier indents by two spaces and prints "type" values bare.
var DefaultStringifier = Stringifier{Indent: 2, Unquoted: []string{domain.KeyType}}

// Stringify formats v with DefaultStringifier.
func Stringify(v any) string {
	return DefaultStringifier.Format(v)
}

// Format formats a value at the top level.
func (s Stringifier) Format(v any) string {
	return s.value(v, "", 0)
}

// FormatField formats the value stored under key, honoring the unquoted allow-list.
func (s Stringifier) FormatField(key string, v any) string {
	return s.value(v, key, 0)
}

func (s Stringifier) value(v any, key string, level int) string {
	switch x := v.(type) {
	case string:
		if key != "" && slices.Contains(s.Unquoted, key) {
			return x
		}
		return quote(x)
	case *domain.Object:
		if x.Len() == 0 {
			return "{}"
		}
		entries := make([]string, 0, x.Len())
		for k, child := range x.All() {
			name := k
			if !identifier.MatchString(k) {
				name = quote(k)
			}
			entries = append(entries, s.pad(level+1)+name+": "+s.value(child, k, level+1))
		}
		return "{\n" + strings.Join(entries, ",\n") + "\n" + s.pad(level) + "}"
	case []any:
		if len(x) == 0 {
			return "[]"
		}
		items := make([]string, 0, len(x))
		for _, item := range x {
			items = append(items, s.pad(level+1)+s.value(item, "", level+1))
		}
		return "[\n" + strings.Join(items, ",\n") + "\n" + s.pad(level) + "]"
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatNumber(x)
	case domain.Function:
		return x.Source()
	default:
		return fmt.Sprint(x)
	}
}

func (s Stringifier) pad(level int) string {
	return strings.Repeat(" ", s.Indent*level)
}

func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.Abs(f) >= 1e21:
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}
