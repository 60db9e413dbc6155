package cypher

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Props is a property bag attached to a node or relationship pattern. Keys
// render in lexicographic order so the same bag always produces the same
// literal text.
type Props map[string]any

type quoteStyle byte

const (
	singleQuote quoteStyle = '\''
	doubleQuote quoteStyle = '"'
)

// Serialize converts a native Go value into Cypher literal text. Strings are
// single-quoted, except the raw words null/true/false (any casing) which pass
// through unquoted. Unsupported types yield a *SerializationError.
func Serialize(value any) (string, error) {
	return serialize(value, singleQuote)
}

func serialize(value any, quote quoteStyle) (string, error) {
	switch v := value.(type) {
	case nil:
		return "null", nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case string:
		return serializeString(v, quote), nil
	case time.Time:
		return serializeDateTime(v), nil
	case dbtype.Date:
		return fmt.Sprintf("date('%s')", time.Time(v).Format("2006-01-02")), nil
	case dbtype.LocalTime:
		return fmt.Sprintf("localTime('%s')", time.Time(v).Format("15:04:05")), nil
	case dbtype.Time:
		return fmt.Sprintf("time('%s')", time.Time(v).Format("15:04:05Z07:00")), nil
	case dbtype.LocalDateTime:
		return fmt.Sprintf("localDateTime('%s')", time.Time(v).Format("2006-01-02T15:04:05")), nil
	case dbtype.Duration:
		return fmt.Sprintf("duration('%s')", isoDuration(v)), nil
	case time.Duration:
		return fmt.Sprintf("duration('%s')", isoDuration(dbtype.Duration{
			Seconds: int64(v / time.Second),
			Nanos:   int(v % time.Second),
		})), nil
	case Props:
		return serializeMap(map[string]any(v), quote)
	case map[string]any:
		return serializeMap(v, quote)
	case []any:
		return serializeList(v, quote)
	}

	// Typed slices and maps arrive here ([]string, []int, map[string]int...).
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return serializeList(items, quote)
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			m := make(map[string]any, rv.Len())
			for _, k := range rv.MapKeys() {
				m[k.String()] = rv.MapIndex(k).Interface()
			}
			return serializeMap(m, quote)
		}
	}

	return "", &SerializationError{Value: value}
}

// serializeString quotes a string literal, except the bare words null, true
// and false which are emitted verbatim so callers can splice raw Cypher
// keywords into property positions.
func serializeString(s string, quote quoteStyle) string {
	switch strings.ToLower(s) {
	case "null", "true", "false":
		return s
	}
	q := string(quote)
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, q, `\`+q)
	return q + escaped + q
}

func serializeList(items []any, quote quoteStyle) (string, error) {
	parts := make([]string, len(items))
	for i, item := range items {
		s, err := serialize(item, quote)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

func serializeMap(m map[string]any, quote quoteStyle) (string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		s, err := serialize(m[k], quote)
		if err != nil {
			return "", err
		}
		parts[i] = k + ": " + s
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

// serializeDateTime renders a zoned timestamp through the datetime()
// constructor. Named zones carry a bracketed zone identifier, fixed offsets
// and UTC just the offset.
func serializeDateTime(t time.Time) string {
	text := t.Format("2006-01-02T15:04:05Z07:00")
	if name := t.Location().String(); strings.Contains(name, "/") {
		text += "[" + name + "]"
	}
	return fmt.Sprintf("datetime('%s')", text)
}

// isoDuration renders a driver duration in ISO-8601 form, e.g. P1DT5H16M12S.
func isoDuration(d dbtype.Duration) string {
	var b strings.Builder
	b.WriteByte('P')
	if d.Months != 0 {
		fmt.Fprintf(&b, "%dM", d.Months)
	}
	if d.Days != 0 {
		fmt.Fprintf(&b, "%dD", d.Days)
	}

	secs := d.Seconds
	hours := secs / 3600
	secs -= hours * 3600
	mins := secs / 60
	secs -= mins * 60

	if hours != 0 || mins != 0 || secs != 0 || d.Nanos != 0 || b.Len() == 1 {
		b.WriteByte('T')
		if hours != 0 {
			fmt.Fprintf(&b, "%dH", hours)
		}
		if mins != 0 {
			fmt.Fprintf(&b, "%dM", mins)
		}
		if d.Nanos != 0 {
			b.WriteString(strconv.FormatFloat(float64(secs)+float64(d.Nanos)/1e9, 'f', -1, 64))
			b.WriteByte('S')
			return b.String()
		}
		fmt.Fprintf(&b, "%dS", secs)
	}
	return b.String()
}

// SerializeProperties renders a property bag as a Cypher map fragment
// ({k: v, ...}) or the empty string when the bag is empty.
func SerializeProperties(props Props) (string, error) {
	return serializeProperties(props, singleQuote)
}

func serializeProperties(props Props, quote quoteStyle) (string, error) {
	if len(props) == 0 {
		return "", nil
	}
	return serializeMap(map[string]any(props), quote)
}

// SerializeLabels renders a label set as a Cypher label expression, e.g.
// [Town Settlement] -> ":Town:Settlement". Empty input renders nothing.
func SerializeLabels(labels []string) string {
	nonEmpty := labels[:0:0]
	for _, l := range labels {
		if l != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}
	if len(nonEmpty) == 0 {
		return ""
	}
	return ":" + strings.Join(nonEmpty, ":")
}

// serializeProcedureArgs renders positional CALL arguments. String arguments
// are double-quoted, everything else renders as a bare literal. The quoting
// here deliberately differs from Serialize for compatibility with query
// module conventions.
func serializeProcedureArgs(args []any) (string, error) {
	parts := make([]string, len(args))
	for i, arg := range args {
		if s, ok := arg.(string); ok {
			parts[i] = `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
			continue
		}
		rendered, err := serialize(arg, doubleQuote)
		if err != nil {
			return "", err
		}
		parts[i] = rendered
	}
	return strings.Join(parts, ", "), nil
}
