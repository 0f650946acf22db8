package sqlplus

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ParameterTimeLayout renders time.Time parameters.
const ParameterTimeLayout = "2006-01-02 15:04:05"

// Interpolate substitutes parameters into query. params is nil, a slice
// consumed by %s placeholders in order, or a map[string]any looked up by
// %(name)s placeholders. %% yields a literal percent sign.
func Interpolate(query string, params any) (string, error) {
	if params == nil {
		return query, nil
	}

	var (
		positional []any
		named      map[string]any
	)
	switch p := params.(type) {
	case map[string]any:
		named = p
	case []any:
		positional = p
	default:
		v := reflect.ValueOf(params)
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return "", fmt.Errorf("parameters must be a slice or a map[string]any, got %T", params)
		}
		positional = make([]any, v.Len())
		for i := range positional {
			positional[i] = v.Index(i).Interface()
		}
	}

	var sb strings.Builder
	next := 0
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c != '%' || i+1 >= len(query) {
			sb.WriteByte(c)
			continue
		}

		switch query[i+1] {
		case '%':
			sb.WriteByte('%')
			i++
		case 's':
			if named != nil {
				return "", fmt.Errorf("positional placeholder at offset %d used with named parameters", i)
			}
			if next >= len(positional) {
				return "", fmt.Errorf("not enough parameters: placeholder %d has no value", next+1)
			}
			formatted, err := FormatParameter(positional[next])
			if err != nil {
				return "", err
			}
			sb.WriteString(formatted)
			next++
			i++
		case '(':
			end := strings.Index(query[i:], ")s")
			if end < 0 {
				return "", fmt.Errorf("unterminated named placeholder at offset %d", i)
			}
			name := query[i+2 : i+end]
			if named == nil {
				return "", fmt.Errorf("named placeholder %q used with positional parameters", name)
			}
			value, ok := named[name]
			if !ok {
				return "", fmt.Errorf("missing parameter %q", name)
			}
			formatted, err := FormatParameter(value)
			if err != nil {
				return "", err
			}
			sb.WriteString(formatted)
			i += end + 1
		default:
			sb.WriteByte(c)
		}
	}

	if named == nil && next < len(positional) {
		return "", fmt.Errorf("too many parameters: %d given, %d used", len(positional), next)
	}
	return sb.String(), nil
}

// FormatParameter renders a Go value as an Oracle SQL literal.
func FormatParameter(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "NULL", nil
	case string:
		return "'" + EscapeString(v) + "'", nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.Itoa(v), nil
	case int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(v).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(v).Uint(), 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case time.Time:
		return "'" + v.Format(ParameterTimeLayout) + "'", nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			formatted, err := FormatParameter(rv.Index(i).Interface())
			if err != nil {
				return "", err
			}
			parts[i] = formatted
		}
		return "(" + strings.Join(parts, ", ") + ")", nil
	}
	return "", fmt.Errorf("type '%T' is not managed as a query parameter", value)
}

// EscapeString doubles single quotes for use inside an SQL string literal.
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
