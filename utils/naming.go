package utils

import (
	"reflect"
	"runtime"
	"strings"
	"unicode"
)

// QualifiedName returns the runtime name of fn with the method value suffix
// stripped, e.g. "github.com/x/cogs/general.(*General).Ping". Method values
// and method expressions of the same method share one name.
func QualifiedName(fn interface{}) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	return strings.TrimSuffix(f.Name(), "-fm")
}

// FuncName returns the bare name of fn: "Ping" for the method value g.Ping.
func FuncName(fn interface{}) string {
	name := QualifiedName(fn)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// CommandName converts a Go identifier to the snake_case form Discord
// accepts: "GroupSay" -> "group_say", "HTTPStatus" -> "http_status".
func CommandName(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if !unicode.IsUpper(r) {
			b.WriteRune(r)
			continue
		}
		if i > 0 && runes[i-1] != '_' {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
