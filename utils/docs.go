package utils

import (
	"strings"
	"sync"
)

var (
	docsMu sync.RWMutex
	docs   = make(map[string]string)
)

// RegisterDoc records the doc comment of fn. Generated cogdoc_gen.go files
// call it from init with method expressions such as (*General).Ping.
func RegisterDoc(fn interface{}, doc string) {
	key := QualifiedName(fn)
	if key == "" {
		return
	}
	docsMu.Lock()
	defer docsMu.Unlock()
	docs[key] = CleanDoc(doc)
}

// Doc returns the registered doc comment of fn, or "".
func Doc(fn interface{}) string {
	key := QualifiedName(fn)
	if key == "" {
		return ""
	}
	docsMu.RLock()
	defer docsMu.RUnlock()
	return docs[key]
}

// CleanDoc trims surrounding blank lines and the indentation shared by all
// non-blank lines.
func CleanDoc(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\t", "    "), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " "))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, l := range lines {
		if len(l) >= indent {
			lines[i] = strings.TrimRight(l[indent:], " ")
		} else {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}
