package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSnowflake accepts a raw Discord ID or a user, role or channel mention
// and returns the bare ID.
func ParseSnowflake(input string) (string, error) {
	id := strings.TrimSpace(input)

	if strings.HasPrefix(id, "<") && strings.HasSuffix(id, ">") {
		id = strings.TrimSuffix(strings.TrimPrefix(id, "<"), ">")
		switch {
		case strings.HasPrefix(id, "@&"):
			id = id[2:]
		case strings.HasPrefix(id, "@!"):
			id = id[2:]
		case strings.HasPrefix(id, "@"), strings.HasPrefix(id, "#"):
			id = id[1:]
		default:
			return "", fmt.Errorf("invalid mention format")
		}
	}

	// Validate that the ID is a valid Snowflake
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", fmt.Errorf("invalid snowflake %q", input)
	}
	return id, nil
}

// ContainsString reports whether list holds s.
func ContainsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
