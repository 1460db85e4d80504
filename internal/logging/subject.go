package logging

import "strings"

// FormatSubject builds the "stage · record" subject used in console output.
func FormatSubject(stage, rel string) string {
	stage = strings.TrimSpace(stage)
	rel = strings.TrimSpace(rel)
	switch {
	case stage != "" && rel != "":
		return stage + " · " + rel
	case stage != "":
		return stage
	default:
		return rel
	}
}
