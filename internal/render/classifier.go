package render

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	animationNumberRE   = regexp.MustCompile(`Animation (\d+)`)
	animationProgressRE = regexp.MustCompile(`Animation (\d+):.*?(\d+)%\|`)
)

// Classify maps one raw line of renderer output to a human-readable
// progress message. Most lines are noise; the second return value
// reports whether the line produced a message. Rules are evaluated in
// priority order and the first match wins.
func Classify(line string) (string, bool) {
	switch {
	case strings.Contains(line, "Animation") && strings.Contains(line, "Partial"):
		if m := animationNumberRE.FindStringSubmatch(line); m != nil {
			return fmt.Sprintf("Animation %s loaded", m[1]), true
		}
		return "", false

	case animationProgressRE.MatchString(line):
		m := animationProgressRE.FindStringSubmatch(line)
		return fmt.Sprintf("Animation %s progress: %s%%", m[1], m[2]), true

	case strings.Contains(line, "File ready at"):
		return "Final video ready!", true

	case strings.Contains(line, "Rendered ArchitectureDiagram"):
		return "Rendering complete!", true

	case strings.Contains(line, "Played"):
		return strings.TrimSpace(line), true

	case strings.Contains(line, "ERROR") || strings.Contains(line, "Exception"):
		return "Error occurred", true
	}

	return "", false
}
