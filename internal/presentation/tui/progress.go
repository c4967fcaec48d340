package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/muesli/termenv"
)

const barWidth = 20

// ProgressLine renders "[#####.....] 2/5 (40%)" using profile for colour.
func ProgressLine(profile termenv.Profile, p domain.Progress) string {
	filled := 0
	if p.Total > 0 {
		filled = barWidth * p.Answered / p.Total
	}
	bar := termenv.String(strings.Repeat("#", filled)).Foreground(profile.Color("#34d399")).String() +
		strings.Repeat(".", barWidth-filled)
	return fmt.Sprintf("[%s] %d/%d (%d%%)", bar, p.Answered, p.Total, p.Percentage)
}
