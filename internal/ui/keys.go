package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

// snapKey maps "1".."9" to a snap index.
func snapKey(msg tea.KeyMsg) (int, bool) {
	s := msg.String()
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '1'), true
}

func helpText(points int, reduced bool) string {
	s := "drag to move  h/l flick"
	if points > 0 {
		s += "  1-" + string(rune('0'+min(points, 9))) + " snap"
	}
	if reduced {
		s += "  m motion on"
	} else {
		s += "  m reduce motion"
	}
	s += "  q quit"
	return s
}
