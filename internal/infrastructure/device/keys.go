package device

import "strings"

var keyAliases = map[string]string{
	"return":    "enter",
	"kp_enter":  "enter",
	"escape":    "esc",
	"backspace": "backspace",
	"page_down": "pagedown",
	"page_up":   "pageup",
	"control":   "ctrl",
	"super":     "cmd",
	"meta":      "cmd",
}

// splitKeyCombo turns "ctrl+shift+Tab" into ("tab", ["ctrl", "shift"]).
func splitKeyCombo(combo string) (string, []string) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(combo)), "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if alias, ok := keyAliases[p]; ok {
			p = alias
		}
		parts[i] = p
	}
	return parts[len(parts)-1], parts[:len(parts)-1]
}
