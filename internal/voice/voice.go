// Package voice parses spoken or typed commands into lab actions.
package voice

import (
	"errors"
	"fmt"
	"strings"
)

// Action is what a command asks the lab to do.
type Action int

const (
	ActionNone Action = iota
	ActionSelect
	ActionPour
	ActionStop
	ActionReset
	ActionBack
	ActionSettings
	ActionContrast
	ActionMotion
	ActionDescribe
	ActionEnter
	ActionQuit
)

var actionNames = map[Action]string{
	ActionNone:     "none",
	ActionSelect:   "select",
	ActionPour:     "pour",
	ActionStop:     "stop",
	ActionReset:    "reset",
	ActionBack:     "back",
	ActionSettings: "settings",
	ActionContrast: "contrast",
	ActionMotion:   "motion",
	ActionDescribe: "describe",
	ActionEnter:    "enter",
	ActionQuit:     "quit",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Command is a parsed utterance. Target holds the chemical for select and
// pour; On holds the switch position for contrast and motion.
type Command struct {
	Action Action
	Target string
	On     bool
}

var (
	ErrEmpty   = errors.New("empty command")
	ErrUnknown = errors.New("unknown command")
)

// fillers are dropped so "please pour the HCl" parses like "pour HCl".
var fillers = map[string]bool{
	"please": true,
	"the":    true,
	"a":      true,
	"some":   true,
	"into":   true,
	"beaker": true,
	"in":     true,
}

var verbs = map[string]Action{
	"select":   ActionSelect,
	"choose":   ActionSelect,
	"pick":     ActionSelect,
	"add":      ActionSelect,
	"pour":     ActionPour,
	"drop":     ActionPour,
	"dip":      ActionPour,
	"stop":     ActionStop,
	"release":  ActionStop,
	"reset":    ActionReset,
	"clear":    ActionReset,
	"back":     ActionBack,
	"settings": ActionSettings,
	"options":  ActionSettings,
	"contrast": ActionContrast,
	"motion":   ActionMotion,
	"describe": ActionDescribe,
	"explain":  ActionDescribe,
	"enter":    ActionEnter,
	"start":    ActionEnter,
	"quit":     ActionQuit,
	"exit":     ActionQuit,
}

// Parse turns free text into a Command. Chemical names keep their case so
// they can be matched against registry ids.
func Parse(text string) (Command, error) {
	var words []string
	for _, w := range strings.Fields(strings.Trim(text, " .!?")) {
		if !fillers[strings.ToLower(w)] {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return Command{}, ErrEmpty
	}

	verb := strings.ToLower(words[0])
	args := words[1:]
	if verb == "go" && len(args) > 0 && strings.EqualFold(args[0], "back") {
		verb, args = "back", args[1:]
	}

	action, ok := verbs[verb]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknown, text)
	}

	cmd := Command{Action: action}
	switch action {
	case ActionSelect, ActionPour:
		if len(args) == 0 {
			return Command{}, fmt.Errorf("%s needs a chemical", action)
		}
		cmd.Target = strings.Join(args, " ")
	case ActionContrast, ActionMotion:
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%s needs on or off", action)
		}
		switch strings.ToLower(args[0]) {
		case "on":
			cmd.On = true
		case "off":
		default:
			return Command{}, fmt.Errorf("%s needs on or off, got %q", action, args[0])
		}
	}
	return cmd, nil
}

// Match finds the candidate a spoken target refers to, comparing ids and
// display names case-insensitively.
func Match(target string, candidates map[string]string) (string, bool) {
	for id, name := range candidates {
		if strings.EqualFold(target, id) || strings.EqualFold(target, name) {
			return id, true
		}
	}
	return "", false
}
