// Package intent maps free-form verbal commands ("hand off to reviewer",
// "pause workflow") to structured handoff and flow-control intents.
package intent

import (
	"regexp"
	"strings"
)

// Kind distinguishes the two intent families.
type Kind string

const (
	KindHandoff Kind = "handoff"
	KindFlow    Kind = "flow"
)

// Actions produced by the handoff table.
const (
	ActionHandoff  = "handoff"
	ActionSwitch   = "switch"
	ActionDelegate = "delegate"
	ActionUse      = "use"
	ActionTransfer = "transfer"
	ActionContinue = "continue"
)

// Actions produced by the flow-control table.
const (
	ActionPause   = "pause"
	ActionResume  = "resume"
	ActionCancel  = "cancel"
	ActionRestart = "restart"
	ActionSkip    = "skip"
	ActionGoBack  = "goback"
	ActionRetry   = "retry"
)

// Intent is the structured reading of a verbal command.
type Intent struct {
	Type     Kind   `json:"type"`
	Action   string `json:"action"`
	Target   string `json:"target,omitempty"`
	Original string `json:"original"`
}

type rule struct {
	re     *regexp.Regexp
	action string
}

// The tables are ordered: matching is a substring search evaluated top to
// bottom and the first hit wins, so precedence is positional. Handoff rules
// are always tried before flow rules.
var handoffRules = []rule{
	{regexp.MustCompile(`hand\s*off\s+to\s+(\S+)`), ActionHandoff},
	{regexp.MustCompile(`switch\s+to\s+(\S+)`), ActionSwitch},
	{regexp.MustCompile(`delegate\s+to\s+(\S+)`), ActionDelegate},
	{regexp.MustCompile(`use\s+(\S+)\s+agent`), ActionUse},
	{regexp.MustCompile(`let\s+(\S+)\s+handle`), ActionDelegate},
	{regexp.MustCompile(`pass\s+to\s+(\S+)`), ActionHandoff},
	{regexp.MustCompile(`transfer\s+to\s+(\S+)`), ActionTransfer},
	{regexp.MustCompile(`continue\s+with\s+(\S+)`), ActionContinue},
}

var flowRules = []rule{
	{regexp.MustCompile(`pause\s+workflow`), ActionPause},
	{regexp.MustCompile(`resume\s+workflow`), ActionResume},
	{regexp.MustCompile(`cancel\s+workflow`), ActionCancel},
	{regexp.MustCompile(`restart\s+workflow`), ActionRestart},
	{regexp.MustCompile(`skip\s+to\s+(\S+)`), ActionSkip},
	{regexp.MustCompile(`go\s+back\s+to\s+(\S+)`), ActionGoBack},
	{regexp.MustCompile(`retry\s+(?:last\s+)?step`), ActionRetry},
}

// Parse maps text to an intent. Input is lowercased and trimmed before
// matching. Returns nil when no pattern matches; that is not an error.
func Parse(text string) *Intent {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return nil
	}

	for _, r := range handoffRules {
		if m := r.re.FindStringSubmatch(lower); m != nil {
			return &Intent{
				Type:     KindHandoff,
				Action:   r.action,
				Target:   m[1],
				Original: text,
			}
		}
	}

	for _, r := range flowRules {
		if m := r.re.FindStringSubmatch(lower); m != nil {
			in := &Intent{
				Type:     KindFlow,
				Action:   r.action,
				Original: text,
			}
			if len(m) > 1 {
				in.Target = m[1]
			}
			return in
		}
	}

	return nil
}
