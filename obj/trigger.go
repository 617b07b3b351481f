package obj

import "sort"

// TriggerCode identifies a control input, usually a key name such as "W".
type TriggerCode string

// PowerSource is the reserved code cockpits use to ask for power.
const PowerSource TriggerCode = "POWER_SOURCE"

// Trigger binds a code to an action. Value latches the last propagated
// control state and is read once per tick.
type Trigger struct {
	Code   TriggerCode
	Action string
	Value  bool
}

func newTriggers(bindings map[TriggerCode]string) []*Trigger {
	codes := make([]string, 0, len(bindings))
	for code := range bindings {
		codes = append(codes, string(code))
	}
	sort.Strings(codes)
	out := make([]*Trigger, 0, len(codes))
	for _, code := range codes {
		out = append(out, &Trigger{Code: TriggerCode(code), Action: bindings[TriggerCode(code)]})
	}
	return out
}
