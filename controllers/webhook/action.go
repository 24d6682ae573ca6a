package webhook

// Action is a known user_action.id. Anything else parses to ActionUnknown.
type Action int

const (
	ActionUnknown Action = iota
	ActionHelp
	ActionCreate
	ActionNewTask
	ActionExistingTask
	ActionOAuthButton
	ActionCreateButton
)

var actionIDs = map[Action]string{
	ActionHelp:         "asana_help",
	ActionCreate:       "asana_create",
	ActionNewTask:      "new_task",
	ActionExistingTask: "existing_task",
	ActionOAuthButton:  "asana_oauth_button",
	ActionCreateButton: "asana_create_button",
}

// ParseAction maps a user_action.id to an Action by exact match.
func ParseAction(id string) Action {
	for action, actionID := range actionIDs {
		if actionID == id {
			return action
		}
	}
	return ActionUnknown
}

// String returns the action id Swit sends.
func (a Action) String() string {
	if id, ok := actionIDs[a]; ok {
		return id
	}
	return "unknown"
}
