package webhook

import (
	"encoding/json"
	"strings"

	"asana-swit-backend/services/views"
)

// messageContextMenu is the user_action.type of a message context-menu command.
const messageContextMenu = "user_commands.context_menus:message"

// Envelope is the webhook body Swit posts on every user action.
type Envelope struct {
	UserAction      UserAction      `json:"user_action"`
	Context         ActionContext   `json:"context"`
	UserPreferences UserPreferences `json:"user_preferences"`
	UserInfo        UserInfo        `json:"user_info"`
	CurrentView     *CurrentView    `json:"current_view,omitempty"`
}

// UserAction describes what the user did.
type UserAction struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Resource *Resource `json:"resource,omitempty"`
}

// Resource is the object a context-menu command was invoked on.
type Resource struct {
	Content string `json:"content"`
}

// ActionContext locates the action inside Swit.
type ActionContext struct {
	ChannelID   string `json:"channel_id"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
	TaskID      string `json:"task_id,omitempty"`
}

// UserPreferences carries the user's UI language.
type UserPreferences struct {
	Language string `json:"language"`
}

// UserInfo identifies the acting user.
type UserInfo struct {
	UserID string `json:"user_id"`
}

// CurrentView is the view the action was triggered from.
type CurrentView struct {
	ViewID string   `json:"view_id"`
	State  string   `json:"state"`
	Body   ViewBody `json:"body"`
}

// ViewBody holds the submitted elements.
type ViewBody struct {
	Elements []FormElement `json:"elements"`
}

// FormElement is one element of a submitted view; only its id and value matter.
type FormElement struct {
	ActionID string          `json:"action_id"`
	Value    json.RawMessage `json:"value,omitempty"`
}

// Form indexes submitted values by element action_id.
type Form map[string]json.RawMessage

// Form returns the view's element values keyed by action_id.
func (v *CurrentView) Form() Form {
	form := Form{}
	if v == nil {
		return form
	}
	for _, el := range v.Body.Elements {
		if el.ActionID != "" && len(el.Value) > 0 {
			form[el.ActionID] = el.Value
		}
	}
	return form
}

// Value returns a string value, or the first entry of a list value (selects).
func (f Form) Value(actionID string) string {
	raw, ok := f[actionID]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	return ""
}

// PrefilledMessage returns the message text for context-menu invocations.
func (e *Envelope) PrefilledMessage() string {
	if e.UserAction.Type != messageContextMenu || e.UserAction.Resource == nil {
		return ""
	}
	return e.UserAction.Resource.Content
}

// ViewState returns current_view.state, or "" outside a view.
func (e *Envelope) ViewState() string {
	if e.CurrentView == nil {
		return ""
	}
	return e.CurrentView.State
}

// DestinationHint returns the Swit location for shared attachments.
func (e *Envelope) DestinationHint() *views.DestinationHint {
	c := e.Context
	if c.WorkspaceID == "" && c.ProjectID == "" && c.TaskID == "" {
		return nil
	}
	return &views.DestinationHint{WorkspaceID: c.WorkspaceID, ProjectID: c.ProjectID, TaskID: c.TaskID}
}

// TaskForm is the create-task view read by field name.
type TaskForm struct {
	Name        string
	Description string
	AssigneeGID string
	ProjectGID  string
	DueDate     string
}

// TaskForm reads the submitted create-task view.
func (e *Envelope) TaskForm() TaskForm {
	form := e.CurrentView.Form()
	tf := TaskForm{
		Name:        form.Value(views.FieldTaskName),
		Description: form.Value(views.FieldDescription),
		AssigneeGID: form.Value(views.FieldAssignee),
		ProjectGID:  form.Value(views.FieldProject),
		DueDate:     form.Value(views.FieldDueDate),
	}
	if tf.AssigneeGID == views.AssigneeUnassigned {
		tf.AssigneeGID = ""
	}
	return tf
}

// splitViewState parses the "action:channel" state of the sign-in view.
func splitViewState(state string) (action, channelID string, ok bool) {
	action, channelID, ok = strings.Cut(state, ":")
	if !ok || action == "" {
		return "", "", false
	}
	return action, channelID, true
}
