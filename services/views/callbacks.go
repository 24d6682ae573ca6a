// Package views builds the Swit callback and message payloads returned by the bridge.
package views

// Callback types understood by the Swit client.
const (
	CallbackViewsOpen          = "views.open"
	CallbackViewsClose         = "views.close"
	CallbackShareNewTask       = "attachments.share.new_task"
	CallbackShareExistingTask  = "attachments.share.existing_task"
	AssigneeUnassigned         = "unassigned"
	headerButtonImage          = "./assets/builder_logo.png"
	integratedServiceIconImage = "https://files.swit.io/data/assets/apps/23092108333670VJ6MRS/23103004371942AFKL5P.jpg"
)

// Form element action ids of the create-task view.
const (
	FieldTaskName    = "asana_task_name"
	FieldDescription = "task_description"
	FieldAssignee    = "asana_assignee_select"
	FieldProject     = "asana_project_select"
	FieldDueDate     = "asana_due_date"
	ButtonCreate     = "asana_create_button"
	ButtonOAuth      = "asana_oauth_button"
)

// PopupCloseHTML closes the OAuth popup window.
const PopupCloseHTML = `<html>
    <body>
        <script>
            window.close();
        </script>
    </body>
</html>`

// Element is a single Swit UI element. Their layout is owned by Swit, so they
// stay loosely typed.
type Element map[string]any

// Header is the view header.
type Header struct {
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle,omitempty"`
	Buttons  []Element `json:"buttons,omitempty"`
}

// Body holds view elements.
type Body struct {
	Elements []Element `json:"elements"`
}

// View is a modal or right-panel view.
type View struct {
	ViewID string `json:"view_id"`
	State  string `json:"state,omitempty"`
	Header Header `json:"header"`
	Body   Body   `json:"body"`
}

// Attachment is shared into a Swit task.
type Attachment struct {
	State  string           `json:"state,omitempty"`
	Header AttachmentHeader `json:"header"`
	Body   Body             `json:"body"`
}

// AttachmentHeader identifies the app sharing an attachment.
type AttachmentHeader struct {
	AppID string `json:"app_id"`
	Title string `json:"title"`
}

// DestinationHint tells Swit where an attachment should land.
type DestinationHint struct {
	WorkspaceID string `json:"workspace_id,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
	TaskID      string `json:"task_id,omitempty"`
}

// Callback is the JSON answer to a webhook.
type Callback struct {
	CallbackType    string           `json:"callback_type"`
	NewView         *View            `json:"new_view,omitempty"`
	Attachments     []Attachment     `json:"attachments,omitempty"`
	DestinationHint *DestinationHint `json:"destination_hint,omitempty"`
}

// Option is a select option.
type Option struct {
	Label    string `json:"label"`
	ActionID string `json:"action_id"`
}

// Close closes the active view.
func Close() Callback {
	return Callback{CallbackType: CallbackViewsClose}
}

func headerButtons() []Element {
	return []Element{{
		"type": "button",
		"icon": Element{"type": "image", "image_url": headerButtonImage, "alt": "Header button icon"},
		"static_action": Element{
			"action_type": "open_link",
			"link_url":    "https://swit.io",
		},
	}}
}

// OAuthPrompt asks the user to sign in. The view state remembers the action
// and channel so the sign-in button can resume it.
func OAuthPrompt(oauthURL, action, channelID string) Callback {
	return Callback{
		CallbackType: CallbackViewsOpen,
		NewView: &View{
			ViewID: "asana_oauth_view",
			State:  action + ":" + channelID,
			Header: Header{Title: "Connect to Asana", Buttons: headerButtons()},
			Body: Body{Elements: []Element{{
				"type":        "sign_in_page",
				"title":       "Try Asana for Swit",
				"description": "Sign in to start using Asana in Swit.",
				"button": Element{
					"type":      "button",
					"label":     "Sign in",
					"action_id": ButtonOAuth,
					"static_action": Element{
						"action_type": "open_oauth_popup",
						"link_url":    oauthURL,
					},
				},
				"integrated_service": Element{
					"icon": Element{"type": "image", "image_url": integratedServiceIconImage},
				},
			}}},
		},
	}
}

// TaskForm holds the data the create-task view is filled with.
type TaskForm struct {
	Description string // pre-filled from a message context menu
	Projects    []Option
	Assignees   []Option
}

func text(content string) Element {
	return Element{"type": "text", "markdown": true, "content": content}
}

// CreateTaskForm opens the create-task view. Every input carries an action_id
// so the submit handler can read values by name.
func CreateTaskForm(channelID string, form TaskForm) Callback {
	assignees := append([]Option{{Label: "Unassigned", ActionID: AssigneeUnassigned}}, form.Assignees...)
	projects := form.Projects
	if projects == nil {
		projects = []Option{}
	}

	var description any
	if form.Description != "" {
		description = form.Description
	}

	return Callback{
		CallbackType: CallbackViewsOpen,
		NewView: &View{
			ViewID: "asana_create_view",
			State:  channelID,
			Header: Header{Title: "Create a new task", Subtitle: "in Asana", Buttons: headerButtons()},
			Body: Body{Elements: []Element{
				text("**Task name**"),
				{"type": "text_input", "action_id": FieldTaskName, "placeholder": "Write a task name", "trigger_on_input": false},
				text("**Task description**"),
				{"type": "textarea", "action_id": FieldDescription, "placeholder": "Write a task description", "value": description, "height": "small", "disabled": false},
				text("**Assignee**"),
				{"type": "select", "action_id": FieldAssignee, "options": assignees, "placeholder": "Select an assignee", "multiselect": false, "trigger_on_input": false, "style": Element{"variant": "outlined"}},
				text("**Project**"),
				{"type": "select", "action_id": FieldProject, "options": projects, "placeholder": "Select a project", "multiselect": false, "trigger_on_input": false, "style": Element{"variant": "outlined"}},
				text("**Due date**"),
				{"type": "datepicker", "action_id": FieldDueDate, "placeholder": "YYYY-MM-DD"},
				{"type": "button", "label": "Create", "action_id": ButtonCreate, "style": "primary_filled"},
			}},
		},
	}
}

// ActionFailed reports a failed remote call to the user.
func ActionFailed(message string) Callback {
	return Callback{
		CallbackType: CallbackViewsOpen,
		NewView: &View{
			ViewID: "asana_error_view",
			Header: Header{Title: "Something went wrong"},
			Body:   Body{Elements: []Element{text(message)}},
		},
	}
}

func infoCard(label, content string) Element {
	return Element{
		"type":      "info_card",
		"action_id": "asana_info_card",
		"items": []Element{{
			"label": label,
			"text":  Element{"type": "text", "markdown": true, "content": content},
		}},
	}
}

func share(callbackType, appID, title string, card Element, hint *DestinationHint) Callback {
	return Callback{
		CallbackType: callbackType,
		Attachments: []Attachment{{
			Header: AttachmentHeader{AppID: appID, Title: title},
			Body:   Body{Elements: []Element{card}},
		}},
		DestinationHint: hint,
	}
}

// ShareNewTask attaches an Asana card to a new Swit task.
func ShareNewTask(appID string, hint *DestinationHint) Callback {
	return share(CallbackShareNewTask, appID, "Create a new Swit task with an Asana attachment.",
		infoCard("New task", "**Attach to a new task**"), hint)
}

// ShareExistingTask attaches an Asana card to an existing Swit task.
func ShareExistingTask(appID string, hint *DestinationHint) Callback {
	return share(CallbackShareExistingTask, appID, "Add an Asana attachment to an existing Swit task.",
		infoCard("Existing task", "Attach to an existing task"), hint)
}
