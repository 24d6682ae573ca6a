package views

import (
	"encoding/json"
	"fmt"
)

const supportURL = "https://help.swit.io/?support=true"

// RichText is a Swit rich_text message body.
type RichText struct {
	Type     string    `json:"type"`
	Elements []Element `json:"elements"`
}

func richText(elements ...Element) RichText {
	return RichText{Type: "rich_text", Elements: elements}
}

// JSON encodes the message into the json_string form message.create expects.
func (m RichText) JSON() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode rich text: %w", err)
	}
	return string(b), nil
}

func rtText(content string) Element { return Element{"type": "rt_text", "content": content} }

func rtStyled(content string, styles Element) Element {
	return Element{"type": "rt_text", "content": content, "styles": styles}
}

func rtCode(content string) Element { return rtStyled(content, Element{"code": true}) }

func rtBold(content string) Element { return rtStyled(content, Element{"bold": true}) }

func rtMention(userID string) Element { return Element{"type": "rt_mention", "user_id": userID} }

func rtLink(content, url string) Element {
	return Element{"type": "rt_link", "content": content, "url": url}
}

func section(elements ...Element) Element {
	return Element{"type": "rt_section", "elements": elements}
}

func blockquote(elements ...Element) Element {
	return Element{"type": "rt_blockquote", "elements": elements}
}

// HelpMessage lists the available commands. Korean is used for "ko", English otherwise.
func HelpMessage(language, userID string) RichText {
	if language == "ko" {
		return richText(
			section(rtMention(userID), rtText(" 안녕하세요. Swit에서 Asana앱을 사용하여 업무를 관리해 보세요.\n"), rtBold("사용 가능한 커맨드")),
			blockquote(
				rtCode("/asana_create"), rtText(" 새 업무 생성.\n"),
				rtCode("/asana_link"), rtText(" 아사나 링크.\n"),
				rtCode("/asana_settings"), rtText(" 설정 보기.\n"),
				rtCode("/asana_help"), rtText(" 도움말."),
			),
			section(rtBold("문의")),
			blockquote(rtLink("문의 링크", supportURL)),
		)
	}
	return richText(
		section(rtText("Hello "), rtMention(userID), rtText(", here are some ways you can use Asana for Swit to manage your work.\n"), rtBold("Available commands")),
		blockquote(
			rtText("Use "), rtCode("/asana_create"), rtText(" to create a new task. You can add text after the command to pre-fill the task name.\nUse "),
			rtCode("/asana_link"), rtText(" in a channel to manage the channel’s linked project notifications or to link a new project.\nUse "),
			rtCode("/asana_settings"), rtText(" to manage your personal notifications settings and default Asana domain.\nUse "),
			rtCode("/asana_help"), rtText(" to see this message again."),
		),
		section(rtBold("Support")),
		blockquote(rtLink("Contact us", supportURL), rtText(".")),
	)
}

// TaskSummary describes a created task for TaskCreated.
type TaskSummary struct {
	URL          string
	Name         string
	ProjectName  string
	Description  string
	AssigneeName string
	DueDate      string
}

// TaskCreated announces a new Asana task in the channel.
func TaskCreated(userID string, t TaskSummary) RichText {
	assignee := "\nAssignee: No assignee"
	if t.AssigneeName != "" {
		assignee = "\nAssignee: " + t.AssigneeName
	}
	due := "\nDue date: No due date"
	if t.DueDate != "" {
		due = "\nDue date: " + t.DueDate
	}
	return richText(
		section(rtMention(userID), rtText(" You have successfully created a task in Asana!"), Element{"type": "rt_emoji", "name": ":clap:"}),
		blockquote(
			rtLink("View Task", t.URL),
			rtText(fmt.Sprintf("\nTask name: %s \nProject: %s \nTask description: %s", t.Name, t.ProjectName, t.Description)),
			rtText(assignee),
			rtText(due),
		),
	)
}

// TaskFailed reports that Asana refused to create the task.
func TaskFailed(taskName string) RichText {
	return richText(section(rtText("Failed to create task: "), rtText(" "+taskName)))
}
