package webhook

import (
	"context"
	"errors"
	"fmt"
	"log"

	"asana-swit-backend/services/asana"
	"asana-swit-backend/services/tokenstore"
	"asana-swit-backend/services/views"
)

// help posts the command list to the channel and closes the view.
func (d *Dispatcher) help(ctx context.Context, req *request) (views.Callback, error) {
	if err := d.sendHelp(ctx, req.swit, req.userID, req.language, req.channelID); err != nil {
		return views.Callback{}, err
	}
	return views.Close(), nil
}

func (d *Dispatcher) sendHelp(ctx context.Context, s *tokenSession, userID, language, channelID string) error {
	content, err := views.HelpMessage(language, userID).JSON()
	if err != nil {
		return err
	}
	return do(ctx, s, func(ctx context.Context, token string) error {
		return d.Swit.SendMessage(ctx, token, channelID, content)
	})
}

// openCreateForm loads projects and workspace members and opens the create-task view.
func (d *Dispatcher) openCreateForm(ctx context.Context, req *request) (views.Callback, error) {
	projects, err := call(ctx, req.asana, d.Asana.ListProjects)
	if err != nil {
		return views.Callback{}, fmt.Errorf("list projects: %w", err)
	}
	memberships, err := call(ctx, req.asana, d.Asana.ListWorkspaceMemberships)
	if err != nil {
		return views.Callback{}, fmt.Errorf("list workspace memberships: %w", err)
	}

	var members []asana.WorkspaceMembership
	if len(memberships) > 0 {
		workspaceGID := memberships[0].Workspace.GID
		members, err = call(ctx, req.asana, func(ctx context.Context, token string) ([]asana.WorkspaceMembership, error) {
			return d.Asana.ListWorkspaceMembers(ctx, token, workspaceGID)
		})
		if err != nil {
			return views.Callback{}, fmt.Errorf("list workspace members: %w", err)
		}
	}

	form := views.TaskForm{Description: req.env.PrefilledMessage()}
	for _, p := range projects {
		form.Projects = append(form.Projects, views.Option{Label: p.Name, ActionID: p.GID})
	}
	for _, m := range members {
		form.Assignees = append(form.Assignees, views.Option{Label: m.User.Name, ActionID: m.User.GID})
	}
	return views.CreateTaskForm(req.channelID, form), nil
}

// resumeFromView runs the action remembered by the sign-in view.
func (d *Dispatcher) resumeFromView(ctx context.Context, pending Action, req *request) (views.Callback, error) {
	switch pending {
	case ActionHelp:
		return d.help(ctx, req)
	case ActionCreate:
		return d.openCreateForm(ctx, req)
	default:
		return views.Close(), nil
	}
}

// submitTask creates the Asana task from the submitted view and reports the
// outcome in the channel.
func (d *Dispatcher) submitTask(ctx context.Context, req *request) (views.Callback, error) {
	tf := req.env.TaskForm()
	if tf.Name == "" {
		return views.ActionFailed("Task name is required."), nil
	}

	task, err := call(ctx, req.asana, func(ctx context.Context, token string) (*asana.Task, error) {
		return d.Asana.CreateTask(ctx, token, asana.TaskInput{
			Name:        tf.Name,
			Notes:       tf.Description,
			ProjectGID:  tf.ProjectGID,
			AssigneeGID: tf.AssigneeGID,
			DueOn:       tf.DueDate,
		})
	})

	var message views.RichText
	switch {
	case err == nil:
		message = views.TaskCreated(req.userID, summarize(task, tf))
	case errors.Is(err, ErrReauthorize), errors.Is(err, tokenstore.ErrUnavailable):
		return views.Callback{}, err
	default:
		log.Printf("Asana не создала задачу %q для пользователя %s: %v", tf.Name, req.userID, err)
		message = views.TaskFailed(tf.Name)
	}

	content, err := message.JSON()
	if err != nil {
		return views.Callback{}, err
	}
	if err := do(ctx, req.swit, func(ctx context.Context, token string) error {
		return d.Swit.SendMessage(ctx, token, req.channelID, content)
	}); err != nil {
		if task == nil {
			return views.Callback{}, err
		}
		// Задача уже создана: повторный вход снова открыл бы форму и дал бы дубликат.
		log.Printf("Задача %s создана, но сообщение в канал %s не отправлено: %v", task.GID, req.channelID, err)
		return views.Close(), nil
	}
	return views.Close(), nil
}

func summarize(task *asana.Task, tf TaskForm) views.TaskSummary {
	s := views.TaskSummary{
		Name:        task.Name,
		Description: task.Notes,
		DueDate:     task.DueOn,
		URL:         task.PermalinkURL,
	}
	if s.Name == "" {
		s.Name = tf.Name
	}
	if task.Assignee != nil {
		s.AssigneeName = task.Assignee.Name
	}
	projectGID := tf.ProjectGID
	if len(task.Projects) > 0 {
		s.ProjectName = task.Projects[0].Name
		projectGID = task.Projects[0].GID
	}
	if s.URL == "" {
		s.URL = asana.TaskURL(projectGID, task.GID)
	}
	return s
}
