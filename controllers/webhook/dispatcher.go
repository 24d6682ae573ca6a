// Package webhook handles the signed user-action callbacks Swit posts to the app.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"asana-swit-backend/config"
	"asana-swit-backend/controllers/httpResponse"
	"asana-swit-backend/models"
	"asana-swit-backend/services/asana"
	"asana-swit-backend/services/oauth"
	"asana-swit-backend/services/signature"
	"asana-swit-backend/services/tokenstore"
	"asana-swit-backend/services/views"
)

const maxBodyBytes = 1 << 20

// TokenStore is the part of tokenstore.Store the dispatcher needs.
type TokenStore interface {
	Get(ctx context.Context, userID string) (*models.UserData, error)
	UpdateSwitTokens(ctx context.Context, userID, accessToken, refreshToken string) error
	UpdateAsanaTokensOnly(ctx context.Context, userID, accessToken, refreshToken string) error
}

// Refresher exchanges a refresh token for a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth.Token, error)
}

// SwitAuth is the Swit OAuth client: it refreshes and builds consent URLs.
type SwitAuth interface {
	Refresher
	AuthCodeURL(state string) string
}

// AsanaAPI is the Asana REST surface the handlers call.
type AsanaAPI interface {
	ListProjects(ctx context.Context, token string) ([]asana.Project, error)
	ListWorkspaceMemberships(ctx context.Context, token string) ([]asana.WorkspaceMembership, error)
	ListWorkspaceMembers(ctx context.Context, token, workspaceGID string) ([]asana.WorkspaceMembership, error)
	CreateTask(ctx context.Context, token string, in asana.TaskInput) (*asana.Task, error)
}

// SwitAPI posts messages to Swit channels.
type SwitAPI interface {
	SendMessage(ctx context.Context, token, channelID, content string) error
}

// Deps are the collaborators of a Dispatcher.
type Deps struct {
	Verifier  *signature.Verifier
	Store     TokenStore
	SwitAuth  SwitAuth
	AsanaAuth Refresher
	Swit      SwitAPI
	Asana     AsanaAPI
}

// Dispatcher verifies webhook requests and routes them to action handlers.
type Dispatcher struct {
	cfg *config.Config
	Deps
	now func() time.Time
}

// New creates a Dispatcher.
func New(cfg *config.Config, deps Deps) *Dispatcher {
	return &Dispatcher{cfg: cfg, Deps: deps, now: time.Now}
}

// WithClock overrides the clock used for token expiry checks.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// ServeHTTP handles POST on the action path.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		httpResponse.Error(w, http.StatusBadRequest, "cannot read body")
		return
	}
	if !d.Verifier.VerifyRequest(r.Header, body) {
		log.Printf("Отклонён запрос с неверной подписью от %s", r.RemoteAddr)
		httpResponse.Error(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		httpResponse.Error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if env.UserInfo.UserID == "" {
		httpResponse.Error(w, http.StatusBadRequest, "missing user_info.user_id")
		return
	}

	cb, err := d.Dispatch(r.Context(), &env)
	if err != nil {
		log.Printf("Ошибка обработки действия %q пользователя %s: %v", env.UserAction.ID, env.UserInfo.UserID, err)
		httpResponse.Error(w, http.StatusInternalServerError, "Database operation failed")
		return
	}
	httpResponse.JSON(w, http.StatusOK, cb)
}

// request is the per-call state shared by handlers.
type request struct {
	env       *Envelope
	userID    string
	language  string
	channelID string
	swit      *tokenSession
	asana     *tokenSession
}

// Dispatch returns the callback for a verified envelope. The only error it
// returns is a storage failure; everything else becomes a view.
func (d *Dispatcher) Dispatch(ctx context.Context, env *Envelope) (views.Callback, error) {
	userID := env.UserInfo.UserID
	rec, err := d.Store.Get(ctx, userID)
	if err != nil && !errors.Is(err, tokenstore.ErrNotFound) {
		return views.Callback{}, err
	}

	action := ParseAction(env.UserAction.ID)
	pending, channelID := env.UserAction.ID, env.Context.ChannelID
	switch action {
	case ActionOAuthButton:
		if a, ch, ok := splitViewState(env.ViewState()); ok {
			pending, channelID = a, ch
		}
	case ActionCreateButton:
		pending = ActionCreate.String()
		if env.CurrentView != nil && env.CurrentView.State != "" {
			channelID = env.CurrentView.State
		}
	}

	if !rec.HasSwitToken() {
		return d.oauthPrompt(userID, pending, env.UserPreferences.Language, channelID), nil
	}

	req := &request{
		env:       env,
		userID:    userID,
		language:  env.UserPreferences.Language,
		channelID: channelID,
		swit:      d.switSession(rec),
		asana:     d.asanaSession(rec),
	}

	cb, err := d.route(ctx, action, pending, req)
	switch {
	case err == nil:
		return cb, nil
	case errors.Is(err, ErrReauthorize):
		return d.oauthPrompt(userID, pending, req.language, channelID), nil
	case errors.Is(err, tokenstore.ErrUnavailable):
		return views.Callback{}, err
	default:
		log.Printf("Действие %q пользователя %s завершилось ошибкой: %v", env.UserAction.ID, userID, err)
		return views.ActionFailed("Something went wrong. Please try again."), nil
	}
}

func (d *Dispatcher) route(ctx context.Context, action Action, pending string, req *request) (views.Callback, error) {
	switch action {
	case ActionHelp:
		return d.help(ctx, req)
	case ActionCreate:
		return d.openCreateForm(ctx, req)
	case ActionNewTask:
		return views.ShareNewTask(d.cfg.SwitAppID, req.env.DestinationHint()), nil
	case ActionExistingTask:
		return views.ShareExistingTask(d.cfg.SwitAppID, req.env.DestinationHint()), nil
	case ActionOAuthButton:
		return d.resumeFromView(ctx, ParseAction(pending), req)
	case ActionCreateButton:
		return d.submitTask(ctx, req)
	default:
		log.Printf("Неизвестное действие %q от пользователя %s, закрываем окно", req.env.UserAction.ID, req.userID)
		return views.Close(), nil
	}
}

// Resume continues the action that was interrupted by the consent flow.
func (d *Dispatcher) Resume(ctx context.Context, state models.OAuthState) error {
	rec, err := d.Store.Get(ctx, state.UserID)
	if err != nil {
		return err
	}
	switch ParseAction(state.Action) {
	case ActionHelp:
		return d.sendHelp(ctx, d.switSession(rec), state.UserID, state.Language, state.Channel)
	default:
		// Остальные действия пользователь повторяет сам.
		return nil
	}
}

func (d *Dispatcher) oauthPrompt(userID, action, language, channelID string) views.Callback {
	state := models.OAuthState{UserID: userID, Action: action, Language: language, Channel: channelID}
	return views.OAuthPrompt(d.SwitAuth.AuthCodeURL(state.String()), action, channelID)
}

func (d *Dispatcher) switSession(rec *models.UserData) *tokenSession {
	return &tokenSession{
		provider:  "swit",
		userID:    rec.SwitID,
		access:    rec.SwitToken,
		refresh:   rec.SwitRefreshToken,
		refresher: d.SwitAuth,
		persist:   d.Store.UpdateSwitTokens,
		now:       d.now,
	}
}

func (d *Dispatcher) asanaSession(rec *models.UserData) *tokenSession {
	return &tokenSession{
		provider:  "asana",
		userID:    rec.SwitID,
		access:    rec.AsanaToken,
		refresh:   rec.AsanaRefreshToken,
		refresher: d.AsanaAuth,
		persist:   d.Store.UpdateAsanaTokensOnly,
		now:       d.now,
	}
}
