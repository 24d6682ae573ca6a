package authentication

import (
	"errors"
	"log"
	"net/http"

	"asana-swit-backend/controllers/httpResponse"
	"asana-swit-backend/models"
	"asana-swit-backend/services/tokenstore"
	"asana-swit-backend/services/views"
)

// HandleAsanaCallback stores the Asana tokens, resumes the pending action and
// closes the popup.
func (h *Handler) HandleAsanaCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		log.Printf("Asana вернула ошибку авторизации: %s", e)
		httpResponse.Error(w, http.StatusBadRequest, "Authorization denied")
		return
	}
	code := q.Get("code")
	if code == "" {
		httpResponse.Error(w, http.StatusBadRequest, "Missing code or state")
		return
	}
	state, err := models.ParseOAuthState(q.Get("state"))
	if err != nil {
		httpResponse.Error(w, http.StatusBadRequest, "Invalid state")
		return
	}

	if !h.consumeState(w, r, state) {
		log.Printf("Callback Asana для %s без совпадающей OAuth-сессии", state.UserID)
		httpResponse.Error(w, http.StatusForbidden, "OAuth session mismatch")
		return
	}

	tok, err := h.asana.ExchangeCode(r.Context(), code)
	if err != nil {
		log.Printf("Ошибка обмена кода Asana: %v", err)
		httpResponse.Error(w, http.StatusBadGateway, "Failed to obtain access token")
		return
	}

	err = h.store.UpdateAsanaTokens(r.Context(), state.UserID, tok.ProviderUserID, tok.AccessToken, tok.RefreshToken)
	switch {
	case errors.Is(err, tokenstore.ErrNotFound):
		httpResponse.Error(w, http.StatusConflict, "Swit authorization missing")
		return
	case err != nil:
		log.Printf("Не удалось сохранить токены Asana пользователя %s: %v", state.UserID, err)
		httpResponse.Error(w, http.StatusInternalServerError, "Database operation failed")
		return
	}

	if err := h.resumer.Resume(r.Context(), state); err != nil {
		log.Printf("Не удалось продолжить действие %q пользователя %s: %v", state.Action, state.UserID, err)
	}
	httpResponse.HTML(w, views.PopupCloseHTML)
}

// consumeState checks that the session started by the Swit callback carries
// exactly this state, and clears it so it is used once.
func (h *Handler) consumeState(w http.ResponseWriter, r *http.Request, state models.OAuthState) bool {
	session, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return false
	}
	pending, _ := session.Values[stateKey].(string)
	if pending == "" || pending != state.String() {
		return false
	}

	delete(session.Values, stateKey)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		log.Printf("Не удалось очистить OAuth-сессию пользователя %s: %v", state.UserID, err)
	}
	return true
}
