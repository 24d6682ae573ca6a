package authentication

import (
	"log"
	"net/http"

	"asana-swit-backend/config"
	"asana-swit-backend/controllers/httpResponse"
	"asana-swit-backend/models"
	"asana-swit-backend/services/views"
)

// HandleAppInstall sends the installing admin to the Swit consent page.
func (h *Handler) HandleAppInstall(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("app_name") != h.cfg.AppName {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, h.swit.AuthCodeURL(config.InstallState), http.StatusTemporaryRedirect)
}

// HandleSwitCallback stores the Swit tokens and continues to the Asana consent page.
func (h *Handler) HandleSwitCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		log.Printf("Swit вернул ошибку авторизации: %s", e)
		httpResponse.Error(w, http.StatusBadRequest, "Authorization denied")
		return
	}
	code, rawState := q.Get("code"), q.Get("state")
	if code == "" || rawState == "" {
		httpResponse.Error(w, http.StatusBadRequest, "Missing code or state")
		return
	}

	tok, err := h.swit.ExchangeCode(r.Context(), code)
	if err != nil {
		log.Printf("Ошибка обмена кода Swit: %v", err)
		httpResponse.Error(w, http.StatusBadGateway, "Failed to obtain access token")
		return
	}

	// Установка приложения: токены не привязаны к пользователю.
	if rawState == config.InstallState {
		httpResponse.HTML(w, views.PopupCloseHTML)
		return
	}

	state, err := models.ParseOAuthState(rawState)
	if err != nil {
		httpResponse.Error(w, http.StatusBadRequest, "Invalid state")
		return
	}

	if err := h.store.UpsertSwitTokens(r.Context(), state.UserID, tok.AccessToken, tok.RefreshToken); err != nil {
		log.Printf("Не удалось сохранить токены Swit пользователя %s: %v", state.UserID, err)
		httpResponse.Error(w, http.StatusInternalServerError, "Database operation failed")
		return
	}

	// Старая или чужая кука просто заменяется новой сессией.
	session, _ := h.sessions.Get(r, sessionName)
	session.Values[stateKey] = state.String()
	if err := session.Save(r, w); err != nil {
		log.Printf("Не удалось сохранить OAuth-сессию пользователя %s: %v", state.UserID, err)
		httpResponse.Error(w, http.StatusInternalServerError, "Failed to start Asana authorization")
		return
	}

	http.Redirect(w, r, h.asana.AuthCodeURL(state.String()), http.StatusTemporaryRedirect)
}
