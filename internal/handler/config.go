package handler

import (
	"net/http"

	"github.com/workdesk/internal/appstate"
	"github.com/workdesk/internal/config"
)

// AppConfigHandler отдаёт фронту настройки, которые нужны до гидратации.
type AppConfigHandler struct {
	cfg *config.Config
}

func NewAppConfigHandler(cfg *config.Config) *AppConfigHandler {
	return &AppConfigHandler{cfg: cfg}
}

type appConfigResponse struct {
	DefaultLanguage string   `json:"default_language"`
	RTLLanguages    []string `json:"rtl_languages"`
}

func (h *AppConfigHandler) GetAppConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, appConfigResponse{
		DefaultLanguage: h.cfg.DefaultLanguage,
		RTLLanguages:    appstate.RTLLanguages(),
	})
}
