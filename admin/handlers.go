package admin

import (
	"net/http"

	"freelancehub/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
}

// Bootstrap handles POST /api/admin/bootstrap. The token comes from the
// X-Bootstrap-Token header or the token query parameter.
func (h *Handler) Bootstrap(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	var in Input
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.RespondWithErr(w, r, h.log, err)
		return
	}
	a, err := h.svc.Bootstrap(r.Context(), token, in)
	if err != nil {
		utils.RespondWithErr(w, r, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"admin": a})
}

func (h *Handler) Signin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in Input
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.RespondWithErr(w, r, h.log, err)
		return
	}
	sess, err := h.svc.Signin(r.Context(), in.Email, in.Password)
	if err != nil {
		utils.RespondWithErr(w, r, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, sess)
}
