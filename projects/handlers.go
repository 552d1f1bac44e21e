package projects

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

// GET /api/projects/freelancer/:id
func (h *Handler) ListByFreelancer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"), "Invalid freelancer id")
	if err != nil {
		utils.RespondWithErr(w, r, h.log, err)
		return
	}
	out, err := h.svc.Public(r.Context(), id)
	if err != nil {
		utils.RespondWithErr(w, r, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// PUT /api/projects/:id
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"), "Invalid project id")
	if err != nil {
		utils.RespondWithErr(w, r, h.log, err)
		return
	}
	var in Input
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		utils.RespondWithErr(w, r, h.log, err)
		return
	}
	p, err := h.svc.Update(r.Context(), id, nil, in)
	if err != nil {
		utils.RespondWithErr(w, r, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// DELETE /api/projects/:id
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"), "Invalid project id")
	if err != nil {
		utils.RespondWithErr(w, r, h.log, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id, nil); err != nil {
		utils.RespondWithErr(w, r, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}
