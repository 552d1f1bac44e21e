package employers

import (
	"net/http"

	"freelancehub/models"
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

// employerView adds the string id the original clients read.
type employerView struct {
	ID string `json:"id"`
	*models.Employer
}

func view(e *models.Employer) employerView { return employerView{ID: e.ID.Hex(), Employer: e} }

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	utils.RespondWithErr(w, r, h.log, err)
}

// POST /api/employers/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in SignupInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	sess, err := h.svc.Signup(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, sess)
}

// POST /api/employers/signin
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in SigninInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	sess, err := h.svc.Signin(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, sess)
}

// GET /api/employers
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	views := make([]employerView, 0, len(out))
	for i := range out {
		views = append(views, view(&out[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, views)
}

// GET /api/employers/:id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"), "Invalid employer id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view(e))
}

// PUT /api/employers/:id
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"), "Invalid employer id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in ProfileInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.svc.UpdateProfile(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "profile": e.Profile, "id": e.ID.Hex()})
}

// GET /api/employers/:id/metrics
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"), "Invalid employer id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	m, err := h.svc.Metrics(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, m)
}

// PATCH /api/employers/:id/metrics
func (h *Handler) SetMetrics(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"), "Invalid employer id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	body := map[string]any{}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	m, err := h.svc.SetMetrics(r.Context(), id, body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, m)
}

// PUT /api/employers/:id/metrics/reconcile
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"), "Invalid employer id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	m, err := h.svc.Reconcile(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, m)
}
