package users

import (
	"encoding/json"
	"net/http"

	"freelancehub/apperr"
	"freelancehub/projects"
	"freelancehub/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	utils.RespondWithErr(w, r, h.log, err)
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) (primitive.ObjectID, bool) {
	id, err := utils.ParseID(ps.ByName("id"), "Invalid user id")
	if err != nil {
		h.fail(w, r, err)
		return id, false
	}
	return id, true
}

func wantsEmployer(r *http.Request) bool { return r.URL.Query().Get("type") == "employer" }

// GET /api/users?role=freelancer
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if r.URL.Query().Get("role") != "freelancer" {
		h.fail(w, r, apperr.Invalid("Unsupported query"))
		return
	}
	out, err := h.svc.Freelancers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// GET /api/users/:id
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.userID(w, r, ps)
	if !ok {
		return
	}
	if wantsEmployer(r) {
		e, err := h.svc.Employer(r.Context(), id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, e)
		return
	}
	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, u)
}

// GET /api/users/:id/metrics
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.userID(w, r, ps)
	if !ok {
		return
	}
	m, err := h.svc.Metrics(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, m)
}

// PUT /api/users/:id/metrics/reconcile
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.userID(w, r, ps)
	if !ok {
		return
	}
	m, err := h.svc.Reconcile(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, m)
}

// PUT /api/users/:id/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.userID(w, r, ps)
	if !ok {
		return
	}
	var in ProfileInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	if wantsEmployer(r) {
		e, err := h.svc.UpdateEmployerProfile(r.Context(), id, in)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "profile": e.Profile, "id": e.ID.Hex()})
		return
	}
	u, err := h.svc.UpdateProfile(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "profile": u.Profile, "id": u.ID.Hex()})
}

// PUT /api/users/:id/skills
func (h *Handler) SetSkills(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.userID(w, r, ps)
	if !ok {
		return
	}
	var body struct {
		Skills json.RawMessage `json:"skills"`
	}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	var skills []string
	if len(body.Skills) == 0 || string(body.Skills) == "null" || json.Unmarshal(body.Skills, &skills) != nil {
		h.fail(w, r, apperr.Invalid("skills must be an array of strings"))
		return
	}
	out, err := h.svc.SetSkills(r.Context(), id, skills)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "skills": out})
}

// POST /api/users/:id/projects
func (h *Handler) AddProject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.userID(w, r, ps)
	if !ok {
		return
	}
	var in projects.Input
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := h.svc.AddProject(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "projects": out})
}

// PUT /api/users/:id/projects/:projectId
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.userID(w, r, ps)
	if !ok {
		return
	}
	projectID, err := utils.ParseID(ps.ByName("projectId"), "Invalid project id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in projects.Input
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.svc.UpdateProject(r.Context(), id, projectID, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "project": p})
}

// DELETE /api/users/:id/projects/:projectId
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.userID(w, r, ps)
	if !ok {
		return
	}
	projectID, err := utils.ParseID(ps.ByName("projectId"), "Invalid project id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.DeleteProject(r.Context(), id, projectID); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// POST /api/users/:id/reviews
func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.userID(w, r, ps)
	if !ok {
		return
	}
	var in ReviewInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	rev, err := h.svc.AddReview(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "review": rev})
}

// DELETE /api/users/:id
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.userID(w, r, ps)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}
