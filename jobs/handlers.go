package jobs

import (
	"net/http"
	"strings"

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

// jobView adds the string "id" clients use next to "_id".
type jobView struct {
	ID string `json:"id"`
	*models.Job
}

func view(j *models.Job) jobView { return jobView{ID: j.ID.Hex(), Job: j} }

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	utils.RespondWithErr(w, r, h.log, err)
}

// GET /api/jobs
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	f := Filter{
		Search:          strings.TrimSpace(q.Get("search")),
		ExperienceLevel: strings.TrimSpace(q.Get("experienceLevel")),
		EmployerID:      strings.TrimSpace(q.Get("employerId")),
		AppliedBy:       strings.TrimSpace(q.Get("appliedBy")),
	}
	if br := q.Get("budgetRange"); br != "" {
		lo, hi, err := ParseBudgetRange(br)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		f.BudgetMin, f.BudgetMax = lo, hi
	}

	jobs, err := h.svc.List(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]jobView, 0, len(jobs))
	for i := range jobs {
		out = append(out, view(&jobs[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// GET /api/jobs/:id
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"), "Invalid job id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	j, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view(j))
}

// POST /api/jobs
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in JobInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	j, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, view(j))
}

// PATCH /api/jobs/:id
func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"), "Invalid job id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var p Patch
	if err := utils.DecodeJSON(w, r, &p); err != nil {
		h.fail(w, r, err)
		return
	}
	j, err := h.svc.Update(r.Context(), id, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view(j))
}

// DELETE /api/jobs/:id
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("id"), "Invalid job id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// POST /api/applications
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in ApplyInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.Apply(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"success":     true,
		"application": res.Application,
		"jobId":       res.JobID,
		"jobStatus":   res.JobStatus,
	})
}

// PUT /api/applications/:id/accept
func (h *Handler) AcceptApplication(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := h.svc.Accept(r.Context(), ps.ByName("id"))
	h.decision(w, r, res, err)
}

// PUT /api/applications/:id/decline
//
// Declining one application does not always decline the job. The returned
// jobStatus is derived from every application on the job: "accepted" when
// one is accepted, "pending" while any is still applied, "declined" only
// when none is left in either state.
func (h *Handler) DeclineApplication(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := h.svc.Decline(r.Context(), ps.ByName("id"))
	h.decision(w, r, res, err)
}

func (h *Handler) decision(w http.ResponseWriter, r *http.Request, res *DecisionResult, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":   true,
		"message":   res.Message,
		"jobId":     res.JobID,
		"jobStatus": res.JobStatus,
	})
}

// POST /api/jobs/:id/submissions
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in SubmissionInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.Submit(r.Context(), ps.ByName("id"), in)
	h.submission(w, r, res, err)
}

// PUT /api/jobs/:id/submissions
func (h *Handler) UpsertSubmission(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in SubmissionInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.svc.UpsertSubmission(r.Context(), ps.ByName("id"), in)
	h.submission(w, r, res, err)
}

func (h *Handler) submission(w http.ResponseWriter, r *http.Request, res *SubmissionResult, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	utils.RespondWithJSON(w, status, utils.M{
		"success":    true,
		"submission": res.Submission,
		"jobId":      res.JobID,
	})
}
