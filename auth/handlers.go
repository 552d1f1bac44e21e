package auth

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

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	utils.RespondWithErr(w, r, h.log, err)
}

// Register handles POST /api/auth/signup.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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

// Login handles POST /api/auth/signin.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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

// Logout handles POST /api/auth/signout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	raw, _ := utils.BearerToken(r)
	h.svc.Signout(r.Context(), raw)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// PatchProfile handles PATCH /api/auth/profile/:userId. It must be wrapped
// by the self-or-admin guard.
func (h *Handler) PatchProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := utils.ParseID(ps.ByName("userId"), "Invalid user id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	body := map[string]any{}
	if err := utils.DecodeJSON(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.svc.PatchProfile(r.Context(), id, body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// Forgot handles POST /api/auth/forgot.
func (h *Handler) Forgot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in struct {
		Email string `json:"email"`
	}
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Forgot(r.Context(), in.Email); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// Reset handles POST /api/auth/reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in ResetInput
	if err := utils.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.svc.Reset(r.Context(), in); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}
