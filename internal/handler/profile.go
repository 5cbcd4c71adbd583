package handler

import (
	"net/http"

	"artisanlink/internal/user"
	"artisanlink/internal/utils"
)

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	p, err := h.Users.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", p)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var params user.UpdateProfileParams
	if err := decodeJSON(w, r, &params); err != nil {
		writeFailure(w, http.StatusBadRequest, utils.MsgInvalidInput, nil)
		return
	}
	params.UserID, _ = utils.GetUserIDFromContext(r.Context())

	p, err := h.Users.UpdateProfile(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, utils.MsgSaved, p)
}
