package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/timecapsule/internal/common"
	"github.com/dmitrijs2005/timecapsule/internal/server/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, msg string) {
	respondWithJSON(w, code, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(dst)
}

// writeServiceError maps a service error onto a status code and body.
// unlockedMsg is the text used for common.ErrorAlreadyUnlocked, which
// differs per operation.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, unlockedMsg string) {
	var notYet *services.NotYetUnlockedError
	switch {
	case errors.As(err, &notYet):
		respondWithJSON(w, http.StatusForbidden, notYetUnlockedResponse{
			Error:    "Capsule is not yet unlocked",
			UnlockAt: notYet.UnlockAt,
		})
	case errors.Is(err, common.ErrorNotFound):
		respondWithError(w, http.StatusNotFound, "Capsule not found")
	case errors.Is(err, common.ErrorRetired):
		respondWithError(w, http.StatusGone, "Capsule has expired")
	case errors.Is(err, common.ErrorUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Invalid unlock code")
	case errors.Is(err, common.ErrorAlreadyUnlocked):
		respondWithError(w, http.StatusForbidden, unlockedMsg)
	case errors.Is(err, common.ErrorValidation):
		respondWithError(w, http.StatusBadRequest, validationText(err))
	default:
		s.logger.Error(r.Context(), "request failed", "request_id", requestIDFrom(r.Context()), "error", err)
		respondWithError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
	}
}

func validationText(err error) string {
	return strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": ")
}
