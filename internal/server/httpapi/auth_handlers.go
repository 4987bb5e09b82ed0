package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/timecapsule/internal/common"
)

const msgCredentialsRequired = "Username and password are required"

func readCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Username) == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, msgCredentialsRequired)
		return req, false
	}
	return req, true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := readCredentials(w, r)
	if !ok {
		return
	}

	sess, err := s.users.Register(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		respondWithJSON(w, http.StatusCreated, sessionResponse{
			Message: "User registered successfully",
			UserID:  sess.UserID,
			Token:   sess.AccessToken,
		})
	case errors.Is(err, common.ErrorAlreadyExists):
		respondWithError(w, http.StatusConflict, "Username already exists")
	case errors.Is(err, common.ErrorValidation):
		respondWithError(w, http.StatusBadRequest, msgCredentialsRequired)
	default:
		s.logger.Error(r.Context(), "register failed", "request_id", requestIDFrom(r.Context()), "error", err)
		respondWithError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := readCredentials(w, r)
	if !ok {
		return
	}

	sess, err := s.users.Login(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		respondWithJSON(w, http.StatusOK, sessionResponse{
			Message: "Login successful",
			UserID:  sess.UserID,
			Token:   sess.AccessToken,
		})
	case errors.Is(err, common.ErrorUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, common.ErrorValidation):
		respondWithError(w, http.StatusBadRequest, msgCredentialsRequired)
	default:
		s.logger.Error(r.Context(), "login failed", "request_id", requestIDFrom(r.Context()), "error", err)
		respondWithError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
	}
}
