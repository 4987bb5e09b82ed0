package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/server/services"
)

const (
	msgCodeRequired    = "Unlock code is required"
	msgInvalidUnlockAt = "Unlock time must be a valid date in the future"
)

// unlockCode reads the ?code= parameter, answering 401 when it is absent.
func unlockCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, http.StatusUnauthorized, msgCodeRequired)
		return "", false
	}
	return code, true
}

func parseUnlockAt(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func (s *Server) handleCreateCapsule(w http.ResponseWriter, r *http.Request) {
	var req createCapsuleRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Message == nil || *req.Message == "" ||
		req.UnlockAt == nil || *req.UnlockAt == "" {
		respondWithError(w, http.StatusBadRequest, "Message and unlock time are required")
		return
	}

	unlockAt, err := parseUnlockAt(*req.UnlockAt)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, msgInvalidUnlockAt)
		return
	}

	c, err := s.capsules.Create(r.Context(), userIDFrom(r.Context()), *req.Message, unlockAt)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}

	respondWithJSON(w, http.StatusCreated, createCapsuleResponse{
		Message: "Capsule created successfully",
		Capsule: createdCapsule{ID: c.ID, UnlockCode: c.UnlockCode, UnlockAt: c.UnlockAt},
	})
}

func (s *Server) handleGetCapsule(w http.ResponseWriter, r *http.Request) {
	code, ok := unlockCode(w, r)
	if !ok {
		return
	}

	c, err := s.capsules.Read(r.Context(), userIDFrom(r.Context()), r.PathValue("id"), code)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}

	respondWithJSON(w, http.StatusOK, capsuleResponse{
		ID:            c.ID,
		Message:       c.Message,
		UnlockAt:      c.UnlockAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		AttachmentURL: c.AttachmentURL,
	})
}

// queryInt parses a positive integer query value, falling back to def.
func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n == 0 {
		return def
	}
	return n
}

func (s *Server) handleListCapsules(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", services.DefaultPage)
	limit := queryInt(r, "limit", services.DefaultLimit)

	p, err := s.capsules.List(r.Context(), userIDFrom(r.Context()), page, limit)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}

	resp := listResponse{
		Capsules: make([]capsuleSummary, 0, len(p.Capsules)),
		Pagination: pagination{
			Total:      p.Total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: p.TotalPages,
		},
	}
	for _, c := range p.Capsules {
		resp.Capsules = append(resp.Capsules, capsuleSummary{
			ID:        c.ID,
			Message:   c.Message,
			UnlockAt:  c.UnlockAt,
			Retired:   c.Retired,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateCapsule(w http.ResponseWriter, r *http.Request) {
	code, ok := unlockCode(w, r)
	if !ok {
		return
	}

	var req updateCapsuleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var in services.UpdateInput
	if req.Message != nil && *req.Message != "" {
		in.Message = req.Message
	}
	if req.UnlockAt != nil && *req.UnlockAt != "" {
		at, err := parseUnlockAt(*req.UnlockAt)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, msgInvalidUnlockAt)
			return
		}
		in.UnlockAt = &at
	}
	if in.Message == nil && in.UnlockAt == nil {
		respondWithError(w, http.StatusBadRequest, "At least one field to update is required")
		return
	}

	id, err := s.capsules.Update(r.Context(), userIDFrom(r.Context()), r.PathValue("id"), code, in)
	if err != nil {
		s.writeServiceError(w, r, err, "Cannot update an unlocked capsule")
		return
	}

	respondWithJSON(w, http.StatusOK, mutationResponse{Message: "Capsule updated successfully", ID: id})
}

func (s *Server) handleDeleteCapsule(w http.ResponseWriter, r *http.Request) {
	code, ok := unlockCode(w, r)
	if !ok {
		return
	}

	id, err := s.capsules.Delete(r.Context(), userIDFrom(r.Context()), r.PathValue("id"), code)
	if err != nil {
		s.writeServiceError(w, r, err, "Cannot delete an unlocked capsule")
		return
	}

	respondWithJSON(w, http.StatusOK, mutationResponse{Message: "Capsule deleted successfully", ID: id})
}

func (s *Server) handleAttachmentUpload(w http.ResponseWriter, r *http.Request) {
	code, ok := unlockCode(w, r)
	if !ok {
		return
	}

	up, err := s.capsules.AttachmentUploadURL(r.Context(), userIDFrom(r.Context()), r.PathValue("id"), code)
	if err != nil {
		s.writeServiceError(w, r, err, "Cannot attach to an unlocked capsule")
		return
	}

	respondWithJSON(w, http.StatusOK, attachmentResponse{ID: up.CapsuleID, UploadURL: up.URL})
}
