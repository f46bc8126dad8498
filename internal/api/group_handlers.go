package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/potluckapp/potluck/internal/middleware"
	"github.com/potluckapp/potluck/internal/models"
	"github.com/potluckapp/potluck/internal/service"
)

type createGroupRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type joinGroupRequest struct {
	InviteCode string `json:"inviteCode"`
}

type updateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// handleListGroups returns the caller's groups with role and counts.
// GET /groups
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListGroupsForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	if groups == nil {
		groups = []*models.GroupSummary{}
	}
	writeJSON(w, http.StatusOK, groups)
}

// handleCreateGroup creates a group with the caller as admin.
// POST /groups
func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := s.groups.CreateGroup(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "group created successfully",
		"group":   group,
	})
}

// handleJoinGroup redeems an invite code.
// POST /groups/join
func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	var req joinGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := s.groups.JoinGroup(r.Context(), middleware.GetUserID(r.Context()), req.InviteCode)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "successfully joined group",
		"group":   group,
	})
}

// handleGroupDetail returns group metadata plus the roster.
// GET /groups/{id}
func (s *Server) handleGroupDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.groups.GetGroupDetail(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if detail.Members == nil {
		detail.Members = []models.Member{}
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleUpdateGroup applies a partial update. Admin only.
// PUT /groups/{id}
func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req updateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	err := s.groups.UpdateGroup(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), service.UpdateGroupInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "group updated successfully"})
}

// handleLeaveGroup removes the caller's membership.
// POST /groups/{id}/leave
func (s *Server) handleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	err := s.groups.LeaveGroup(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "successfully left the group"})
}

// handleRegenerateInvite replaces the invite code. Admin only.
// POST /groups/{id}/regenerate-invite
func (s *Server) handleRegenerateInvite(w http.ResponseWriter, r *http.Request) {
	code, err := s.groups.RegenerateInviteCode(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"inviteCode": code})
}
