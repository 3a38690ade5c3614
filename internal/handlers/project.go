package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/validator"
)

// ProjectHandler serves projects and their members. Membership and role
// checks run in middleware before these handlers.
type ProjectHandler struct {
	projectService    *services.ProjectService
	membershipService *services.MembershipService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService, membershipService *services.MembershipService) *ProjectHandler {
	return &ProjectHandler{
		projectService:    projectService,
		membershipService: membershipService,
	}
}

// ListProjects returns the caller's projects with their role in each
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Abort(c, apierrors.Unauthorized(""))
		return
	}

	summaries, err := h.projectService.ListProjectsForUser(c.Request.Context(), userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	projects := make([]dto.ProjectWithRoleDTO, len(summaries))
	for i, summary := range summaries {
		projects[i] = dto.ToProjectWithRoleDTO(summary)
	}

	respond(c, http.StatusOK, "Projects fetched successfully", projects)
}

// CreateProject creates a project owned by the caller
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Abort(c, apierrors.Unauthorized(""))
		return
	}

	var req dto.CreateProjectRequest
	if err := validator.Bind(c, &req); err != nil {
		apierrors.Abort(c, err)
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   userID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Project created successfully", dto.ToProjectDTO(*project))
}

// GetProject returns a project
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)

	project, err := h.projectService.GetProject(c.Request.Context(), projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	respond(c, http.StatusOK, "Project fetched successfully", dto.ToProjectDTO(*project))
}

// UpdateProject updates a project's name and description
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)

	var req dto.UpdateProjectRequest
	if err := validator.Bind(c, &req); err != nil {
		apierrors.Abort(c, err)
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), projectID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	respond(c, http.StatusOK, "Project updated successfully", dto.ToProjectDTO(*project))
}

// DeleteProject deletes a project and its memberships
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)

	project, err := h.projectService.DeleteProject(c.Request.Context(), projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	respond(c, http.StatusOK, "Project deleted successfully", dto.ToProjectDTO(*project))
}

// ListMembers returns the members of a project
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)

	members, err := h.membershipService.ListMembers(c.Request.Context(), projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	memberDTOs := make([]dto.ProjectMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = dto.ToProjectMemberDTO(member)
	}

	respond(c, http.StatusOK, "Project members fetched successfully", memberDTOs)
}

// AddMember adds a user to the project by email, or updates their role
func (h *ProjectHandler) AddMember(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)

	var req dto.AddMemberRequest
	if err := validator.Bind(c, &req); err != nil {
		apierrors.Abort(c, err)
		return
	}

	member, err := h.membershipService.AddMember(c.Request.Context(), projectID, req.Email, models.ProjectRole(req.Role))
	if err != nil {
		respondProjectError(c, err)
		return
	}

	respond(c, http.StatusOK, "Project member added successfully", dto.ToProjectMemberDTO(*member))
}

// UpdateMemberRole changes the role of a project member
func (h *ProjectHandler) UpdateMemberRole(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)
	userID, ok := pathID(c, "userId", "user")
	if !ok {
		return
	}

	var req dto.UpdateMemberRoleRequest
	if err := validator.Bind(c, &req); err != nil {
		apierrors.Abort(c, err)
		return
	}

	member, err := h.membershipService.UpdateMemberRole(c.Request.Context(), projectID, userID, models.ProjectRole(req.Role))
	if err != nil {
		respondProjectError(c, err)
		return
	}

	respond(c, http.StatusOK, "Project member role updated successfully", gin.H{
		"project_id": member.ProjectID,
		"user_id":    member.UserID,
		"role":       member.Role,
	})
}

// RemoveMember removes a user from the project
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)
	userID, ok := pathID(c, "userId", "user")
	if !ok {
		return
	}

	if err := h.membershipService.RemoveMember(c.Request.Context(), projectID, userID); err != nil {
		respondProjectError(c, err)
		return
	}

	respond(c, http.StatusOK, "Project member deleted successfully", gin.H{})
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.Abort(c, apierrors.NotFound("Project not found"))
	case errors.Is(err, services.ErrInvalidProjectName):
		apierrors.Abort(c, apierrors.BadRequest(err.Error()))
	case errors.Is(err, services.ErrInvalidRole):
		apierrors.Abort(c, apierrors.BadRequest("Invalid role"))
	case errors.Is(err, services.ErrMemberNotFound):
		apierrors.Abort(c, apierrors.NotFound("Project member not found"))
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.Abort(c, apierrors.NotFound("User does not exist"))
	default:
		apierrors.Abort(c, err)
	}
}
