package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kemalcalak/Resume-Builder/internal/api/middleware"
	"github.com/kemalcalak/Resume-Builder/internal/database"
	"github.com/kemalcalak/Resume-Builder/internal/document"
)

// DocumentStore is the part of *document.Store the HTTP layer needs.
type DocumentStore interface {
	CreateDocument(ctx context.Context, owner document.Owner, title string) (*database.Document, error)
	GetDocument(ctx context.Context, ownerID, externalID string) (*database.Document, error)
	GetPublicDocument(ctx context.Context, externalID string) (*database.Document, error)
	ListDocuments(ctx context.Context, ownerID, excludeStatus string) ([]database.Document, error)
	ListTrash(ctx context.Context, ownerID string) ([]database.Document, error)
	SetStatus(ctx context.Context, ownerID, externalID, from, to string) (*database.Document, error)
	Save(ctx context.Context, ownerID, externalID string, req document.SaveRequest) (*document.SaveResult, error)
}

// DocumentHandler serves the document endpoints.
type DocumentHandler struct {
	store   DocumentStore
	scanner VirusScanner
}

// NewDocumentHandler builds a DocumentHandler. scanner may be nil to skip thumbnail scanning.
func NewDocumentHandler(store DocumentStore, scanner VirusScanner) *DocumentHandler {
	useJSONFieldNames()
	return &DocumentHandler{store: store, scanner: scanner}
}

type createDocumentRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

type restoreDocumentRequest struct {
	DocumentID string `json:"documentId" binding:"required"`
	Status     string `json:"status" binding:"required"`
}

type personalInfoRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,max=255"`
	LastName  *string `json:"lastName" binding:"omitempty,max=255"`
	JobTitle  *string `json:"jobTitle" binding:"omitempty,max=255"`
	Address   *string `json:"address" binding:"omitempty,max=500"`
	Phone     *string `json:"phone" binding:"omitempty,max=50"`
	Email     *string `json:"email" binding:"omitempty,max=255"`
	Website   *string `json:"website" binding:"omitempty,max=255"`
	Linkedin  *string `json:"linkedin" binding:"omitempty,max=255"`
	Github    *string `json:"github" binding:"omitempty,max=255"`
	Medium    *string `json:"medium" binding:"omitempty,max=255"`
}

type experienceRequest struct {
	ID               uint   `json:"id"`
	Title            string `json:"title" binding:"max=255"`
	CompanyName      string `json:"companyName" binding:"max=255"`
	City             string `json:"city" binding:"max=255"`
	State            string `json:"state" binding:"max=255"`
	StartDate        string `json:"startDate" binding:"max=32"`
	EndDate          string `json:"endDate" binding:"max=32"`
	CurrentlyWorking bool   `json:"currentlyWorking"`
	WorkSummary      string `json:"workSummary"`
}

type educationRequest struct {
	ID             uint   `json:"id"`
	UniversityName string `json:"universityName" binding:"max=255"`
	StartDate      string `json:"startDate" binding:"max=32"`
	EndDate        string `json:"endDate" binding:"max=32"`
	Degree         string `json:"degree" binding:"max=255"`
	Major          string `json:"major" binding:"max=255"`
	Description    string `json:"description"`
}

type projectRequest struct {
	ID             uint   `json:"id"`
	ProjectName    string `json:"projectName" binding:"max=255"`
	ProjectSummary string `json:"projectSummary"`
	StartDate      string `json:"startDate" binding:"max=32"`
	EndDate        string `json:"endDate" binding:"max=32"`
}

type certificateRequest struct {
	ID              uint   `json:"id"`
	CertificateName string `json:"certificateName" binding:"max=255"`
	Teacher         string `json:"teacher" binding:"max=255"`
	WhoGave         string `json:"whoGave" binding:"max=255"`
	IssueDate       string `json:"issueDate" binding:"max=32"`
}

// saveDocumentRequest mirrors document.SaveRequest. An absent or null list
// decodes to nil and leaves the collection alone; [] clears it.
type saveDocumentRequest struct {
	Title           *string              `json:"title" binding:"omitempty,max=255"`
	Status          *string              `json:"status" binding:"omitempty,oneof=private public archived"`
	Summary         *string              `json:"summary"`
	ThemeColor      *string              `json:"themeColor" binding:"omitempty,hexcolor"`
	Thumbnail       *string              `json:"thumbnail"`
	CurrentPosition *int                 `json:"currentPosition" binding:"omitempty,min=1"`
	PersonalInfo    *personalInfoRequest `json:"personalInfo"`
	Experience      []experienceRequest  `json:"experience" binding:"omitempty,dive"`
	Education       []educationRequest   `json:"education" binding:"omitempty,dive"`
	Project         []projectRequest     `json:"project" binding:"omitempty,dive"`
	Certificate     []certificateRequest `json:"certificate" binding:"omitempty,dive"`
}

func (r saveDocumentRequest) toSaveRequest() document.SaveRequest {
	out := document.SaveRequest{
		Title:           r.Title,
		Status:          r.Status,
		Summary:         r.Summary,
		ThemeColor:      r.ThemeColor,
		Thumbnail:       r.Thumbnail,
		CurrentPosition: r.CurrentPosition,
	}

	if p := r.PersonalInfo; p != nil {
		out.PersonalInfo = &document.PersonalInfoPatch{
			FirstName: p.FirstName,
			LastName:  p.LastName,
			JobTitle:  p.JobTitle,
			Address:   p.Address,
			Phone:     p.Phone,
			Email:     p.Email,
			Website:   p.Website,
			Linkedin:  p.Linkedin,
			Github:    p.Github,
			Medium:    p.Medium,
		}
	}

	if r.Experience != nil {
		out.Experiences = make([]database.Experience, 0, len(r.Experience))
		for _, e := range r.Experience {
			out.Experiences = append(out.Experiences, database.Experience{
				ID:               e.ID,
				Title:            e.Title,
				CompanyName:      e.CompanyName,
				City:             e.City,
				State:            e.State,
				StartDate:        e.StartDate,
				EndDate:          e.EndDate,
				CurrentlyWorking: e.CurrentlyWorking,
				WorkSummary:      e.WorkSummary,
			})
		}
	}
	if r.Education != nil {
		out.Educations = make([]database.Education, 0, len(r.Education))
		for _, e := range r.Education {
			out.Educations = append(out.Educations, database.Education{
				ID:             e.ID,
				UniversityName: e.UniversityName,
				StartDate:      e.StartDate,
				EndDate:        e.EndDate,
				Degree:         e.Degree,
				Major:          e.Major,
				Description:    e.Description,
			})
		}
	}
	if r.Project != nil {
		out.Projects = make([]database.Project, 0, len(r.Project))
		for _, p := range r.Project {
			out.Projects = append(out.Projects, database.Project{
				ID:             p.ID,
				ProjectName:    p.ProjectName,
				ProjectSummary: p.ProjectSummary,
				StartDate:      p.StartDate,
				EndDate:        p.EndDate,
			})
		}
	}
	if r.Certificate != nil {
		out.Certificates = make([]database.Certificate, 0, len(r.Certificate))
		for _, c := range r.Certificate {
			out.Certificates = append(out.Certificates, database.Certificate{
				ID:              c.ID,
				CertificateName: c.CertificateName,
				Teacher:         c.Teacher,
				WhoGave:         c.WhoGave,
				IssueDate:       c.IssueDate,
			})
		}
	}
	return out
}

// CreateDocument allocates an empty private document for the caller.
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationFailed(c, bindingFields(err))
		return
	}

	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	identity := middleware.IdentityFromContext(c)

	doc, err := h.store.CreateDocument(c.Request.Context(), document.Owner{
		ID:    ownerID,
		Name:  identity.DisplayName(),
		Email: identity.Email,
	}, req.Title)
	if err != nil {
		RespondError(c, err, "failed to create document")
		return
	}

	Success(c, http.StatusCreated, newDocumentSummary(*doc))
}

// ListDocuments returns the caller's non-archived documents.
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	docs, err := h.store.ListDocuments(c.Request.Context(), ownerID, database.StatusArchived)
	if err != nil {
		RespondError(c, err, "failed to fetch documents")
		return
	}
	Success(c, http.StatusOK, newDocumentSummaries(docs))
}

// ListTrash returns the caller's archived documents.
func (h *DocumentHandler) ListTrash(c *gin.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	docs, err := h.store.ListTrash(c.Request.Context(), ownerID)
	if err != nil {
		RespondError(c, err, "failed to fetch trash")
		return
	}
	Success(c, http.StatusOK, newDocumentSummaries(docs))
}

// RestoreDocument moves an archived document back to private.
func (h *DocumentHandler) RestoreDocument(c *gin.Context) {
	var req restoreDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationFailed(c, bindingFields(err))
		return
	}
	if req.Status != database.StatusArchived {
		ValidationFailed(c, map[string]string{"status": "status must be archived before restore"})
		return
	}

	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	doc, err := h.store.SetStatus(c.Request.Context(), ownerID, req.DocumentID, database.StatusArchived, database.StatusPrivate)
	if err != nil {
		RespondError(c, err, "failed to restore document")
		return
	}
	SuccessMessage(c, http.StatusOK, "Updated successfully", newDocumentSummary(*doc))
}

// GetDocument returns the caller's document tree.
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	doc, err := h.store.GetDocument(c.Request.Context(), ownerID, c.Param("documentId"))
	if err != nil {
		RespondError(c, err, "failed to fetch document")
		return
	}
	Success(c, http.StatusOK, newDocumentResponse(doc))
}

// GetPublicDocument serves a shared document without authentication.
func (h *DocumentHandler) GetPublicDocument(c *gin.Context) {
	doc, err := h.store.GetPublicDocument(c.Request.Context(), c.Param("documentId"))
	if err != nil {
		RespondError(c, err, "failed to fetch document")
		return
	}
	Success(c, http.StatusOK, newPublicDocumentResponse(doc))
}

// SaveDocument applies a sparse save and reconciles the submitted collections.
func (h *DocumentHandler) SaveDocument(c *gin.Context) {
	var req saveDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ValidationFailed(c, bindingFields(err))
		return
	}

	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	if req.Thumbnail != nil {
		msg, err := checkThumbnail(*req.Thumbnail, h.scanner)
		if err != nil {
			middleware.LoggerFromContext(c).Error("scan thumbnail", "error", err)
			Internal(c, "failed to scan thumbnail")
			return
		}
		if msg != "" {
			ValidationFailed(c, map[string]string{"thumbnail": msg})
			return
		}
	}

	result, err := h.store.Save(c.Request.Context(), ownerID, c.Param("documentId"), req.toSaveRequest())
	if err != nil {
		RespondError(c, err, "failed to update document")
		return
	}

	logger := middleware.LoggerFromContext(c)
	for _, r := range result.Collections {
		logger.Debug("collection reconciled",
			"collection", r.Collection,
			"inserted", r.Inserted,
			"updated", r.Updated,
			"deleted", r.Deleted,
		)
	}
	SuccessMessage(c, http.StatusOK, "Updated successfully", nil)
}
