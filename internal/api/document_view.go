package api

import (
	"time"

	"github.com/kemalcalak/Resume-Builder/internal/database"
)

type documentSummary struct {
	DocumentID      string    `json:"documentId"`
	Title           string    `json:"title"`
	Status          string    `json:"status"`
	ThemeColor      string    `json:"themeColor"`
	Thumbnail       string    `json:"thumbnail,omitempty"`
	Summary         string    `json:"summary"`
	CurrentPosition int       `json:"currentPosition"`
	AuthorName      string    `json:"authorName"`
	AuthorEmail     string    `json:"authorEmail,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type documentResponse struct {
	documentSummary
	PersonalInfo *personalInfoView `json:"personalInfo"`
	Experiences  []experienceView  `json:"experiences"`
	Educations   []educationView   `json:"educations"`
	Projects     []projectView     `json:"projects"`
	Certificates []certificateView `json:"certificates"`
}

type personalInfoView struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	JobTitle  string `json:"jobTitle"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Website   string `json:"website"`
	Linkedin  string `json:"linkedin"`
	Github    string `json:"github"`
	Medium    string `json:"medium"`
}

type experienceView struct {
	ID               uint   `json:"id"`
	Title            string `json:"title"`
	CompanyName      string `json:"companyName"`
	City             string `json:"city"`
	State            string `json:"state"`
	StartDate        string `json:"startDate"`
	EndDate          string `json:"endDate"`
	CurrentlyWorking bool   `json:"currentlyWorking"`
	WorkSummary      string `json:"workSummary"`
}

type educationView struct {
	ID             uint   `json:"id"`
	UniversityName string `json:"universityName"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	Degree         string `json:"degree"`
	Major          string `json:"major"`
	Description    string `json:"description"`
}

type projectView struct {
	ID             uint   `json:"id"`
	ProjectName    string `json:"projectName"`
	ProjectSummary string `json:"projectSummary"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
}

type certificateView struct {
	ID              uint   `json:"id"`
	CertificateName string `json:"certificateName"`
	Teacher         string `json:"teacher"`
	WhoGave         string `json:"whoGave"`
	IssueDate       string `json:"issueDate"`
}

func newDocumentSummary(d database.Document) documentSummary {
	return documentSummary{
		DocumentID:      d.ExternalID,
		Title:           d.Title,
		Status:          d.Status,
		ThemeColor:      d.ThemeColor,
		Thumbnail:       d.Thumbnail,
		Summary:         d.Summary,
		CurrentPosition: d.CurrentPosition,
		AuthorName:      d.AuthorName,
		AuthorEmail:     d.AuthorEmail,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func newDocumentSummaries(docs []database.Document) []documentSummary {
	out := make([]documentSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, newDocumentSummary(d))
	}
	return out
}

func newDocumentResponse(d *database.Document) documentResponse {
	resp := documentResponse{
		documentSummary: newDocumentSummary(*d),
		Experiences:     make([]experienceView, 0, len(d.Experiences)),
		Educations:      make([]educationView, 0, len(d.Educations)),
		Projects:        make([]projectView, 0, len(d.Projects)),
		Certificates:    make([]certificateView, 0, len(d.Certificates)),
	}

	if p := d.PersonalInfo; p != nil {
		resp.PersonalInfo = &personalInfoView{
			ID:        p.ID,
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
	for _, e := range d.Experiences {
		resp.Experiences = append(resp.Experiences, experienceView{
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
	for _, e := range d.Educations {
		resp.Educations = append(resp.Educations, educationView{
			ID:             e.ID,
			UniversityName: e.UniversityName,
			StartDate:      e.StartDate,
			EndDate:        e.EndDate,
			Degree:         e.Degree,
			Major:          e.Major,
			Description:    e.Description,
		})
	}
	for _, p := range d.Projects {
		resp.Projects = append(resp.Projects, projectView{
			ID:             p.ID,
			ProjectName:    p.ProjectName,
			ProjectSummary: p.ProjectSummary,
			StartDate:      p.StartDate,
			EndDate:        p.EndDate,
		})
	}
	for _, c := range d.Certificates {
		resp.Certificates = append(resp.Certificates, certificateView{
			ID:              c.ID,
			CertificateName: c.CertificateName,
			Teacher:         c.Teacher,
			WhoGave:         c.WhoGave,
			IssueDate:       c.IssueDate,
		})
	}
	return resp
}

// newPublicDocumentResponse is the shared-link view; the author's email stays private.
func newPublicDocumentResponse(d *database.Document) documentResponse {
	resp := newDocumentResponse(d)
	resp.AuthorEmail = ""
	return resp
}
