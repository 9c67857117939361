package document

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/kemalcalak/Resume-Builder/internal/database"
)

// Result counts what one collection reconciliation wrote.
type Result struct {
	Collection string
	Inserted   int
	Updated    int
	Deleted    int
	// Stale counts submitted ids that were unknown or repeated and got inserted as new rows.
	Stale int
}

// collection describes how to diff one child table by id.
type collection[T any] struct {
	name   string
	id     func(*T) uint
	bind   func(*T, uint)
	fields func(*T) map[string]any
}

// reconcile makes the rows of one collection equal to submitted: kept ids are
// updated in place, new entries inserted, and rows not resubmitted deleted.
func reconcile[T any](tx *gorm.DB, logger *slog.Logger, docID uint, c collection[T], submitted []T) (Result, error) {
	res := Result{Collection: c.name}

	var current []T
	if err := tx.Where("document_id = ?", docID).Order("id ASC").Find(&current).Error; err != nil {
		return res, fmt.Errorf("load %s: %w", c.name, err)
	}

	known := make(map[uint]struct{}, len(current))
	for i := range current {
		known[c.id(&current[i])] = struct{}{}
	}

	kept := make(map[uint]struct{}, len(submitted))
	for i := range submitted {
		entry := submitted[i]
		id := c.id(&entry)

		if _, ok := known[id]; ok && id != 0 {
			if _, dup := kept[id]; !dup {
				if err := tx.Model(new(T)).
					Where("id = ? AND document_id = ?", id, docID).
					Updates(c.fields(&entry)).Error; err != nil {
					return res, fmt.Errorf("update %s %d: %w", c.name, id, err)
				}
				kept[id] = struct{}{}
				res.Updated++
				continue
			}
		}

		if id != 0 {
			logger.Warn("stale child id inserted as new row",
				slog.String("collection", c.name),
				slog.Uint64("document_id", uint64(docID)),
				slog.Uint64("submitted_id", uint64(id)),
			)
			res.Stale++
		}

		c.bind(&entry, docID)
		if err := tx.Create(&entry).Error; err != nil {
			return res, fmt.Errorf("insert %s: %w", c.name, err)
		}
		res.Inserted++
	}

	var obsolete []uint
	for i := range current {
		id := c.id(&current[i])
		if _, ok := kept[id]; !ok {
			obsolete = append(obsolete, id)
		}
	}
	if len(obsolete) > 0 {
		if err := tx.Where("document_id = ? AND id IN ?", docID, obsolete).Delete(new(T)).Error; err != nil {
			return res, fmt.Errorf("delete %s: %w", c.name, err)
		}
		res.Deleted = len(obsolete)
	}

	return res, nil
}

var experiences = collection[database.Experience]{
	name: "experience",
	id:   func(e *database.Experience) uint { return e.ID },
	bind: func(e *database.Experience, docID uint) { e.ID, e.DocumentID = 0, docID },
	fields: func(e *database.Experience) map[string]any {
		return map[string]any{
			"title":             e.Title,
			"company_name":      e.CompanyName,
			"city":              e.City,
			"state":             e.State,
			"start_date":        e.StartDate,
			"end_date":          e.EndDate,
			"currently_working": e.CurrentlyWorking,
			"work_summary":      e.WorkSummary,
		}
	},
}

var educations = collection[database.Education]{
	name: "education",
	id:   func(e *database.Education) uint { return e.ID },
	bind: func(e *database.Education, docID uint) { e.ID, e.DocumentID = 0, docID },
	fields: func(e *database.Education) map[string]any {
		return map[string]any{
			"university_name": e.UniversityName,
			"start_date":      e.StartDate,
			"end_date":        e.EndDate,
			"degree":          e.Degree,
			"major":           e.Major,
			"description":     e.Description,
		}
	},
}

var projects = collection[database.Project]{
	name: "project",
	id:   func(p *database.Project) uint { return p.ID },
	bind: func(p *database.Project, docID uint) { p.ID, p.DocumentID = 0, docID },
	fields: func(p *database.Project) map[string]any {
		return map[string]any{
			"project_name":    p.ProjectName,
			"project_summary": p.ProjectSummary,
			"start_date":      p.StartDate,
			"end_date":        p.EndDate,
		}
	},
}

var certificates = collection[database.Certificate]{
	name: "certificate",
	id:   func(c *database.Certificate) uint { return c.ID },
	bind: func(c *database.Certificate, docID uint) { c.ID, c.DocumentID = 0, docID },
	fields: func(c *database.Certificate) map[string]any {
		return map[string]any{
			"certificate_name": c.CertificateName,
			"teacher":          c.Teacher,
			"who_gave":         c.WhoGave,
			"issue_date":       c.IssueDate,
		}
	},
}
