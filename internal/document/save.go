package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kemalcalak/Resume-Builder/internal/database"
	"github.com/kemalcalak/Resume-Builder/internal/metrics"
)

const isoDate = "2006-01-02"

// PersonalInfoPatch is the sparse contact block of a save. Nil fields are left untouched.
type PersonalInfoPatch struct {
	FirstName *string
	LastName  *string
	JobTitle  *string
	Address   *string
	Phone     *string
	Email     *string
	Website   *string
	Linkedin  *string
	Github    *string
	Medium    *string
}

// SaveRequest is one sparse save of a document.
//
// Scalars are pointers: nil means not submitted. Collections follow the same
// rule at slice level, so a nil slice leaves the collection alone while an
// empty non-nil slice clears it. Entry IDs refer to existing child rows.
type SaveRequest struct {
	Title           *string
	Status          *string
	Summary         *string
	ThemeColor      *string
	Thumbnail       *string
	CurrentPosition *int

	PersonalInfo *PersonalInfoPatch

	Experiences  []database.Experience
	Educations   []database.Education
	Projects     []database.Project
	Certificates []database.Certificate
}

// SaveResult reports the per collection counts of a committed save.
type SaveResult struct {
	Collections []Result
}

// Validate checks the request shape before any transaction is opened.
func (r *SaveRequest) Validate() error {
	verr := &ValidationError{}

	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		verr.add("title", "title must not be empty")
	}
	if r.Status != nil && !ValidStatus(*r.Status) {
		verr.add("status", "status must be one of private, public, archived")
	}
	if r.CurrentPosition != nil && *r.CurrentPosition < 1 {
		verr.add("currentPosition", "currentPosition must be at least 1")
	}

	for i, e := range r.Experiences {
		checkRange(verr, fmt.Sprintf("experience[%d]", i), e.StartDate, e.EndDate)
	}
	for i, e := range r.Educations {
		checkRange(verr, fmt.Sprintf("education[%d]", i), e.StartDate, e.EndDate)
	}
	for i, p := range r.Projects {
		checkRange(verr, fmt.Sprintf("project[%d]", i), p.StartDate, p.EndDate)
	}

	return verr.orNil()
}

// checkRange only compares dates that are both in YYYY-MM-DD form; free-form
// values such as "Feb 2022" are stored as given.
func checkRange(verr *ValidationError, prefix, start, end string) {
	s, errS := time.Parse(isoDate, start)
	e, errE := time.Parse(isoDate, end)
	if errS != nil || errE != nil {
		return
	}
	if e.Before(s) {
		verr.add(prefix+".endDate", "endDate must not be before startDate")
	}
}

// Save applies req to the owner's document in a single transaction. The
// document row is locked for the duration, so concurrent saves serialize and
// the last committed one wins. On any error nothing is applied.
func (s *Store) Save(ctx context.Context, ownerID, externalID string, req SaveRequest) (*SaveResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger := s.logger.With(slog.String("document_id", externalID))
	result := &SaveResult{}

	// A save that has reached the database runs to commit or rollback even if the client goes away.
	err := s.db.WithContext(context.WithoutCancel(ctx)).Transaction(func(tx *gorm.DB) error {
		var doc database.Document
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_id = ? AND owner_id = ?", externalID, ownerID).
			First(&doc).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("lock document: %w", err)
		}

		if err := tx.Model(&doc).Updates(req.scalarUpdates()).Error; err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		if err := savePersonalInfo(tx, doc.ID, req.PersonalInfo); err != nil {
			return err
		}

		if req.Experiences != nil {
			res, err := reconcile(tx, logger, doc.ID, experiences, req.Experiences)
			if err != nil {
				return err
			}
			result.Collections = append(result.Collections, res)
		}
		if req.Educations != nil {
			res, err := reconcile(tx, logger, doc.ID, educations, req.Educations)
			if err != nil {
				return err
			}
			result.Collections = append(result.Collections, res)
		}
		if req.Projects != nil {
			res, err := reconcile(tx, logger, doc.ID, projects, req.Projects)
			if err != nil {
				return err
			}
			result.Collections = append(result.Collections, res)
		}
		if req.Certificates != nil {
			res, err := reconcile(tx, logger, doc.ID, certificates, req.Certificates)
			if err != nil {
				return err
			}
			result.Collections = append(result.Collections, res)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.ObserveSave("not_found")
			return nil, ErrNotFound
		}
		metrics.ObserveSave("failed")
		logger.Error("document save rolled back", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}

	metrics.ObserveSave("committed")
	for _, r := range result.Collections {
		metrics.ObserveReconcile(r.Collection, r.Inserted, r.Updated, r.Deleted, r.Stale)
	}
	return result, nil
}

func (r *SaveRequest) scalarUpdates() map[string]any {
	updates := map[string]any{"updated_at": time.Now()}
	if r.Title != nil {
		updates["title"] = strings.TrimSpace(*r.Title)
	}
	if r.Status != nil {
		updates["status"] = *r.Status
	}
	if r.Summary != nil {
		updates["summary"] = *r.Summary
	}
	if r.ThemeColor != nil {
		updates["theme_color"] = *r.ThemeColor
	}
	if r.Thumbnail != nil {
		updates["thumbnail"] = *r.Thumbnail
	}
	if r.CurrentPosition != nil {
		updates["current_position"] = *r.CurrentPosition
	}
	return updates
}

func (p *PersonalInfoPatch) fields() map[string]any {
	out := map[string]any{}
	set := func(column string, v *string) {
		if v != nil {
			out[column] = *v
		}
	}
	set("first_name", p.FirstName)
	set("last_name", p.LastName)
	set("job_title", p.JobTitle)
	set("address", p.Address)
	set("phone", p.Phone)
	set("email", p.Email)
	set("website", p.Website)
	set("linkedin", p.Linkedin)
	set("github", p.Github)
	set("medium", p.Medium)
	return out
}

func (p *PersonalInfoPatch) named() bool {
	nonEmpty := func(v *string) bool { return v != nil && strings.TrimSpace(*v) != "" }
	return nonEmpty(p.FirstName) || nonEmpty(p.LastName)
}

func savePersonalInfo(tx *gorm.DB, docID uint, patch *PersonalInfoPatch) error {
	if patch == nil || !patch.named() {
		return nil
	}

	var existing database.PersonalInfo
	err := tx.Where("document_id = ?", docID).Limit(1).Find(&existing).Error
	if err != nil {
		return fmt.Errorf("load personal info: %w", err)
	}

	if existing.ID != 0 {
		if err := tx.Model(&existing).Updates(patch.fields()).Error; err != nil {
			return fmt.Errorf("update personal info: %w", err)
		}
		return nil
	}

	info := database.PersonalInfo{DocumentID: docID}
	str := func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	}
	info.FirstName = str(patch.FirstName)
	info.LastName = str(patch.LastName)
	info.JobTitle = str(patch.JobTitle)
	info.Address = str(patch.Address)
	info.Phone = str(patch.Phone)
	info.Email = str(patch.Email)
	info.Website = str(patch.Website)
	info.Linkedin = str(patch.Linkedin)
	info.Github = str(patch.Github)
	info.Medium = str(patch.Medium)
	if err := tx.Create(&info).Error; err != nil {
		return fmt.Errorf("insert personal info: %w", err)
	}
	return nil
}
