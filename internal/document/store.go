// Package document owns resume documents: the owner-scoped document store and
// the save path that reconciles the four child collections against stored rows.
package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kemalcalak/Resume-Builder/internal/database"
)

// DefaultThemeColor is applied to newly created documents.
const DefaultThemeColor = "#e11d48"

// Owner is the resolved caller identity.
type Owner struct {
	ID    string
	Name  string
	Email string
}

// Store reads and writes documents. Every authenticated lookup carries the
// owner predicate in its WHERE clause.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewStore constructs a Store.
func NewStore(db *gorm.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// NewExternalID returns a fresh opaque document identifier such as doc-3f2a9c0d1b7e4a55.
func NewExternalID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "doc-" + raw[:16]
}

// ValidStatus reports whether status is one of the document statuses.
func ValidStatus(status string) bool {
	switch status {
	case database.StatusPrivate, database.StatusPublic, database.StatusArchived:
		return true
	}
	return false
}

// CreateDocument allocates a private document with default theme and wizard step 1.
func (s *Store) CreateDocument(ctx context.Context, owner Owner, title string) (*database.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title", "title is required")
	}
	if strings.TrimSpace(owner.ID) == "" {
		return nil, errors.New("owner id is required")
	}

	doc := database.Document{
		ExternalID:      NewExternalID(),
		OwnerID:         owner.ID,
		AuthorName:      owner.Name,
		AuthorEmail:     owner.Email,
		Title:           title,
		Status:          database.StatusPrivate,
		ThemeColor:      DefaultThemeColor,
		CurrentPosition: 1,
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return &doc, nil
}

// GetDocument returns the owner's document with personal info and all four collections.
func (s *Store) GetDocument(ctx context.Context, ownerID, externalID string) (*database.Document, error) {
	return s.loadTree(ctx, "external_id = ? AND owner_id = ?", externalID, ownerID)
}

// GetDocumentByID is the internal-key variant of GetDocument, used by the export worker.
func (s *Store) GetDocumentByID(ctx context.Context, ownerID string, id uint) (*database.Document, error) {
	return s.loadTree(ctx, "id = ? AND owner_id = ?", id, ownerID)
}

// GetPublicDocument returns a document only when its status is public. No owner check.
func (s *Store) GetPublicDocument(ctx context.Context, externalID string) (*database.Document, error) {
	return s.loadTree(ctx, "external_id = ? AND status = ?", externalID, database.StatusPublic)
}

// ListDocuments returns the owner's documents, most recently updated first,
// leaving out excludeStatus when it is non-empty.
func (s *Store) ListDocuments(ctx context.Context, ownerID, excludeStatus string) ([]database.Document, error) {
	query := s.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if excludeStatus != "" {
		query = query.Where("status <> ?", excludeStatus)
	}

	var docs []database.Document
	if err := query.Order("updated_at DESC").Order("id DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// ListTrash returns only the owner's archived documents.
func (s *Store) ListTrash(ctx context.Context, ownerID string) ([]database.Document, error) {
	var docs []database.Document
	if err := s.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, database.StatusArchived).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list trash: %w", err)
	}
	return docs, nil
}

// SetStatus moves a document from one status to another in a single conditional
// UPDATE. A document that is missing, foreign, or not currently in from yields ErrNotFound.
func (s *Store) SetStatus(ctx context.Context, ownerID, externalID, from, to string) (*database.Document, error) {
	if !ValidStatus(from) {
		return nil, NewValidationError("from", "unknown status")
	}
	if !ValidStatus(to) {
		return nil, NewValidationError("status", "unknown status")
	}

	db := s.db.WithContext(ctx)
	res := db.Model(&database.Document{}).
		Where("external_id = ? AND owner_id = ? AND status = ?", externalID, ownerID, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, fmt.Errorf("update document status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var doc database.Document
	if err := db.Where("external_id = ? AND owner_id = ?", externalID, ownerID).First(&doc).Error; err != nil {
		return nil, fmt.Errorf("reload document: %w", err)
	}
	return &doc, nil
}

func (s *Store) loadTree(ctx context.Context, query string, args ...any) (*database.Document, error) {
	byID := func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }

	var doc database.Document
	err := s.db.WithContext(ctx).
		Preload("PersonalInfo").
		Preload("Experiences", byID).
		Preload("Educations", byID).
		Preload("Projects", byID).
		Preload("Certificates", byID).
		Where(query, args...).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load document: %w", err)
	}
	return &doc, nil
}
