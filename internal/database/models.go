package database

import (
	"time"

	"gorm.io/datatypes"
)

// Document status values.
const (
	StatusPrivate  = "private"
	StatusPublic   = "public"
	StatusArchived = "archived"
)

// Export status values.
const (
	ExportQueued    = "queued"
	ExportCompleted = "completed"
	ExportFailed    = "failed"
)

// Document is the top-level resume record owned by one identity.
// Archiving replaces deletion, so the model carries no soft-delete column.
type Document struct {
	ID              uint   `gorm:"primaryKey"`
	ExternalID      string `gorm:"uniqueIndex;size:32;not null"`
	OwnerID         string `gorm:"index;size:255;not null"`
	AuthorName      string `gorm:"size:255"`
	AuthorEmail     string `gorm:"size:255"`
	Title           string `gorm:"size:255;not null"`
	Status          string `gorm:"size:16;not null;default:private;index"`
	ThemeColor      string `gorm:"size:32"`
	Summary         string `gorm:"type:text"`
	Thumbnail       string `gorm:"type:text"`
	CurrentPosition int    `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	PersonalInfo *PersonalInfo `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
	Experiences  []Experience  `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
	Educations   []Education   `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
	Projects     []Project     `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
	Certificates []Certificate `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// PersonalInfo holds the contact block, at most one per document.
type PersonalInfo struct {
	ID         uint   `gorm:"primaryKey"`
	DocumentID uint   `gorm:"uniqueIndex;not null"`
	FirstName  string `gorm:"size:255"`
	LastName   string `gorm:"size:255"`
	JobTitle   string `gorm:"size:255"`
	Address    string `gorm:"size:500"`
	Phone      string `gorm:"size:50"`
	Email      string `gorm:"size:255"`
	Website    string `gorm:"size:255"`
	Linkedin   string `gorm:"size:255"`
	Github     string `gorm:"size:255"`
	Medium     string `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Experience is one work history entry.
type Experience struct {
	ID               uint   `gorm:"primaryKey"`
	DocumentID       uint   `gorm:"index;not null"`
	Title            string `gorm:"size:255"`
	CompanyName      string `gorm:"size:255"`
	City             string `gorm:"size:255"`
	State            string `gorm:"size:255"`
	StartDate        string `gorm:"size:32"`
	EndDate          string `gorm:"size:32"`
	CurrentlyWorking bool   `gorm:"not null;default:false"`
	WorkSummary      string `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Education is one school entry.
type Education struct {
	ID             uint   `gorm:"primaryKey"`
	DocumentID     uint   `gorm:"index;not null"`
	UniversityName string `gorm:"size:255"`
	StartDate      string `gorm:"size:32"`
	EndDate        string `gorm:"size:32"`
	Degree         string `gorm:"size:255"`
	Major          string `gorm:"size:255"`
	Description    string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Project is one portfolio entry.
type Project struct {
	ID             uint   `gorm:"primaryKey"`
	DocumentID     uint   `gorm:"index;not null"`
	ProjectName    string `gorm:"size:255"`
	ProjectSummary string `gorm:"type:text"`
	StartDate      string `gorm:"size:32"`
	EndDate        string `gorm:"size:32"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Certificate is one certification entry.
type Certificate struct {
	ID              uint   `gorm:"primaryKey"`
	DocumentID      uint   `gorm:"index;not null"`
	CertificateName string `gorm:"size:255"`
	Teacher         string `gorm:"size:255"`
	WhoGave         string `gorm:"size:255"`
	IssueDate       string `gorm:"size:32"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Export tracks one asynchronous PDF export of a document.
type Export struct {
	ID         uint              `gorm:"primaryKey"`
	DocumentID uint              `gorm:"index;not null"`
	Document   Document          `gorm:"constraint:OnDelete:CASCADE"`
	OwnerID    string            `gorm:"index;size:255;not null"`
	Status     string            `gorm:"size:16;not null;default:queued"`
	TaskID     string            `gorm:"size:64"`
	ObjectKey  string            `gorm:"size:512"`
	Meta       datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Models lists every table for AutoMigrate, parents first.
func Models() []any {
	return []any{
		&Document{},
		&PersonalInfo{},
		&Experience{},
		&Education{},
		&Project{},
		&Certificate{},
		&Export{},
	}
}
