package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User represents a local user account
type User struct {
	BaseModel
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	FullName     string    `json:"full_name"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	IsSuperuser  bool      `json:"is_superuser" gorm:"not null;default:false"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Item represents a simple user-owned record
type Item struct {
	BaseModel
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id" gorm:"not null;index"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Owner *User `json:"-" gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE"`
}

// Project represents a workspace that documents and conversations belong to
type Project struct {
	BaseModel
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id" gorm:"not null;index"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Owner         *User          `json:"-" gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE"`
	Documents     []Document     `json:"documents,omitempty" gorm:"foreignKey:ProjectID"`
	Conversations []Conversation `json:"conversations,omitempty" gorm:"foreignKey:ProjectID"`
}

// Document processing states
const (
	DocumentStatusPending    = "pending"
	DocumentStatusProcessing = "processing"
	DocumentStatusCompleted  = "completed"
	DocumentStatusFailed     = "failed"
)

// Document represents an uploaded file attached to a project.
// Processing happens asynchronously; Status tracks the pipeline state.
type Document struct {
	BaseModel
	ProjectID   string     `json:"project_id" gorm:"not null;index"`
	Filename    string     `json:"filename" gorm:"not null"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes" gorm:"not null"`
	StoragePath string     `json:"-" gorm:"not null"`
	Status      string     `json:"status" gorm:"not null;default:pending;index"`
	ChunkCount  int        `json:"chunk_count" gorm:"not null;default:0"`
	Error       string     `json:"error,omitempty"`
	ProcessedAt *time.Time `json:"processed_at"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Project *Project `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}

// Conversation represents a chat thread scoped to a project
type Conversation struct {
	BaseModel
	ProjectID string    `json:"project_id" gorm:"not null;index"`
	UserID    string    `json:"user_id" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Project  *Project  `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	Messages []Message `json:"messages,omitempty" gorm:"foreignKey:ConversationID"`
}

// Message roles
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Message represents a single chat message within a conversation
type Message struct {
	BaseModel
	ConversationID string `json:"conversation_id" gorm:"not null;index"`
	Role           string `json:"role" gorm:"not null"`
	Content        string `json:"content" gorm:"not null"`

	// Relationships
	Conversation *Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID;constraint:OnDelete:CASCADE"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&User{}, &Item{}, &Project{}, &Document{}, &Conversation{}, &Message{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
