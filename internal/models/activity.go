package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ActivityTable is the table backing Activity records.
const ActivityTable = "easyaudit_activities"

// Reference points at an entity of any kind by its type tag and identifier.
type Reference struct {
	Type string `json:"type" validate:"required,notblank,max=255"`
	ID   string `json:"id" validate:"required,notblank,max=64"`
}

// NewReference trims both parts and returns nil when either is blank.
func NewReference(typeTag, id string) *Reference {
	typeTag = strings.TrimSpace(typeTag)
	id = strings.TrimSpace(id)
	if typeTag == "" || id == "" {
		return nil
	}
	return &Reference{Type: typeTag, ID: id}
}

// UnmarshalJSON accepts the id as either a JSON string or a JSON number.
func (r *Reference) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type string          `json:"type"`
		ID   json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Type = raw.Type
	r.ID = ""
	if len(raw.ID) == 0 || string(raw.ID) == "null" {
		return nil
	}

	var id string
	if err := json.Unmarshal(raw.ID, &id); err == nil {
		r.ID = id
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(raw.ID, &number); err != nil {
		return fmt.Errorf("reference id must be a string or number")
	}
	r.ID = number.String()
	return nil
}

// String renders the reference as type:id.
func (r Reference) String() string {
	return r.Type + ":" + r.ID
}

// Activity is an immutable audit log entry. CreatedAt may only be written on insert.
type Activity struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Event       string            `gorm:"size:255;not null;index" json:"event"`
	Properties  datatypes.JSONMap `gorm:"type:text" json:"properties"`
	SubjectType *string           `gorm:"size:255;index:idx_easyaudit_subject,priority:1" json:"subject_type"`
	SubjectID   *string           `gorm:"size:64;index:idx_easyaudit_subject,priority:2" json:"subject_id"`
	SourceType  *string           `gorm:"size:255;index:idx_easyaudit_source,priority:1" json:"source_type"`
	SourceID    *string           `gorm:"size:64;index:idx_easyaudit_source,priority:2" json:"source_id"`
	SourceName  *string           `gorm:"size:255" json:"source_name"`
	CreatedAt   time.Time         `gorm:"<-:create;not null;index" json:"created_at"`
}

// TableName overrides the default pluralised table name.
func (Activity) TableName() string {
	return ActivityTable
}

// Subject returns the entity the action was performed on, if any.
func (a Activity) Subject() *Reference {
	return refFromColumns(a.SubjectType, a.SubjectID)
}

// Source returns the actor that performed the action, if known.
func (a Activity) Source() *Reference {
	return refFromColumns(a.SourceType, a.SourceID)
}

// SetSubject stores ref in the subject columns, clearing them when ref is nil.
func (a *Activity) SetSubject(ref *Reference) {
	a.SubjectType, a.SubjectID = refColumns(ref)
}

// SetSource stores ref in the source columns, clearing them when ref is nil.
func (a *Activity) SetSource(ref *Reference) {
	a.SourceType, a.SourceID = refColumns(ref)
}

// ActivityInput is the write-side shape of an activity. Identifier and
// timestamp are assigned by the store and have no place here.
type ActivityInput struct {
	Event      string                 `json:"event" validate:"required,notblank,max=255"`
	Properties map[string]interface{} `json:"properties"`
	Subject    *Reference             `json:"subject" validate:"omitempty"`
	Source     *Reference             `json:"source" validate:"omitempty"`
	SourceName string                 `json:"source_name" validate:"omitempty,max=255"`
}

// NewActivity converts the input into a model ready for insertion. Event and
// source name are kept verbatim; reference halves are trimmed.
func NewActivity(input ActivityInput) Activity {
	activity := Activity{
		Event:      input.Event,
		Properties: datatypes.JSONMap(input.Properties),
	}
	activity.SetSubject(input.Subject)
	activity.SetSource(input.Source)
	if input.SourceName != "" {
		name := input.SourceName
		activity.SourceName = &name
	}
	return activity
}

func refFromColumns(typeTag, id *string) *Reference {
	if typeTag == nil || id == nil {
		return nil
	}
	return &Reference{Type: *typeTag, ID: *id}
}

func refColumns(ref *Reference) (*string, *string) {
	if ref == nil {
		return nil, nil
	}
	normalized := NewReference(ref.Type, ref.ID)
	if normalized == nil {
		return nil, nil
	}
	return &normalized.Type, &normalized.ID
}
