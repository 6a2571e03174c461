package notifications

import (
	"maps"
	"slices"
)

// Kind is the catalog key of a notification, e.g. "application_approved".
type Kind string

const (
	KindApplicationSubmitted Kind = "application_submitted"
	KindApplicationApproved  Kind = "application_approved"
	KindApplicationRejected  Kind = "application_rejected"
	KindInterviewScheduled   Kind = "interview_scheduled"
	KindInterviewReminder    Kind = "interview_reminder"
	KindOfferReceived        Kind = "offer_received"
	KindCertificateGenerated Kind = "certificate_generated"
	KindAISuggestion         Kind = "ai_suggestion"
	KindDeadlineReminder     Kind = "deadline_reminder"
	KindSeatAlert            Kind = "seat_alert"
	KindStatusUpdate         Kind = "status_update"
	KindMentorFeedback       Kind = "mentor_feedback"
)

// Type is the category tag used for filtering and statistics.
type Type string

const (
	TypeApplication  Type = "application"
	TypeInterview    Type = "interview"
	TypeApproval     Type = "approval"
	TypeRejection    Type = "rejection"
	TypeCertificate  Type = "certificate"
	TypeAISuggestion Type = "ai_suggestion"
	TypeReminder     Type = "reminder"
	TypeUpdate       Type = "update"
)

// Types lists every category tag.
func Types() []Type {
	return []Type{
		TypeApplication, TypeInterview, TypeApproval, TypeRejection,
		TypeCertificate, TypeAISuggestion, TypeReminder, TypeUpdate,
	}
}

// Priority of a notification.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every priority, highest first.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// Rank orders priorities: high > medium > low > unknown.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Sound is the audio contour played when a notification is shown as a toast.
type Sound string

const (
	SoundNotification Sound = "notification"
	SoundSuccess      Sound = "success"
	SoundAlert        Sound = "alert"
	SoundError        Sound = "error"
)

// Role is the persona a template is written for.
type Role string

const (
	RoleStudent   Role = "student"
	RoleMentor    Role = "mentor"
	RolePlacement Role = "placement"
	RoleAdmin     Role = "admin"
)

// DefaultRole is used when a payload does not say who the recipient is.
const DefaultRole = RoleStudent

// Metadata describes how a notification kind is classified and presented.
type Metadata struct {
	Type     Type     `json:"type"`
	Category string   `json:"category"`
	Priority Priority `json:"priority"`
	Icon     string   `json:"icon"`
	Sound    Sound    `json:"sound"`
}

// Content is the human-readable part produced by a template.
type Content struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	ActionURL  string `json:"actionUrl,omitempty"`
	ActionText string `json:"actionText,omitempty"`
}

// TemplateFunc renders Content from an event payload. It must be pure.
type TemplateFunc func(data Data) Content

// Templates maps role, then kind, to a template.
type Templates map[Role]map[Kind]TemplateFunc

// Catalog is an immutable registry of notification kinds and their per-role templates.
type Catalog struct {
	metadata  map[Kind]Metadata
	templates Templates
}

// NewCatalog copies the given tables into a new Catalog.
func NewCatalog(metadata map[Kind]Metadata, templates Templates) *Catalog {
	c := &Catalog{
		metadata:  maps.Clone(metadata),
		templates: make(Templates, len(templates)),
	}
	for role, byKind := range templates {
		c.templates[role] = maps.Clone(byKind)
	}
	return c
}

var defaultCatalog = NewCatalog(defaultMetadata, defaultTemplates)

// DefaultCatalog returns the built-in internship catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// MetadataFor returns the metadata of kind, if the kind is registered.
func (c *Catalog) MetadataFor(kind Kind) (Metadata, bool) {
	m, ok := c.metadata[kind]
	return m, ok
}

// TemplateFor renders the template registered for (role, kind).
// The boolean is false when the role cannot receive this kind.
func (c *Catalog) TemplateFor(role Role, kind Kind, data Data) (Content, bool) {
	fn, ok := c.templates[role][kind]
	if !ok || fn == nil {
		return Content{}, false
	}
	return fn(data), true
}

// Kinds returns every registered kind in lexical order.
func (c *Catalog) Kinds() []Kind {
	return slices.Sorted(maps.Keys(c.metadata))
}

// RolesFor returns the roles that have a template for kind, in lexical order.
func (c *Catalog) RolesFor(kind Kind) []Role {
	var roles []Role
	for role, byKind := range c.templates {
		if _, ok := byKind[kind]; ok {
			roles = append(roles, role)
		}
	}
	slices.Sort(roles)
	return roles
}

// MetadataFor looks kind up in the default catalog.
func MetadataFor(kind Kind) (Metadata, bool) {
	return defaultCatalog.MetadataFor(kind)
}

// TemplateFor renders (role, kind) from the default catalog.
func TemplateFor(role Role, kind Kind, data Data) (Content, bool) {
	return defaultCatalog.TemplateFor(role, kind, data)
}
