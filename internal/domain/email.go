package domain

import "time"

// TemplateType is the phishing template category an email was generated from.
type TemplateType string

const (
	TemplateUrgentAction   TemplateType = "urgent_action"
	TemplateSecurityAlert  TemplateType = "security_alert"
	TemplatePasswordExpiry TemplateType = "password_expiry"
	TemplateSystemUpdate   TemplateType = "system_update"

	// TemplateOther collects any category outside the known enumeration.
	TemplateOther TemplateType = "other"
)

// KnownTemplates lists the enumerated template categories in display order.
var KnownTemplates = []TemplateType{
	TemplateUrgentAction,
	TemplateSecurityAlert,
	TemplatePasswordExpiry,
	TemplateSystemUpdate,
}

var templateLabels = map[TemplateType]string{
	TemplateUrgentAction:   "Urgent Action",
	TemplateSecurityAlert:  "Security Alert",
	TemplatePasswordExpiry: "Password Expiry",
	TemplateSystemUpdate:   "System Update",
	TemplateOther:          "Other",
}

// ParseTemplateType maps a raw category string to a TemplateType. Empty and
// unrecognized values map to TemplateOther.
func ParseTemplateType(s string) TemplateType {
	t := TemplateType(s)
	if _, ok := templateLabels[t]; ok {
		return t
	}
	return TemplateOther
}

// Label returns the human readable name of the category.
func (t TemplateType) Label() string {
	if l, ok := templateLabels[t]; ok {
		return l
	}
	return templateLabels[TemplateOther]
}

// IsKnown reports whether t is one of the enumerated categories.
func (t TemplateType) IsKnown() bool {
	return t != TemplateOther && templateLabels[t] != ""
}

// EmailLog records one simulated phishing email sent to a user.
// Clicked and Responded only ever move from false to true.
type EmailLog struct {
	ID           int64        `json:"id"`
	UserID       int64        `json:"user_id"`
	UserName     string       `json:"user_name"`
	Subject      string       `json:"subject"`
	TemplateType TemplateType `json:"template_type"`
	SentAt       time.Time    `json:"sent_at"`
	Clicked      bool         `json:"clicked"`
	ClickedAt    *time.Time   `json:"clicked_at,omitempty"`
	Responded    bool         `json:"responded"`
	RespondedAt  *time.Time   `json:"responded_at,omitempty"`
}

// EmailLogFilter narrows an email log listing. Zero values mean "unset".
type EmailLogFilter struct {
	UserID       int64
	DepartmentID int64
}
