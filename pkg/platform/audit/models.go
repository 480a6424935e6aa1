package audit

import "time"

// EventCategory classifies audit events so sinks can route them.
type EventCategory string

const (
	// CategorySecurity covers authentication outcomes and forced logouts.
	CategorySecurity EventCategory = "security"
	// CategoryAdmin covers mutations an operator performed on backend data.
	CategoryAdmin EventCategory = "admin"
	// CategoryOperations covers routine session activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted by portal services to record operator actions. It stays
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	// ActorID is the backend user id of the operator, empty before login completes.
	ActorID    string `json:"actor_id,omitempty"`
	ActorEmail string `json:"actor_email,omitempty"`
	Action     string `json:"action"`
	// Subject is the entity acted upon (user id, project id, setting id).
	Subject   string `json:"subject,omitempty"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	IP        string `json:"ip,omitempty"`
	Device    string `json:"device,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	// Authentication
	EventLoginSucceeded      AuditEvent = "login_succeeded"
	EventLoginFailed         AuditEvent = "login_failed"
	EventLoginDenied         AuditEvent = "login_denied"
	EventSecondFactorNeeded  AuditEvent = "second_factor_required"
	EventSecondFactorPassed  AuditEvent = "second_factor_verified"
	EventSecondFactorFailed  AuditEvent = "second_factor_failed"
	EventEmailCodeSent       AuditEvent = "email_code_sent"
	EventLoggedOut           AuditEvent = "logged_out"
	EventForcedLogout        AuditEvent = "forced_logout"
	EventSessionExpired      AuditEvent = "session_expired"
	EventTwoFactorEnabled    AuditEvent = "two_factor_enabled"
	EventTwoFactorDisabled   AuditEvent = "two_factor_disabled"
	EventTwoFactorSetupBegun AuditEvent = "two_factor_setup_started"

	// Administration
	EventUserStatusToggled AuditEvent = "user_status_toggled"
	EventUserDeleted       AuditEvent = "user_deleted"
	EventProjectUpdated    AuditEvent = "project_updated"
	EventProjectDeleted    AuditEvent = "project_deleted"
	EventSettingCreated    AuditEvent = "setting_created"
	EventSettingUpdated    AuditEvent = "setting_updated"
	EventSettingToggled    AuditEvent = "setting_toggled"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventLoginSucceeded:     CategorySecurity,
	EventLoginFailed:        CategorySecurity,
	EventLoginDenied:        CategorySecurity,
	EventSecondFactorPassed: CategorySecurity,
	EventSecondFactorFailed: CategorySecurity,
	EventForcedLogout:       CategorySecurity,
	EventTwoFactorEnabled:   CategorySecurity,
	EventTwoFactorDisabled:  CategorySecurity,

	EventUserStatusToggled: CategoryAdmin,
	EventUserDeleted:       CategoryAdmin,
	EventProjectUpdated:    CategoryAdmin,
	EventProjectDeleted:    CategoryAdmin,
	EventSettingCreated:    CategoryAdmin,
	EventSettingUpdated:    CategoryAdmin,
	EventSettingToggled:    CategoryAdmin,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
