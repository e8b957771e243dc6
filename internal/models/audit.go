package models

import "time"

// Audit actions.
const (
	ActionCreate  = "Create"
	ActionUpdate  = "Update"
	ActionDelete  = "Delete"
	ActionLogin   = "Login"
	ActionLogout  = "Logout"
	ActionPublish = "Publish"
)

// Audited entity names.
const (
	EntityUser         = "User"
	EntityRole         = "Role"
	EntityContent      = "Content"
	EntityMedia        = "Media"
	EntitySession      = "Session"
	EntityNotification = "Notification"
)

type AuditLog struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entityId"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
}

// Notification is a broadcast entry derived from audit activity, shown in the
// console header. Read state is tracked per notification.
type Notification struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entityId"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
	IsRead    bool      `json:"isRead"`
}
