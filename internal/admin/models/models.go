// Package models holds the backend's user and project records as the portal
// reads them. Timestamps stay strings: the backend's formats vary.
package models

import (
	"encoding/json"
	"net/url"
	"strconv"
)

type User struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Phone        *string       `json:"phone"`
	IsAdmin      bool          `json:"is_admin"`
	IsSuperAdmin bool          `json:"is_super_admin"`
	IsActive     bool          `json:"is_active"`
	IsVerified   bool          `json:"is_verified"`
	LastLoginAt  *string       `json:"last_login_at"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
	Projects     []UserProject `json:"projects,omitempty"`
}

// UserProject is a project the user owns or belongs to.
type UserProject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
	Type string `json:"type"`
}

// Page is the backend's paginated list envelope.
type Page[T any] struct {
	Count      int `json:"count"`
	Page       int `json:"page"`
	Items      []T `json:"items"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// HasPrev and HasNext drive the pager links.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

// Project statuses the portal can set.
const (
	StatusActive    = "Active"
	StatusSuspended = "Suspended"
)

type Project struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Slug               string          `json:"slug"`
	Description        *string         `json:"description"`
	ImagePath          *string         `json:"image_path"`
	Status             string          `json:"status"`
	IsActive           bool            `json:"is_active"`
	IsDeleted          bool            `json:"is_deleted"`
	IsPremium          bool            `json:"is_premium"`
	ProjectShareCode   *string         `json:"project_share_code"`
	ProjectShareActive bool            `json:"project_share_active"`
	Settings           json.RawMessage `json:"settings,omitempty"`
	CreatedBy          Creator         `json:"created_by"`
	DeletedAt          *string         `json:"deleted_at"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
	UsersCount         int             `json:"users_count"`
	MembersCount       int             `json:"members_count"`
}

// Creator is either an embedded user object or a bare id.
type Creator struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (c *Creator) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		c.ID = id
		return nil
	}
	type plain Creator
	return json.Unmarshal(data, (*plain)(c))
}

// Label is what the detail page shows for the creator.
func (c Creator) Label() string {
	switch {
	case c.Name != "" && c.Email != "":
		return c.Name + " (" + c.Email + ")"
	case c.Name != "":
		return c.Name
	default:
		return c.ID
	}
}

type ProjectUser struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Email               string  `json:"email"`
	Phone               *string `json:"phone"`
	ProjectUserID       string  `json:"project_user_id,omitempty"`
	ProjectUserNote     *string `json:"project_user_note,omitempty"`
	ProjectUserIsActive bool    `json:"project_user_is_active,omitempty"`
	CreatedAt           string  `json:"created_at,omitempty"`
}

// Ref is a nested {id, name, email} reference.
type Ref struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type Member struct {
	ID               string  `json:"id"`
	Name             string  `json:"name,omitempty"`
	Email            string  `json:"email,omitempty"`
	InvitationStatus string  `json:"invitation_status,omitempty"`
	JoinedAt         *string `json:"joined_at,omitempty"`
	CreatedAt        string  `json:"created_at,omitempty"`
	User             *Ref    `json:"user,omitempty"`
}

// DisplayName falls back to the linked user.
func (m Member) DisplayName() string {
	if m.Name == "" && m.User != nil {
		return m.User.Name
	}
	return m.Name
}

type Vendor struct {
	ID               string  `json:"id"`
	BusinessName     string  `json:"business_name,omitempty"`
	BusinessEmail    *string `json:"business_email,omitempty"`
	InvitationStatus string  `json:"invitation_status,omitempty"`
	CreatedAt        string  `json:"created_at,omitempty"`
	User             *Ref    `json:"user,omitempty"`
	VendorType       *Ref    `json:"vendor_type,omitempty"`
}

type Property struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name,omitempty"`
	PropertyCode        string   `json:"property_code,omitempty"`
	PropertyValueType   string   `json:"property_value_type,omitempty"`
	PercentageOfProject *float64 `json:"percentage_of_project,omitempty"`
	FixedValue          *float64 `json:"fixed_value,omitempty"`
	CreatedAt           string   `json:"created_at,omitempty"`
}

type DepositSchedule struct {
	ID          string  `json:"id"`
	Name        string  `json:"name,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	StartDate   string  `json:"start_date,omitempty"`
	EndDate     string  `json:"end_date,omitempty"`
	DepositType *Ref    `json:"deposit_type,omitempty"`
}

type Notice struct {
	ID         string  `json:"id"`
	Title      string  `json:"title,omitempty"`
	Importance *string `json:"importance,omitempty"`
	IsPinned   bool    `json:"is_pinned,omitempty"`
	CreatedAt  string  `json:"created_at,omitempty"`
	Creator    *Ref    `json:"creator,omitempty"`
}

type File struct {
	ID        string  `json:"id"`
	Name      string  `json:"name,omitempty"`
	Path      string  `json:"path,omitempty"`
	Size      int64   `json:"size,omitempty"`
	MimeType  *string `json:"mime_type,omitempty"`
	IsFolder  bool    `json:"is_folder,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// ProjectDetail is everything the project page shows. Sub-resource lists
// that failed to load are left empty.
type ProjectDetail struct {
	Project          Project
	Users            []ProjectUser
	Members          []Member
	Vendors          []Vendor
	Properties       []Property
	DepositSchedules []DepositSchedule
	Notices          []Notice
	Files            []File
}

// ListQuery holds list filters, sorting and paging.
type ListQuery struct {
	Page     int
	Limit    int
	Sort     string
	Order    string
	Search   string
	Role     string
	Status   string
	IsActive string
}

// Values encodes the query for the backend; empty filters are omitted.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("sort", q.Sort)
	v.Set("order", q.Order)
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Role != "" {
		v.Set("role", q.Role)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.IsActive != "" {
		v.Set("is_active", q.IsActive)
	}
	return v
}
