package model

import (
	"encoding/json"
	"time"
)

// JSONUnmarshal is a helper for JSON unmarshal.
func JSONUnmarshal(data []byte, out interface{}) error {
	return json.Unmarshal(data, out)
}

// ----------------------------------------------------------------------
// Authentication
// ----------------------------------------------------------------------

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is what the API returns on a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresIn ExpiresIn `json:"expiresIn"`
}

// ExpiresIn is a session lifetime such as "1h", "7d" or "3600". Bare
// numbers, quoted or not, are seconds.
type ExpiresIn string

func (e *ExpiresIn) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = ExpiresIn(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*e = ExpiresIn(n.String())
	return nil
}

// Session is the result of Login as seen by callers.
type Session struct {
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ----------------------------------------------------------------------
// Dashboard & analytics
// ----------------------------------------------------------------------

// Dashboard is the platform summary shown on the operator landing page.
type Dashboard struct {
	TotalSchools    int              `json:"totalSchools"`
	ActiveSchools   int              `json:"activeSchools"`
	TotalUsers      int              `json:"totalUsers"`
	TotalStudents   int              `json:"totalStudents"`
	MonthlyRevenue  float64          `json:"monthlyRevenue"`
	OpenTickets     int              `json:"openTickets"`
	RecentSchools   []School         `json:"recentSchools"`
	RecentActivity  []ActivityRecord `json:"recentActivity"`
	SystemStatus    string           `json:"systemStatus"`
	LastUpdatedTime time.Time        `json:"lastUpdated"`
}

// ActivityRecord is a single line of the dashboard activity feed.
type ActivityRecord struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	SchoolID  string    `json:"schoolId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Analytics is the aggregated usage/revenue series for a period.
type Analytics struct {
	Period        string         `json:"period"`
	Revenue       []SeriesPoint  `json:"revenue"`
	SchoolGrowth  []SeriesPoint  `json:"schoolGrowth"`
	UserGrowth    []SeriesPoint  `json:"userGrowth"`
	PlanBreakdown map[string]int `json:"planBreakdown"`
	ChurnRate     float64        `json:"churnRate"`
}

// SeriesPoint is one sample in an analytics series.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ----------------------------------------------------------------------
// Schools (tenants)
// ----------------------------------------------------------------------

// School is a tenant account.
type School struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Subdomain    string    `json:"subdomain"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	Status       string    `json:"status"`
	PlanID       string    `json:"planId,omitempty"`
	StudentCount int       `json:"studentCount"`
	TeacherCount int       `json:"teacherCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SchoolInput is the body for creating or updating a school.
type SchoolInput struct {
	Name      string `json:"name,omitempty"`
	Subdomain string `json:"subdomain,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	PlanID    string `json:"planId,omitempty"`
	Status    string `json:"status,omitempty"`
}

// SchoolList is the response of GET /schools.
type SchoolList struct {
	Schools    []School   `json:"schools"`
	Pagination Pagination `json:"pagination"`
}

// SchoolResponse wraps a single school.
type SchoolResponse struct {
	School School `json:"school"`
}

// ListFilter narrows listing endpoints. Zero fields are omitted from the query.
type ListFilter struct {
	Search string
	Status string
	Page   int
	Limit  int
}

// Pagination accompanies listing responses.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ----------------------------------------------------------------------
// Users
// ----------------------------------------------------------------------

// User is a platform operator or school administrator account.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	SchoolID  string     `json:"schoolId,omitempty"`
	Active    bool       `json:"active"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// UserInput is the body for creating or updating a user.
type UserInput struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	SchoolID string `json:"schoolId,omitempty"`
	Password string `json:"password,omitempty"`
}

// UserList is the response of GET /users.
type UserList struct {
	Users      []User     `json:"users"`
	Pagination Pagination `json:"pagination"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	User User `json:"user"`
}

// ----------------------------------------------------------------------
// Billing
// ----------------------------------------------------------------------

// Plan is a billing plan schools subscribe to.
type Plan struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Interval    string   `json:"interval"`
	MaxStudents int      `json:"maxStudents"`
	Features    []string `json:"features"`
	Active      bool     `json:"active"`
}

// PlanInput is the body for creating or updating a plan.
type PlanInput struct {
	Name        string   `json:"name,omitempty"`
	Price       float64  `json:"price,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Interval    string   `json:"interval,omitempty"`
	MaxStudents int      `json:"maxStudents,omitempty"`
	Features    []string `json:"features,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

// PlanList is the response of GET /billing/plans.
type PlanList struct {
	Plans []Plan `json:"plans"`
}

// PlanResponse wraps a single plan.
type PlanResponse struct {
	Plan Plan `json:"plan"`
}

// Subscription links a school to a plan.
type Subscription struct {
	ID        string     `json:"id"`
	SchoolID  string     `json:"schoolId"`
	PlanID    string     `json:"planId"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"startedAt"`
	RenewsAt  *time.Time `json:"renewsAt,omitempty"`
	Amount    float64    `json:"amount"`
}

// SubscriptionList is the response of GET /billing/subscriptions.
type SubscriptionList struct {
	Subscriptions []Subscription `json:"subscriptions"`
}

// ChangePlanRequest moves a school to another plan.
type ChangePlanRequest struct {
	PlanID string `json:"planId"`
}

// ----------------------------------------------------------------------
// Support tickets
// ----------------------------------------------------------------------

// Ticket is a support request raised by a school.
type Ticket struct {
	ID        string        `json:"id"`
	SchoolID  string        `json:"schoolId"`
	Subject   string        `json:"subject"`
	Body      string        `json:"body"`
	Status    string        `json:"status"`
	Priority  string        `json:"priority"`
	Replies   []TicketReply `json:"replies,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// TicketReply is one message on a ticket thread.
type TicketReply struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// TicketInput is the body for opening a ticket.
type TicketInput struct {
	SchoolID string `json:"schoolId"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Priority string `json:"priority,omitempty"`
}

// TicketStatusUpdate changes the status of a ticket.
type TicketStatusUpdate struct {
	Status string `json:"status"`
}

// TicketReplyInput is the body for replying to a ticket.
type TicketReplyInput struct {
	Message string `json:"message"`
}

// TicketList is the response of GET /tickets.
type TicketList struct {
	Tickets    []Ticket   `json:"tickets"`
	Pagination Pagination `json:"pagination"`
}

// TicketResponse wraps a single ticket.
type TicketResponse struct {
	Ticket Ticket `json:"ticket"`
}

// ----------------------------------------------------------------------
// Subdomains
// ----------------------------------------------------------------------

// Subdomain is a tenant's hostname on the platform.
type Subdomain struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SchoolID  string    `json:"schoolId"`
	Active    bool      `json:"active"`
	SSL       bool      `json:"ssl"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubdomainInput is the body for creating a subdomain.
type SubdomainInput struct {
	Name     string `json:"name"`
	SchoolID string `json:"schoolId"`
}

// SubdomainList is the response of GET /subdomains.
type SubdomainList struct {
	Subdomains []Subdomain `json:"subdomains"`
}

// SubdomainResponse wraps a single subdomain.
type SubdomainResponse struct {
	Subdomain Subdomain `json:"subdomain"`
}

// SubdomainAvailability is the response of GET /subdomains/check.
type SubdomainAvailability struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// ----------------------------------------------------------------------
// Feature toggles
// ----------------------------------------------------------------------

// Feature is a platform feature flag.
type Feature struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Enabled     bool     `json:"enabled"`
	Rollout     int      `json:"rollout"`
	SchoolIDs   []string `json:"schoolIds,omitempty"`
}

// FeatureInput updates a feature flag.
type FeatureInput struct {
	Description string   `json:"description,omitempty"`
	Rollout     *int     `json:"rollout,omitempty"`
	SchoolIDs   []string `json:"schoolIds,omitempty"`
}

// FeatureList is the response of GET /features.
type FeatureList struct {
	Features []Feature `json:"features"`
}

// FeatureResponse wraps a single feature.
type FeatureResponse struct {
	Feature Feature `json:"feature"`
}

// ----------------------------------------------------------------------
// Notifications & announcements
// ----------------------------------------------------------------------

// Notification is an operator inbox item.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationList is the response of GET /notifications.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	Unread        int            `json:"unread"`
}

// Announcement is a message broadcast to schools.
type Announcement struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Audience    string     `json:"audience"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// AnnouncementInput is the body for creating or updating an announcement.
type AnnouncementInput struct {
	Title     string `json:"title,omitempty"`
	Content   string `json:"content,omitempty"`
	Audience  string `json:"audience,omitempty"`
	Published *bool  `json:"published,omitempty"`
}

// AnnouncementList is the response of GET /announcements.
type AnnouncementList struct {
	Announcements []Announcement `json:"announcements"`
}

// AnnouncementResponse wraps a single announcement.
type AnnouncementResponse struct {
	Announcement Announcement `json:"announcement"`
}

// ----------------------------------------------------------------------
// Security
// ----------------------------------------------------------------------

// SecuritySettings are the platform-wide security controls.
type SecuritySettings struct {
	TwoFactorRequired   bool     `json:"twoFactorRequired"`
	PasswordMinLength   int      `json:"passwordMinLength"`
	SessionTimeoutMins  int      `json:"sessionTimeoutMinutes"`
	MaxLoginAttempts    int      `json:"maxLoginAttempts"`
	LockoutDurationMins int      `json:"lockoutDurationMinutes"`
	IPAllowlist         []string `json:"ipAllowlist,omitempty"`
}

// SecuritySettingsResponse wraps the settings document.
type SecuritySettingsResponse struct {
	Settings SecuritySettings `json:"settings"`
}

// AuditLog is one recorded security-relevant action.
type AuditLog struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Target    string    `json:"target,omitempty"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuditLogList is the response of GET /security/audit-logs.
type AuditLogList struct {
	Logs       []AuditLog `json:"logs"`
	Pagination Pagination `json:"pagination"`
}

// ----------------------------------------------------------------------
// AI chat
// ----------------------------------------------------------------------

// ChatMessage is one turn in an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /ai/chat.
type ChatRequest struct {
	Message        string        `json:"message"`
	ConversationID string        `json:"conversationId,omitempty"`
	History        []ChatMessage `json:"history,omitempty"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Reply          string `json:"reply"`
	ConversationID string `json:"conversationId"`
}

// ----------------------------------------------------------------------
// System health
// ----------------------------------------------------------------------

// SystemHealth is the response of GET /system/health.
type SystemHealth struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    float64           `json:"uptime"`
	Services  map[string]string `json:"services"`
	CheckedAt time.Time         `json:"checkedAt"`
}

// MessageResponse is returned by mutating endpoints with nothing else to say.
type MessageResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}
