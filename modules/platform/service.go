package platform

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/hashicorp/go-version"

	"github.com/guarzo/schooladmin/common"
	"github.com/guarzo/schooladmin/common/model"
)

// PlatformService is the typed view of the admin API used by the dashboard.
type PlatformService interface {
	GetDashboard(ctx context.Context) (*model.Dashboard, error)
	GetAnalytics(ctx context.Context, period string) (*model.Analytics, error)

	GetSchools(ctx context.Context, filter model.ListFilter) (*model.SchoolList, error)
	GetSchool(ctx context.Context, id string) (*model.School, error)
	CreateSchool(ctx context.Context, in model.SchoolInput) (*model.School, error)
	UpdateSchool(ctx context.Context, id string, in model.SchoolInput) (*model.School, error)
	DeleteSchool(ctx context.Context, id string) error
	ToggleSchoolStatus(ctx context.Context, id string) (*model.School, error)

	GetUsers(ctx context.Context, filter model.ListFilter) (*model.UserList, error)
	CreateUser(ctx context.Context, in model.UserInput) (*model.User, error)
	UpdateUser(ctx context.Context, id string, in model.UserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
	ToggleUserStatus(ctx context.Context, id string) (*model.User, error)

	GetPlans(ctx context.Context) ([]model.Plan, error)
	CreatePlan(ctx context.Context, in model.PlanInput) (*model.Plan, error)
	UpdatePlan(ctx context.Context, id string, in model.PlanInput) (*model.Plan, error)
	DeletePlan(ctx context.Context, id string) error
	GetSubscriptions(ctx context.Context) ([]model.Subscription, error)
	ChangeSchoolPlan(ctx context.Context, schoolID, planID string) (*model.MessageResponse, error)

	GetTickets(ctx context.Context, filter model.ListFilter) (*model.TicketList, error)
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)
	CreateTicket(ctx context.Context, in model.TicketInput) (*model.Ticket, error)
	UpdateTicketStatus(ctx context.Context, id, status string) (*model.Ticket, error)
	ReplyToTicket(ctx context.Context, id, message string) (*model.Ticket, error)

	GetSubdomains(ctx context.Context) ([]model.Subdomain, error)
	CheckSubdomain(ctx context.Context, name string) (*model.SubdomainAvailability, error)
	CreateSubdomain(ctx context.Context, in model.SubdomainInput) (*model.Subdomain, error)
	DeleteSubdomain(ctx context.Context, id string) error
	ToggleSubdomain(ctx context.Context, id string) (*model.Subdomain, error)

	GetFeatures(ctx context.Context) ([]model.Feature, error)
	ToggleFeature(ctx context.Context, key string) (*model.Feature, error)
	UpdateFeature(ctx context.Context, key string, in model.FeatureInput) (*model.Feature, error)

	GetNotifications(ctx context.Context) (*model.NotificationList, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error

	GetAnnouncements(ctx context.Context) ([]model.Announcement, error)
	CreateAnnouncement(ctx context.Context, in model.AnnouncementInput) (*model.Announcement, error)
	UpdateAnnouncement(ctx context.Context, id string, in model.AnnouncementInput) (*model.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id string) error

	GetSecuritySettings(ctx context.Context) (*model.SecuritySettings, error)
	UpdateSecuritySettings(ctx context.Context, in model.SecuritySettings) (*model.SecuritySettings, error)
	GetAuditLogs(ctx context.Context, filter model.ListFilter) (*model.AuditLogList, error)

	SendChatMessage(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error)

	GetSystemHealth(ctx context.Context) (*model.SystemHealth, error)
	CheckCompatibility(ctx context.Context, minVersion string) (bool, error)
}

type platformService struct {
	client   PlatformClient
	policies common.CachePolicies
}

// NewPlatformService wraps client. A nil policies map uses DefaultCachePolicies.
func NewPlatformService(client PlatformClient, policies common.CachePolicies) PlatformService {
	if policies == nil {
		policies = common.DefaultCachePolicies()
	}
	return &platformService{
		client:   client,
		policies: policies,
	}
}

// read fetches endpoint under cacheKey with the policy of resource.
func (s *platformService) read(ctx context.Context, resource, cacheKey, endpoint string, query url.Values, out interface{}) error {
	return s.client.GetJSON(ctx, endpoint, out, query, s.cacheOptions(resource, cacheKey))
}

func (s *platformService) cacheOptions(resource, cacheKey string) *CacheOptions {
	policy := s.policies.For(resource)
	return &CacheOptions{
		TTL:       policy.TTL,
		StaleTime: policy.StaleTime,
		CacheKey:  cacheKey,
	}
}

// filterQuery turns a ListFilter into query parameters, skipping zero fields.
func filterQuery(filter model.ListFilter) url.Values {
	q := url.Values{}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.Page > 0 {
		q.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	return q
}

func pathID(format, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("empty id for %q", format)
	}
	return fmt.Sprintf(format, url.PathEscape(id)), nil
}

// ---------------------------------------------------
// Dashboard, analytics, health
// ---------------------------------------------------

func (s *platformService) GetDashboard(ctx context.Context) (*model.Dashboard, error) {
	var dash model.Dashboard
	if err := s.read(ctx, common.ResourceDashboard, common.ResourceDashboard, "/dashboard", nil, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

func (s *platformService) GetAnalytics(ctx context.Context, period string) (*model.Analytics, error) {
	if period == "" {
		period = "30d"
	}
	var analytics model.Analytics
	q := url.Values{"period": {period}}
	if err := s.read(ctx, common.ResourceAnalytics, common.ResourceAnalytics, "/analytics", q, &analytics); err != nil {
		return nil, err
	}
	return &analytics, nil
}

func (s *platformService) GetSystemHealth(ctx context.Context) (*model.SystemHealth, error) {
	var health model.SystemHealth
	if err := s.read(ctx, common.ResourceHealth, common.ResourceHealth, "/system/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// CheckCompatibility reports whether the API version is at least minVersion.
func (s *platformService) CheckCompatibility(ctx context.Context, minVersion string) (bool, error) {
	want, err := version.NewVersion(minVersion)
	if err != nil {
		return false, fmt.Errorf("invalid minimum version %q: %w", minVersion, err)
	}
	health, err := s.GetSystemHealth(ctx)
	if err != nil {
		return false, err
	}
	if health.Version == "" {
		return false, fmt.Errorf("API did not report a version")
	}
	got, err := version.NewVersion(health.Version)
	if err != nil {
		return false, fmt.Errorf("API reported invalid version %q: %w", health.Version, err)
	}
	return got.GreaterThanOrEqual(want), nil
}
