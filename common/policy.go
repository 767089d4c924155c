package common

import "time"

// DefaultCacheTTL applies when a cacheable request does not name its own TTL.
const DefaultCacheTTL = 5 * time.Minute

// CachePolicy is the caching tuple for one resource family.
type CachePolicy struct {
	TTL       time.Duration `yaml:"ttl" json:"ttl"`
	StaleTime time.Duration `yaml:"staleTime" json:"staleTime"`
}

// Resource names. They double as the base cache key for each family.
const (
	ResourceDashboard     = "dashboard"
	ResourceAnalytics     = "analytics"
	ResourceSchools       = "schools"
	ResourceUsers         = "users"
	ResourcePlans         = "plans"
	ResourceSubscriptions = "subscriptions"
	ResourceTickets       = "tickets"
	ResourceSubdomains    = "subdomains"
	ResourceFeatures      = "features"
	ResourceNotifications = "notifications"
	ResourceAnnouncements = "announcements"
	ResourceSecurity      = "security"
	ResourceAuditLogs     = "auditLogs"
	ResourceHealth        = "health"
)

// CachePolicies maps a resource name to its policy.
type CachePolicies map[string]CachePolicy

// DefaultCachePolicies are tuned to how quickly each resource changes.
func DefaultCachePolicies() CachePolicies {
	return CachePolicies{
		ResourceDashboard:     {TTL: 2 * time.Minute, StaleTime: 10 * time.Second},
		ResourceAnalytics:     {TTL: 3 * time.Minute, StaleTime: 15 * time.Second},
		ResourceSchools:       {TTL: 5 * time.Minute, StaleTime: 30 * time.Second},
		ResourceUsers:         {TTL: 5 * time.Minute, StaleTime: 30 * time.Second},
		ResourcePlans:         {TTL: 30 * time.Minute, StaleTime: 5 * time.Minute},
		ResourceSubscriptions: {TTL: 5 * time.Minute, StaleTime: 30 * time.Second},
		ResourceTickets:       {TTL: time.Minute, StaleTime: 10 * time.Second},
		ResourceSubdomains:    {TTL: 10 * time.Minute, StaleTime: time.Minute},
		ResourceFeatures:      {TTL: 5 * time.Minute, StaleTime: 30 * time.Second},
		ResourceNotifications: {TTL: time.Minute, StaleTime: 10 * time.Second},
		ResourceAnnouncements: {TTL: 5 * time.Minute, StaleTime: 30 * time.Second},
		ResourceSecurity:      {TTL: 10 * time.Minute, StaleTime: time.Minute},
		ResourceAuditLogs:     {TTL: time.Minute, StaleTime: 10 * time.Second},
		ResourceHealth:        {TTL: 30 * time.Second, StaleTime: 5 * time.Second},
	}
}

// For returns the policy for resource, falling back to DefaultCacheTTL with
// staleness only at expiry.
func (p CachePolicies) For(resource string) CachePolicy {
	if policy, ok := p[resource]; ok {
		return policy
	}
	return CachePolicy{TTL: DefaultCacheTTL, StaleTime: DefaultCacheTTL}
}

// Merge returns a copy of p with every entry of overrides applied on top.
// Zero fields in an override keep the existing value.
func (p CachePolicies) Merge(overrides CachePolicies) CachePolicies {
	out := make(CachePolicies, len(p)+len(overrides))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range overrides {
		cur := out.For(k)
		if v.TTL > 0 {
			cur.TTL = v.TTL
		}
		if v.StaleTime > 0 {
			cur.StaleTime = v.StaleTime
		}
		out[k] = cur
	}
	return out
}
