package platform

import (
	"context"

	"github.com/guarzo/schooladmin/common"
	"github.com/guarzo/schooladmin/common/model"
)

// ---------------------------------------------------
// Users
// ---------------------------------------------------

func (s *platformService) GetUsers(ctx context.Context, filter model.ListFilter) (*model.UserList, error) {
	var list model.UserList
	if err := s.read(ctx, common.ResourceUsers, common.ResourceUsers, "/users", filterQuery(filter), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *platformService) CreateUser(ctx context.Context, in model.UserInput) (*model.User, error) {
	var resp model.UserResponse
	if err := s.client.PostJSON(ctx, "/users", in, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (s *platformService) UpdateUser(ctx context.Context, id string, in model.UserInput) (*model.User, error) {
	endpoint, err := pathID("/users/%s", id)
	if err != nil {
		return nil, err
	}
	var resp model.UserResponse
	if err := s.client.PutJSON(ctx, endpoint, in, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (s *platformService) DeleteUser(ctx context.Context, id string) error {
	endpoint, err := pathID("/users/%s", id)
	if err != nil {
		return err
	}
	return s.client.DeleteJSON(ctx, endpoint, nil)
}

func (s *platformService) ToggleUserStatus(ctx context.Context, id string) (*model.User, error) {
	endpoint, err := pathID("/users/%s/status", id)
	if err != nil {
		return nil, err
	}
	var resp model.UserResponse
	if err := s.client.PatchJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ---------------------------------------------------
// Security
// ---------------------------------------------------

func (s *platformService) GetSecuritySettings(ctx context.Context) (*model.SecuritySettings, error) {
	var resp model.SecuritySettingsResponse
	if err := s.read(ctx, common.ResourceSecurity, common.ResourceSecurity, "/security/settings", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Settings, nil
}

func (s *platformService) UpdateSecuritySettings(ctx context.Context, in model.SecuritySettings) (*model.SecuritySettings, error) {
	var resp model.SecuritySettingsResponse
	if err := s.client.PutJSON(ctx, "/security/settings", in, &resp); err != nil {
		return nil, err
	}
	return &resp.Settings, nil
}

func (s *platformService) GetAuditLogs(ctx context.Context, filter model.ListFilter) (*model.AuditLogList, error) {
	var list model.AuditLogList
	if err := s.read(ctx, common.ResourceAuditLogs, common.ResourceAuditLogs, "/security/audit-logs", filterQuery(filter), &list); err != nil {
		return nil, err
	}
	return &list, nil
}
