package platform

import (
	"context"

	"github.com/guarzo/schooladmin/common"
	"github.com/guarzo/schooladmin/common/model"
)

// ---------------------------------------------------
// Feature toggles
// ---------------------------------------------------

func (s *platformService) GetFeatures(ctx context.Context) ([]model.Feature, error) {
	var list model.FeatureList
	if err := s.read(ctx, common.ResourceFeatures, common.ResourceFeatures, "/features", nil, &list); err != nil {
		return nil, err
	}
	return list.Features, nil
}

func (s *platformService) ToggleFeature(ctx context.Context, key string) (*model.Feature, error) {
	endpoint, err := pathID("/features/%s/toggle", key)
	if err != nil {
		return nil, err
	}
	var resp model.FeatureResponse
	if err := s.client.PatchJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Feature, nil
}

func (s *platformService) UpdateFeature(ctx context.Context, key string, in model.FeatureInput) (*model.Feature, error) {
	endpoint, err := pathID("/features/%s", key)
	if err != nil {
		return nil, err
	}
	var resp model.FeatureResponse
	if err := s.client.PutJSON(ctx, endpoint, in, &resp); err != nil {
		return nil, err
	}
	return &resp.Feature, nil
}

// ---------------------------------------------------
// Notifications
// ---------------------------------------------------

func (s *platformService) GetNotifications(ctx context.Context) (*model.NotificationList, error) {
	var list model.NotificationList
	if err := s.read(ctx, common.ResourceNotifications, common.ResourceNotifications, "/notifications", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *platformService) MarkNotificationRead(ctx context.Context, id string) error {
	endpoint, err := pathID("/notifications/%s/read", id)
	if err != nil {
		return err
	}
	return s.client.PatchJSON(ctx, endpoint, nil, nil)
}

func (s *platformService) MarkAllNotificationsRead(ctx context.Context) error {
	return s.client.PatchJSON(ctx, "/notifications/read-all", nil, nil)
}

func (s *platformService) DeleteNotification(ctx context.Context, id string) error {
	endpoint, err := pathID("/notifications/%s", id)
	if err != nil {
		return err
	}
	return s.client.DeleteJSON(ctx, endpoint, nil)
}

// ---------------------------------------------------
// Announcements
// ---------------------------------------------------

func (s *platformService) GetAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	var list model.AnnouncementList
	if err := s.read(ctx, common.ResourceAnnouncements, common.ResourceAnnouncements, "/announcements", nil, &list); err != nil {
		return nil, err
	}
	return list.Announcements, nil
}

func (s *platformService) CreateAnnouncement(ctx context.Context, in model.AnnouncementInput) (*model.Announcement, error) {
	var resp model.AnnouncementResponse
	if err := s.client.PostJSON(ctx, "/announcements", in, &resp); err != nil {
		return nil, err
	}
	return &resp.Announcement, nil
}

func (s *platformService) UpdateAnnouncement(ctx context.Context, id string, in model.AnnouncementInput) (*model.Announcement, error) {
	endpoint, err := pathID("/announcements/%s", id)
	if err != nil {
		return nil, err
	}
	var resp model.AnnouncementResponse
	if err := s.client.PutJSON(ctx, endpoint, in, &resp); err != nil {
		return nil, err
	}
	return &resp.Announcement, nil
}

func (s *platformService) DeleteAnnouncement(ctx context.Context, id string) error {
	endpoint, err := pathID("/announcements/%s", id)
	if err != nil {
		return err
	}
	return s.client.DeleteJSON(ctx, endpoint, nil)
}
