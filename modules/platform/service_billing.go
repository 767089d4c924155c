package platform

import (
	"context"

	"github.com/guarzo/schooladmin/common"
	"github.com/guarzo/schooladmin/common/model"
)

func (s *platformService) GetPlans(ctx context.Context) ([]model.Plan, error) {
	var list model.PlanList
	if err := s.read(ctx, common.ResourcePlans, common.ResourcePlans, "/billing/plans", nil, &list); err != nil {
		return nil, err
	}
	return list.Plans, nil
}

func (s *platformService) CreatePlan(ctx context.Context, in model.PlanInput) (*model.Plan, error) {
	var resp model.PlanResponse
	if err := s.client.PostJSON(ctx, "/billing/plans", in, &resp); err != nil {
		return nil, err
	}
	return &resp.Plan, nil
}

func (s *platformService) UpdatePlan(ctx context.Context, id string, in model.PlanInput) (*model.Plan, error) {
	endpoint, err := pathID("/billing/plans/%s", id)
	if err != nil {
		return nil, err
	}
	var resp model.PlanResponse
	if err := s.client.PutJSON(ctx, endpoint, in, &resp); err != nil {
		return nil, err
	}
	return &resp.Plan, nil
}

func (s *platformService) DeletePlan(ctx context.Context, id string) error {
	endpoint, err := pathID("/billing/plans/%s", id)
	if err != nil {
		return err
	}
	return s.client.DeleteJSON(ctx, endpoint, nil)
}

func (s *platformService) GetSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	var list model.SubscriptionList
	if err := s.read(ctx, common.ResourceSubscriptions, common.ResourceSubscriptions, "/billing/subscriptions", nil, &list); err != nil {
		return nil, err
	}
	return list.Subscriptions, nil
}

func (s *platformService) ChangeSchoolPlan(ctx context.Context, schoolID, planID string) (*model.MessageResponse, error) {
	endpoint, err := pathID("/billing/schools/%s/plan", schoolID)
	if err != nil {
		return nil, err
	}
	var resp model.MessageResponse
	if err := s.client.PutJSON(ctx, endpoint, model.ChangePlanRequest{PlanID: planID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
