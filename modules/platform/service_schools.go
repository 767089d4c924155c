package platform

import (
	"context"
	"net/url"

	"github.com/guarzo/schooladmin/common"
	"github.com/guarzo/schooladmin/common/model"
)

func (s *platformService) GetSchools(ctx context.Context, filter model.ListFilter) (*model.SchoolList, error) {
	var list model.SchoolList
	if err := s.read(ctx, common.ResourceSchools, common.ResourceSchools, "/schools", filterQuery(filter), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *platformService) GetSchool(ctx context.Context, id string) (*model.School, error) {
	endpoint, err := pathID("/schools/%s", id)
	if err != nil {
		return nil, err
	}
	var resp model.SchoolResponse
	if err := s.read(ctx, common.ResourceSchools, common.ResourceSchools+"/"+id, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.School, nil
}

func (s *platformService) CreateSchool(ctx context.Context, in model.SchoolInput) (*model.School, error) {
	var resp model.SchoolResponse
	if err := s.client.PostJSON(ctx, "/schools", in, &resp); err != nil {
		return nil, err
	}
	return &resp.School, nil
}

func (s *platformService) UpdateSchool(ctx context.Context, id string, in model.SchoolInput) (*model.School, error) {
	endpoint, err := pathID("/schools/%s", id)
	if err != nil {
		return nil, err
	}
	var resp model.SchoolResponse
	if err := s.client.PutJSON(ctx, endpoint, in, &resp); err != nil {
		return nil, err
	}
	return &resp.School, nil
}

func (s *platformService) DeleteSchool(ctx context.Context, id string) error {
	endpoint, err := pathID("/schools/%s", id)
	if err != nil {
		return err
	}
	return s.client.DeleteJSON(ctx, endpoint, nil)
}

func (s *platformService) ToggleSchoolStatus(ctx context.Context, id string) (*model.School, error) {
	endpoint, err := pathID("/schools/%s/status", id)
	if err != nil {
		return nil, err
	}
	var resp model.SchoolResponse
	if err := s.client.PatchJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.School, nil
}

// ---------------------------------------------------
// Subdomains
// ---------------------------------------------------

func (s *platformService) GetSubdomains(ctx context.Context) ([]model.Subdomain, error) {
	var list model.SubdomainList
	if err := s.read(ctx, common.ResourceSubdomains, common.ResourceSubdomains, "/subdomains", nil, &list); err != nil {
		return nil, err
	}
	return list.Subdomains, nil
}

// CheckSubdomain always asks the server; availability must not be served from cache.
func (s *platformService) CheckSubdomain(ctx context.Context, name string) (*model.SubdomainAvailability, error) {
	var avail model.SubdomainAvailability
	q := url.Values{"name": {name}}
	if err := s.client.GetJSON(ctx, "/subdomains/check", &avail, q, NoCache()); err != nil {
		return nil, err
	}
	return &avail, nil
}

func (s *platformService) CreateSubdomain(ctx context.Context, in model.SubdomainInput) (*model.Subdomain, error) {
	var resp model.SubdomainResponse
	if err := s.client.PostJSON(ctx, "/subdomains", in, &resp); err != nil {
		return nil, err
	}
	return &resp.Subdomain, nil
}

func (s *platformService) DeleteSubdomain(ctx context.Context, id string) error {
	endpoint, err := pathID("/subdomains/%s", id)
	if err != nil {
		return err
	}
	return s.client.DeleteJSON(ctx, endpoint, nil)
}

func (s *platformService) ToggleSubdomain(ctx context.Context, id string) (*model.Subdomain, error) {
	endpoint, err := pathID("/subdomains/%s/toggle", id)
	if err != nil {
		return nil, err
	}
	var resp model.SubdomainResponse
	if err := s.client.PatchJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Subdomain, nil
}
