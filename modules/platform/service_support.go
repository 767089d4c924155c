package platform

import (
	"context"

	"github.com/guarzo/schooladmin/common"
	"github.com/guarzo/schooladmin/common/model"
)

// ---------------------------------------------------
// Tickets
// ---------------------------------------------------

func (s *platformService) GetTickets(ctx context.Context, filter model.ListFilter) (*model.TicketList, error) {
	var list model.TicketList
	if err := s.read(ctx, common.ResourceTickets, common.ResourceTickets, "/tickets", filterQuery(filter), &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *platformService) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	endpoint, err := pathID("/tickets/%s", id)
	if err != nil {
		return nil, err
	}
	var resp model.TicketResponse
	if err := s.read(ctx, common.ResourceTickets, common.ResourceTickets+"/"+id, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Ticket, nil
}

func (s *platformService) CreateTicket(ctx context.Context, in model.TicketInput) (*model.Ticket, error) {
	var resp model.TicketResponse
	if err := s.client.PostJSON(ctx, "/tickets", in, &resp); err != nil {
		return nil, err
	}
	return &resp.Ticket, nil
}

func (s *platformService) UpdateTicketStatus(ctx context.Context, id, status string) (*model.Ticket, error) {
	endpoint, err := pathID("/tickets/%s/status", id)
	if err != nil {
		return nil, err
	}
	var resp model.TicketResponse
	if err := s.client.PatchJSON(ctx, endpoint, model.TicketStatusUpdate{Status: status}, &resp); err != nil {
		return nil, err
	}
	return &resp.Ticket, nil
}

func (s *platformService) ReplyToTicket(ctx context.Context, id, message string) (*model.Ticket, error) {
	endpoint, err := pathID("/tickets/%s/replies", id)
	if err != nil {
		return nil, err
	}
	var resp model.TicketResponse
	if err := s.client.PostJSON(ctx, endpoint, model.TicketReplyInput{Message: message}, &resp); err != nil {
		return nil, err
	}
	return &resp.Ticket, nil
}

// ---------------------------------------------------
// AI assistant
// ---------------------------------------------------

func (s *platformService) SendChatMessage(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	var resp model.ChatResponse
	if err := s.client.PostJSON(ctx, "/ai/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
