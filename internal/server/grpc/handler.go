package grpc

import (
	"context"

	"github.com/dmitrijs2005/timecapsule/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *Credentials) (*Session, error) {

	s.logger.Info(ctx, "Registration request")

	result, err := s.users.Register(ctx, req.Username, req.Password)

	if err != nil {
		s.logger.Error(ctx, err.Error())
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "username", req.Username)
	return &Session{UserID: result.UserID, AccessToken: result.AccessToken}, nil

}

func (s *GRPCServer) Login(ctx context.Context, req *Credentials) (*Session, error) {

	result, err := s.users.Login(ctx, req.Username, req.Password)

	if err != nil {
		return nil, toStatus(err)
	}

	return &Session{UserID: result.UserID, AccessToken: result.AccessToken}, nil

}

func (s *GRPCServer) CreateCapsule(ctx context.Context, req *CreateCapsuleRequest) (*CreateCapsuleResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.capsules.Create(ctx, userID, req.Message, req.UnlockAt)
	if err != nil {
		return nil, s.fail(ctx, "create", err)
	}

	return &CreateCapsuleResponse{ID: c.ID, UnlockCode: c.UnlockCode, UnlockAt: c.UnlockAt}, nil
}

func (s *GRPCServer) GetCapsule(ctx context.Context, req *CapsuleRef) (*Capsule, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.capsules.Read(ctx, userID, req.ID, req.Code)
	if err != nil {
		return nil, s.fail(ctx, "read", err)
	}

	return &Capsule{
		ID:            c.ID,
		Message:       c.Message,
		UnlockAt:      c.UnlockAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		AttachmentURL: c.AttachmentURL,
	}, nil
}

func (s *GRPCServer) ListCapsules(ctx context.Context, req *ListCapsulesRequest) (*ListCapsulesResponse, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.capsules.List(ctx, userID, req.Page, req.Limit)
	if err != nil {
		return nil, s.fail(ctx, "list", err)
	}

	resp := &ListCapsulesResponse{
		Capsules:   make([]CapsuleSummary, 0, len(p.Capsules)),
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
	for _, c := range p.Capsules {
		resp.Capsules = append(resp.Capsules, CapsuleSummary{
			ID:        c.ID,
			Message:   c.Message,
			UnlockAt:  c.UnlockAt,
			Retired:   c.Retired,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return resp, nil
}

func (s *GRPCServer) UpdateCapsule(ctx context.Context, req *UpdateCapsuleRequest) (*CapsuleID, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}

	id, err := s.capsules.Update(ctx, userID, req.ID, req.Code, services.UpdateInput{
		Message:  req.Message,
		UnlockAt: req.UnlockAt,
	})
	if err != nil {
		return nil, s.fail(ctx, "update", err)
	}

	return &CapsuleID{ID: id}, nil
}

func (s *GRPCServer) DeleteCapsule(ctx context.Context, req *CapsuleRef) (*CapsuleID, error) {
	userID, err := userIDFrom(ctx)
	if err != nil {
		return nil, err
	}

	id, err := s.capsules.Delete(ctx, userID, req.ID, req.Code)
	if err != nil {
		return nil, s.fail(ctx, "delete", err)
	}

	return &CapsuleID{ID: id}, nil
}

// fail logs unexpected failures and converts err to a status.
func (s *GRPCServer) fail(ctx context.Context, op string, err error) error {
	st := toStatus(err)
	if status.Code(st) == codes.Internal {
		s.logger.Error(ctx, "capsule operation failed", "op", op, "error", err)
	}
	return st
}
