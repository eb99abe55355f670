package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/scribe-go-api/internal/repository"
)

// ErrUnauthorized indicates the actor lacks the capability for the operation.
var ErrUnauthorized = errors.New("unauthorized")

// AccessPolicy is the single decision point for "can subject S perform action A
// on entity E". It only reads; every service consults it instead of re-deriving
// role logic.
type AccessPolicy interface {
	IsOwner(ctx context.Context, userID, documentID uint) (bool, error)
	IsGroupMember(ctx context.Context, userID, groupID uint) (bool, error)
	HasRole(ctx context.Context, userID uint, role string) (bool, error)
	CanEvaluate(ctx context.Context, userID uint) (bool, error)
}

type accessPolicy struct {
	users     repository.UserRepository
	groups    repository.GroupRepository
	documents repository.DocumentRepository
	logger    zerolog.Logger
}

// NewAccessPolicy constructs the policy over the given repositories.
func NewAccessPolicy(users repository.UserRepository, groups repository.GroupRepository, documents repository.DocumentRepository, logger zerolog.Logger) AccessPolicy {
	return &accessPolicy{
		users:     users,
		groups:    groups,
		documents: documents,
		logger:    logger.With().Str("component", "access_policy").Logger(),
	}
}

func (p *accessPolicy) IsOwner(ctx context.Context, userID, documentID uint) (bool, error) {
	document, err := p.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return document.OwnerID == userID, nil
}

func (p *accessPolicy) IsGroupMember(ctx context.Context, userID, groupID uint) (bool, error) {
	group, err := p.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if group.OwnerID == userID {
		return true, nil
	}

	return p.groups.IsMember(ctx, groupID, userID)
}

func (p *accessPolicy) HasRole(ctx context.Context, userID uint, role string) (bool, error) {
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return user.Role == role, nil
}

func (p *accessPolicy) CanEvaluate(ctx context.Context, userID uint) (bool, error) {
	user, err := p.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return user.CanEvaluate(), nil
}
