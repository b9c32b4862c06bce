package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/linkhub-app/linkhub/internal/app/model"
	"github.com/linkhub-app/linkhub/internal/app/repository"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const shortCodeLength = 8

// CodeIndex receives newly minted short codes so lookups stay warm.
type CodeIndex interface {
	AddCode(code string)
}

// LinkService manages an account's links. Short codes are minted here and
// never change afterwards.
type LinkService interface {
	CreateAccount(ctx context.Context, displayName string) (*model.Account, error)
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	CreateLink(ctx context.Context, accountID, title, destinationURL string) (*model.Link, error)
	ListLinks(ctx context.Context, accountID string) ([]model.Link, error)
}

type linkService struct {
	accounts repository.AccountRepository
	codes    CodeIndex
}

// NewLinkService returns a service backed by the given repository. codes may
// be nil.
func NewLinkService(accounts repository.AccountRepository, codes CodeIndex) LinkService {
	return &linkService{accounts: accounts, codes: codes}
}

func (s *linkService) CreateAccount(ctx context.Context, displayName string) (*model.Account, error) {
	account := &model.Account{
		ID:          uuid.New().String(),
		DisplayName: displayName,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

func (s *linkService) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

func (s *linkService) CreateLink(ctx context.Context, accountID, title, destinationURL string) (*model.Link, error) {
	code, err := gonanoid.New(shortCodeLength)
	if err != nil {
		return nil, fmt.Errorf("mint short code: %w", err)
	}

	link := &model.Link{
		ID:             uuid.New().String(),
		AccountID:      accountID,
		ShortCode:      code,
		Title:          title,
		DestinationURL: destinationURL,
	}

	if err := s.accounts.AddLink(ctx, link); err != nil {
		return nil, fmt.Errorf("add link: %w", err)
	}

	if s.codes != nil {
		s.codes.AddCode(code)
	}
	return link, nil
}

func (s *linkService) ListLinks(ctx context.Context, accountID string) ([]model.Link, error) {
	links, err := s.accounts.ListLinks(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}
