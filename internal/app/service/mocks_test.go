package service

import (
	"context"
	"time"

	"github.com/linkhub-app/linkhub/internal/app/model"
	"github.com/linkhub-app/linkhub/internal/app/repository"
)

type mockAccountRepository struct {
	createFn         func(ctx context.Context, account *model.Account) error
	getByIDFn        func(ctx context.Context, id string) (*model.Account, error)
	getByShortCodeFn func(ctx context.Context, code string) (*model.Account, *model.Link, error)
	addLinkFn        func(ctx context.Context, link *model.Link) error
	listLinksFn      func(ctx context.Context, accountID string) ([]model.Link, error)
	listCodesFn      func(ctx context.Context) ([]string, error)
	recordClickFn    func(ctx context.Context, event *model.ClickEvent, newVisitor bool) error
}

func (m *mockAccountRepository) Create(ctx context.Context, account *model.Account) error {
	if m.createFn != nil {
		return m.createFn(ctx, account)
	}
	return nil
}

func (m *mockAccountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrAccountNotFound
}

func (m *mockAccountRepository) GetByShortCode(ctx context.Context, code string) (*model.Account, *model.Link, error) {
	if m.getByShortCodeFn != nil {
		return m.getByShortCodeFn(ctx, code)
	}
	return nil, nil, repository.ErrLinkNotFound
}

func (m *mockAccountRepository) AddLink(ctx context.Context, link *model.Link) error {
	if m.addLinkFn != nil {
		return m.addLinkFn(ctx, link)
	}
	return nil
}

func (m *mockAccountRepository) ListLinks(ctx context.Context, accountID string) ([]model.Link, error) {
	if m.listLinksFn != nil {
		return m.listLinksFn(ctx, accountID)
	}
	return nil, nil
}

func (m *mockAccountRepository) ListShortCodes(ctx context.Context) ([]string, error) {
	if m.listCodesFn != nil {
		return m.listCodesFn(ctx)
	}
	return nil, nil
}

func (m *mockAccountRepository) RecordClick(ctx context.Context, event *model.ClickEvent, newVisitor bool) error {
	if m.recordClickFn != nil {
		return m.recordClickFn(ctx, event, newVisitor)
	}
	return nil
}

type mockClickEventRepository struct {
	listSinceFn func(ctx context.Context, accountID string, since time.Time) ([]model.ClickEvent, error)
}

func (m *mockClickEventRepository) ListSince(ctx context.Context, accountID string, since time.Time) ([]model.ClickEvent, error) {
	if m.listSinceFn != nil {
		return m.listSinceFn(ctx, accountID, since)
	}
	return nil, nil
}

// stubClassifier returns fixed dimensions so tests control attribution.
type stubClassifier struct {
	country string
	device  string
}

func (s stubClassifier) Country(addr string) string {
	if s.country == "" {
		return "Unknown"
	}
	return s.country
}

func (s stubClassifier) Device(signature, platformHint string) string {
	if s.device == "" {
		return "Other"
	}
	return s.device
}
