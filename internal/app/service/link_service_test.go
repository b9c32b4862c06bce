package service

import (
	"context"
	"errors"
	"testing"

	"github.com/linkhub-app/linkhub/internal/app/model"
	"github.com/linkhub-app/linkhub/internal/app/repository"
)

type recordingCodeIndex struct {
	codes []string
}

func (r *recordingCodeIndex) AddCode(code string) {
	r.codes = append(r.codes, code)
}

func TestLinkService_CreateLink(t *testing.T) {
	var created *model.Link
	repo := &mockAccountRepository{
		addLinkFn: func(ctx context.Context, link *model.Link) error {
			created = link
			return nil
		},
	}
	index := &recordingCodeIndex{}

	svc := NewLinkService(repo, index)
	link, err := svc.CreateLink(context.Background(), "acct-1", "Blog", "https://example.com")
	if err != nil {
		t.Fatalf("CreateLink error: %v", err)
	}

	if created == nil {
		t.Fatal("expected link to reach the repository")
	}
	if len(link.ShortCode) != shortCodeLength {
		t.Fatalf("ShortCode = %q, want %d characters", link.ShortCode, shortCodeLength)
	}
	if link.ID == "" || link.AccountID != "acct-1" || link.DestinationURL != "https://example.com" {
		t.Fatalf("link fields wrong: %+v", link)
	}
	if len(index.codes) != 1 || index.codes[0] != link.ShortCode {
		t.Fatalf("code index not updated: %v", index.codes)
	}
}

func TestLinkService_CreateLink_UnknownAccount(t *testing.T) {
	repo := &mockAccountRepository{
		addLinkFn: func(ctx context.Context, link *model.Link) error {
			return repository.ErrAccountNotFound
		},
	}

	svc := NewLinkService(repo, nil)
	_, err := svc.CreateLink(context.Background(), "missing", "Blog", "https://example.com")
	if !errors.Is(err, repository.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestLinkService_CreateAccount(t *testing.T) {
	repo := &mockAccountRepository{
		createFn: func(ctx context.Context, account *model.Account) error {
			if account.ID == "" {
				t.Fatal("expected account id to be set")
			}
			return nil
		},
	}

	svc := NewLinkService(repo, nil)
	account, err := svc.CreateAccount(context.Background(), "demo")
	if err != nil {
		t.Fatalf("CreateAccount error: %v", err)
	}
	if account.DisplayName != "demo" {
		t.Fatalf("DisplayName = %q", account.DisplayName)
	}
}

func TestLinkService_ListLinks(t *testing.T) {
	repo := &mockAccountRepository{
		listLinksFn: func(ctx context.Context, accountID string) ([]model.Link, error) {
			return []model.Link{{ShortCode: "a"}, {ShortCode: "b"}}, nil
		},
	}
	svc := NewLinkService(repo, nil)

	links, err := svc.ListLinks(context.Background(), "acct-1")
	if err != nil {
		t.Fatalf("ListLinks error: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
}
