package repository

import (
	"context"
	"errors"

	"github.com/linkhub-app/linkhub/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrLinkNotFound signals that no link carries the requested short code.
	ErrLinkNotFound = errors.New("link not found")
	// ErrAccountNotFound signals that the requested account does not exist.
	ErrAccountNotFound = errors.New("account not found")
)

// AccountRepository is the data access contract for the account aggregate.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByShortCode(ctx context.Context, code string) (*model.Account, *model.Link, error)
	AddLink(ctx context.Context, link *model.Link) error
	ListLinks(ctx context.Context, accountID string) ([]model.Link, error)
	ListShortCodes(ctx context.Context) ([]string, error)
	RecordClick(ctx context.Context, event *model.ClickEvent, newVisitor bool) error
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns a GORM-backed AccountRepository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Preload("Links", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&account, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetByShortCode(ctx context.Context, code string) (*model.Account, *model.Link, error) {
	var link model.Link
	err := r.db.WithContext(ctx).First(&link, "short_code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrLinkNotFound
		}
		return nil, nil, err
	}

	var account model.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", link.AccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Orphaned link; surface as a missing link rather than a server error.
			return nil, nil, ErrLinkNotFound
		}
		return nil, nil, err
	}

	return &account, &link, nil
}

func (r *accountRepository) AddLink(ctx context.Context, link *model.Link) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Account{}).Where("id = ?", link.AccountID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrAccountNotFound
		}

		var position int64
		if err := tx.Model(&model.Link{}).Where("account_id = ?", link.AccountID).Count(&position).Error; err != nil {
			return err
		}
		link.Position = int(position)

		return tx.Create(link).Error
	})
}

func (r *accountRepository) ListLinks(ctx context.Context, accountID string) ([]model.Link, error) {
	var links []model.Link
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("position ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *accountRepository) ListShortCodes(ctx context.Context) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Pluck("short_code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// RecordClick applies one click as a single logical update: the link counter,
// the account counters and the appended event commit together or not at all.
func (r *accountRepository) RecordClick(ctx context.Context, event *model.ClickEvent, newVisitor bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Link{}).
			Where("id = ? AND account_id = ?", event.LinkID, event.AccountID).
			UpdateColumn("click_count", gorm.Expr("click_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrLinkNotFound
		}

		updates := map[string]interface{}{
			"total_clicks": gorm.Expr("total_clicks + 1"),
		}
		if newVisitor {
			updates["unique_visitor_count"] = gorm.Expr("unique_visitor_count + 1")
		}

		res = tx.Model(&model.Account{}).
			Where("id = ?", event.AccountID).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAccountNotFound
		}

		return tx.Create(event).Error
	})
}
