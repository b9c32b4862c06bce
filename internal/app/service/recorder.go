package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/linkhub-app/linkhub/internal/app/geo"
	"github.com/linkhub-app/linkhub/internal/app/model"
	"github.com/linkhub-app/linkhub/internal/app/repository"
	infraprom "github.com/linkhub-app/linkhub/internal/infra/prometheus"
	"go.uber.org/zap"
)

// RequestMeta carries the raw attribution inputs of one redirect request.
type RequestMeta struct {
	RemoteAddr   string
	UserAgent    string
	PlatformHint string
	VisitorToken string
}

// RecordResult is what the HTTP layer needs to finish the redirect.
type RecordResult struct {
	DestinationURL string
	VisitorToken   string
	NewVisitor     bool
}

// ClickRecorder attributes a resolved click and persists it. Classification
// failures degrade to sentinel values; only the durable write can fail the
// request, and then no redirect is issued (fail closed).
type ClickRecorder struct {
	accounts   repository.AccountRepository
	classifier geo.Classifier
	visitors   VisitorResolver
	publisher  *ClickPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewClickRecorder builds a recorder. publisher may be nil; recording then
// skips the telemetry fan-out.
func NewClickRecorder(accounts repository.AccountRepository, classifier geo.Classifier, publisher *ClickPublisher, logger *zap.Logger) *ClickRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClickRecorder{
		accounts:   accounts,
		classifier: classifier,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// Record appends one click event for the resolved account/link pair and
// updates the running counters in the same transaction. It returns the
// destination URL and the (possibly newly minted) visitor token.
func (r *ClickRecorder) Record(ctx context.Context, account *model.Account, link *model.Link, meta RequestMeta) (*RecordResult, error) {
	country := r.classifier.Country(meta.RemoteAddr)
	device := r.classifier.Device(meta.UserAgent, meta.PlatformHint)

	isNew, token := r.visitors.Resolve(meta.VisitorToken)

	event := &model.ClickEvent{
		ID:          uuid.New().String(),
		AccountID:   account.ID,
		LinkID:      link.ID,
		VisitorID:   token,
		CountryCode: country,
		DeviceClass: device,
		ClickedAt:   r.now(),
	}

	start := time.Now()
	if err := r.accounts.RecordClick(ctx, event, isNew); err != nil {
		return nil, fmt.Errorf("record click: %w", err)
	}
	infraprom.ClickRecordSeconds.Observe(time.Since(start).Seconds())

	if isNew {
		infraprom.NewVisitorsTotal.Inc()
	}

	// The event is durable; the stream is telemetry fan-out only.
	if r.publisher != nil {
		go func(ev model.ClickEvent) {
			if err := r.publisher.Publish(&ev); err != nil {
				r.logger.Error("failed to publish click event",
					zap.String("id", ev.ID),
					zap.Error(err))
			}
		}(*event)
	}

	return &RecordResult{
		DestinationURL: link.DestinationURL,
		VisitorToken:   token,
		NewVisitor:     isNew,
	}, nil
}
