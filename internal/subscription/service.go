package subscription

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alberthlima/saas-legal/internal/client"
	"github.com/alberthlima/saas-legal/internal/logger"
	"github.com/alberthlima/saas-legal/internal/membership"
	"github.com/alberthlima/saas-legal/internal/metrics"
	"github.com/alberthlima/saas-legal/internal/notify"
	"github.com/alberthlima/saas-legal/internal/storage"
)

// MaxVoucherSize caps payment voucher uploads at 5 MiB.
const MaxVoucherSize = 5 << 20

var (
	ErrVoucherTooLarge       = errors.New("voucher exceeds the size limit")
	ErrVoucherNotImage       = errors.New("voucher is not an image")
	ErrMembershipUnavailable = errors.New("membership is not available")
)

// FileStore is the slice of storage.Store the service needs.
type FileStore interface {
	Save(bucket, originalName string, r io.Reader) (string, error)
	Delete(relPath string) error
	URL(relPath string) string
}

// ClientDirectory resolves bot chats to client accounts.
type ClientDirectory interface {
	GetByID(ctx context.Context, id int64) (*client.Client, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*client.Client, error)
}

// MembershipCatalog looks up the plan a client wants to subscribe to.
type MembershipCatalog interface {
	GetByID(ctx context.Context, id int64) (*membership.Membership, error)
}

// VoucherUpload is an incoming voucher file, size-capped by the handler.
type VoucherUpload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// Service owns the subscription lifecycle rules on top of the
// repository: plan validation, the 30-day approval window, voucher file
// handling and the approval notification.
type Service struct {
	repo        Repository
	clients     ClientDirectory
	memberships MembershipCatalog
	files       FileStore
	notifier    notify.Notifier

	now func() time.Time
}

func NewService(repo Repository, clients ClientDirectory, memberships MembershipCatalog, files FileStore, notifier notify.Notifier) *Service {
	return &Service{
		repo:        repo,
		clients:     clients,
		memberships: memberships,
		files:       files,
		notifier:    notifier,
		now:         time.Now,
	}
}

// Subscribe creates a pending_payment subscription for the client behind
// the Telegram chat. Any previous pending intent of the same client is
// cancelled in the same transaction.
func (s *Service) Subscribe(ctx context.Context, telegramID, membershipID int64) (*Subscription, error) {
	cl, err := s.clients.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	plan, err := s.memberships.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	if plan.State != membership.StateActive {
		return nil, ErrMembershipUnavailable
	}

	sub, err := s.repo.StartIntent(ctx, cl.ID, plan.ID)
	if err != nil {
		return nil, err
	}

	metrics.RecordSubscriptionStarted(plan.Name)
	logger.Info("subscription intent created", "subscription_id", sub.ID, "client_id", cl.ID, "membership", plan.Name)
	return s.decorate(sub), nil
}

// Current returns the client's pending or active subscription.
func (s *Service) Current(ctx context.Context, telegramID int64) (*Subscription, error) {
	cl, err := s.clients.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	sub, err := s.repo.Current(ctx, cl.ID)
	if err != nil {
		return nil, err
	}
	return s.decorate(sub), nil
}

// CancelCurrent cancels the client's current subscription, whatever its
// status.
func (s *Service) CancelCurrent(ctx context.Context, telegramID int64) (*Subscription, error) {
	cl, err := s.clients.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	cur, err := s.repo.Current(ctx, cl.ID)
	if err != nil {
		return nil, err
	}
	sub, err := s.repo.Cancel(ctx, cur.ID)
	if err != nil {
		return nil, err
	}
	metrics.RecordSubscriptionCancelled()
	return s.decorate(sub), nil
}

// SetCategories replaces the category interests of the client's current
// subscription.
func (s *Service) SetCategories(ctx context.Context, telegramID int64, categoryIDs []int64) error {
	cl, err := s.clients.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return err
	}
	cur, err := s.repo.Current(ctx, cl.ID)
	if err != nil {
		return err
	}
	return s.repo.SetCategories(ctx, cur.ID, categoryIDs)
}

// UploadVoucher stores the payment proof on the client's current
// subscription. Re-uploads replace the previous file on disk.
func (s *Service) UploadVoucher(ctx context.Context, telegramID int64, upload VoucherUpload) (*Subscription, error) {
	if upload.Size > MaxVoucherSize {
		return nil, ErrVoucherTooLarge
	}

	cl, err := s.clients.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	cur, err := s.repo.Current(ctx, cl.ID)
	if err != nil {
		return nil, err
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(upload.Reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]
	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return nil, ErrVoucherNotImage
	}

	body := io.MultiReader(bytes.NewReader(head), io.LimitReader(upload.Reader, MaxVoucherSize))
	path, err := s.files.Save(storage.BucketVouchers, upload.Filename, body)
	if err != nil {
		return nil, err
	}

	if cur.Voucher != nil {
		if err := s.files.Delete(*cur.Voucher); err != nil {
			logger.Error("failed to delete replaced voucher", "path", *cur.Voucher, "err", err)
		}
	}

	sub, err := s.repo.UpdateVoucher(ctx, cur.ID, path)
	if err != nil {
		return nil, err
	}

	metrics.RecordVoucherUploaded()
	logger.Info("voucher uploaded", "subscription_id", sub.ID, "path", path)
	return s.decorate(sub), nil
}

// Approve activates a subscription. The window always restarts at the
// moment of approval, even when re-approving an already active one. The
// client is notified best effort; delivery failures never fail the
// approval.
func (s *Service) Approve(ctx context.Context, subID int64) (*Subscription, error) {
	start := s.now()
	end := start.AddDate(0, 0, approvalWindowDays)

	sub, err := s.repo.Approve(ctx, subID, start, end)
	if err != nil {
		return nil, err
	}
	metrics.RecordSubscriptionApproved()
	logger.Info("subscription approved", "subscription_id", sub.ID, "end_date", end.Format("2006-01-02"))

	if cl, err := s.clients.GetByID(ctx, sub.ClientID); err != nil {
		logger.Error("failed to load client for approval notice", "client_id", sub.ClientID, "err", err)
	} else {
		text := fmt.Sprintf("✅ ¡Tu suscripción ha sido aprobada! Está activa hasta el %s.", end.Format("02/01/2006"))
		notify.BestEffort(ctx, s.notifier, cl.TelegramID, text)
	}

	return s.decorate(sub), nil
}

// Cancel is the admin-side cancellation by subscription id.
func (s *Service) Cancel(ctx context.Context, subID int64) (*Subscription, error) {
	sub, err := s.repo.Cancel(ctx, subID)
	if err != nil {
		return nil, err
	}
	metrics.RecordSubscriptionCancelled()
	return s.decorate(sub), nil
}

func (s *Service) Get(ctx context.Context, subID int64) (*Subscription, error) {
	sub, err := s.repo.GetByID(ctx, subID)
	if err != nil {
		return nil, err
	}
	return s.decorate(sub), nil
}

func (s *Service) CategoryIDs(ctx context.Context, telegramID int64) ([]int64, error) {
	cl, err := s.clients.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	cur, err := s.repo.Current(ctx, cl.ID)
	if err != nil {
		return nil, err
	}
	return s.repo.CategoryIDs(ctx, cur.ID)
}

func (s *Service) List(ctx context.Context, search string) ([]AdminRow, error) {
	return s.repo.List(ctx, search)
}

func (s *Service) Delete(ctx context.Context, subID int64) error {
	return s.repo.SoftDelete(ctx, subID)
}

func (s *Service) decorate(sub *Subscription) *Subscription {
	if sub.Voucher != nil {
		url := s.files.URL(*sub.Voucher)
		sub.VoucherURL = &url
	}
	return sub
}
