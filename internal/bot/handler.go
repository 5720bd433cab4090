// Package bot is the REST surface consumed by the Telegram bot. It is
// a thin gateway: request parsing and response shaping live here, the
// rules live in the domain packages.
package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alberthlima/saas-legal/internal/api"
	"github.com/alberthlima/saas-legal/internal/category"
	"github.com/alberthlima/saas-legal/internal/client"
	"github.com/alberthlima/saas-legal/internal/logger"
	"github.com/alberthlima/saas-legal/internal/membership"
	"github.com/alberthlima/saas-legal/internal/metrics"
	"github.com/alberthlima/saas-legal/internal/notify"
	"github.com/alberthlima/saas-legal/internal/setting"
	"github.com/alberthlima/saas-legal/internal/subscription"
)

type ClientStore interface {
	Register(ctx context.Context, p client.RegisterParams) (*client.Client, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*client.Client, error)
}

type MembershipStore interface {
	ListActive(ctx context.Context) ([]membership.Membership, error)
	GetByID(ctx context.Context, id int64) (*membership.Membership, error)
}

type CategoryStore interface {
	ListActive(ctx context.Context) ([]category.Category, error)
}

// SubscriptionService is the lifecycle API the bot drives on behalf of
// a chat.
type SubscriptionService interface {
	Subscribe(ctx context.Context, telegramID, membershipID int64) (*subscription.Subscription, error)
	Current(ctx context.Context, telegramID int64) (*subscription.Subscription, error)
	CancelCurrent(ctx context.Context, telegramID int64) (*subscription.Subscription, error)
	SetCategories(ctx context.Context, telegramID int64, categoryIDs []int64) error
	CategoryIDs(ctx context.Context, telegramID int64) ([]int64, error)
	UploadVoucher(ctx context.Context, telegramID int64, upload subscription.VoucherUpload) (*subscription.Subscription, error)
}

type SettingsStore interface {
	Get(ctx context.Context) (*setting.Setting, error)
}

type URLResolver interface {
	URL(relPath string) string
}

type Handler struct {
	clients       ClientStore
	memberships   MembershipStore
	categories    CategoryStore
	subscriptions SubscriptionService
	settings      SettingsStore
	urls          URLResolver
	notifier      notify.Notifier
}

func NewHandler(
	clients ClientStore,
	memberships MembershipStore,
	categories CategoryStore,
	subscriptions SubscriptionService,
	settings SettingsStore,
	urls URLResolver,
	notifier notify.Notifier,
) *Handler {
	return &Handler{
		clients:       clients,
		memberships:   memberships,
		categories:    categories,
		subscriptions: subscriptions,
		settings:      settings,
		urls:          urls,
		notifier:      notifier,
	}
}

// CheckClient tells the bot whether a chat already has an account. The
// bot calls this on /start to decide between onboarding and the main
// menu.
func (h *Handler) CheckClient(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram id"})
		return
	}

	cl, err := h.clients.GetByTelegramID(c.Request.Context(), telegramID)
	if errors.Is(err, client.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}
	if err != nil {
		logger.Errorf("Failed to check client %d: %v", telegramID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check client"})
		return
	}

	resp := gin.H{"exists": true, "client": cl, "current_subscription": nil}

	sub, err := h.subscriptions.Current(c.Request.Context(), telegramID)
	switch {
	case errors.Is(err, subscription.ErrNoCurrent):
	case err != nil:
		logger.Errorf("Failed to load current subscription for %d: %v", telegramID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check client"})
		return
	default:
		cur := currentSubscription{Subscription: sub}
		if m, err := h.memberships.GetByID(c.Request.Context(), sub.MembershipID); err == nil {
			cur.Membership = m
		} else {
			logger.Errorf("Failed to load membership %d: %v", sub.MembershipID, err)
		}
		resp["current_subscription"] = cur
	}

	c.JSON(http.StatusOK, resp)
}

// currentSubscription is the check-client payload: the subscription
// fields with the plan embedded under "membership".
type currentSubscription struct {
	*subscription.Subscription
	Membership *membership.Membership `json:"membership,omitempty"`
}

func (h *Handler) RegisterClient(c *gin.Context) {
	var p client.RegisterParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": api.ValidationMessage(err)})
		return
	}

	cl, err := h.clients.Register(c.Request.Context(), p)
	if errors.Is(err, client.ErrDuplicateTelegramID) {
		c.JSON(http.StatusConflict, gin.H{"message": "El cliente ya está registrado"})
		return
	}
	if err != nil {
		logger.Errorf("Failed to register client: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register client"})
		return
	}

	metrics.RecordClientRegistered()
	c.JSON(http.StatusOK, gin.H{
		"message": "Cliente registrado exitosamente",
		"client":  cl,
	})
}

// Memberships lists the plans the bot offers, cheapest first.
func (h *Handler) Memberships(c *gin.Context) {
	plans, err := h.memberships.ListActive(c.Request.Context())
	if err != nil {
		logger.Errorf("Failed to list memberships for bot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load memberships"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"memberships": plans})
}

type subscribeParams struct {
	TelegramID   int64 `json:"telegram_id" binding:"required"`
	MembershipID int64 `json:"membership_id" binding:"required"`
}

func (h *Handler) Subscribe(c *gin.Context) {
	var p subscribeParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": api.ValidationMessage(err)})
		return
	}

	sub, err := h.subscriptions.Subscribe(c.Request.Context(), p.TelegramID, p.MembershipID)
	switch {
	case errors.Is(err, client.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Cliente no encontrado"})
		return
	case errors.Is(err, membership.ErrNotFound), errors.Is(err, subscription.ErrMembershipUnavailable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "La membresía seleccionada no está disponible"})
		return
	case err != nil:
		logger.Errorf("Failed to create subscription for %d: %v", p.TelegramID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Suscripción creada, pendiente de pago",
		"subscription": sub,
	})
}

type telegramIDParams struct {
	TelegramID int64 `json:"telegram_id" binding:"required"`
}

func (h *Handler) CancelSubscription(c *gin.Context) {
	var p telegramIDParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": api.ValidationMessage(err)})
		return
	}

	sub, err := h.subscriptions.CancelCurrent(c.Request.Context(), p.TelegramID)
	switch {
	case errors.Is(err, client.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Cliente no encontrado"})
		return
	case errors.Is(err, subscription.ErrNoCurrent):
		c.JSON(http.StatusNotFound, gin.H{"message": "No hay suscripción activa para cancelar"})
		return
	case err != nil:
		logger.Errorf("Failed to cancel subscription for %d: %v", p.TelegramID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Suscripción cancelada exitosamente",
		"subscription": sub,
	})
}

func (h *Handler) Categories(c *gin.Context) {
	cats, err := h.categories.ListActive(c.Request.Context())
	if err != nil {
		logger.Errorf("Failed to list categories for bot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

type setCategoriesParams struct {
	TelegramID  int64   `json:"telegram_id" binding:"required"`
	CategoryIDs []int64 `json:"category_ids"`
}

// SetCategories replaces the interest set of the chat's current
// subscription. Sending an empty list clears it.
func (h *Handler) SetCategories(c *gin.Context) {
	var p setCategoriesParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": api.ValidationMessage(err)})
		return
	}

	err := h.subscriptions.SetCategories(c.Request.Context(), p.TelegramID, p.CategoryIDs)
	switch {
	case errors.Is(err, client.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Cliente no encontrado"})
		return
	case errors.Is(err, subscription.ErrNoCurrent):
		c.JSON(http.StatusNotFound, gin.H{"message": "No hay una suscripción vigente"})
		return
	case errors.Is(err, subscription.ErrCategoryNotFound):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Categoría no encontrada"})
		return
	case err != nil:
		logger.Errorf("Failed to set categories for %d: %v", p.TelegramID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set categories"})
		return
	}

	ids, err := h.subscriptions.CategoryIDs(c.Request.Context(), p.TelegramID)
	if err != nil {
		logger.Errorf("Failed to reload categories for %d: %v", p.TelegramID, err)
		ids = p.CategoryIDs
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Categorías actualizadas exitosamente",
		"category_ids": ids,
	})
}

// UploadVoucher receives the payment proof as a multipart form with a
// telegram_id field and a voucher file.
func (h *Handler) UploadVoucher(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.PostForm("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram id"})
		return
	}

	file, err := c.FormFile("voucher")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "El comprobante de pago es obligatorio"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read voucher"})
		return
	}
	defer src.Close()

	sub, err := h.subscriptions.UploadVoucher(c.Request.Context(), telegramID, subscription.VoucherUpload{
		Filename: file.Filename,
		Size:     file.Size,
		Reader:   src,
	})
	switch {
	case errors.Is(err, client.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Cliente no encontrado"})
		return
	case errors.Is(err, subscription.ErrNoCurrent):
		c.JSON(http.StatusNotFound, gin.H{"message": "No hay una suscripción pendiente de pago"})
		return
	case errors.Is(err, subscription.ErrVoucherTooLarge):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "El comprobante supera el tamaño máximo de 5 MB"})
		return
	case errors.Is(err, subscription.ErrVoucherNotImage):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "El comprobante debe ser una imagen"})
		return
	case err != nil:
		logger.Errorf("Failed to upload voucher for %d: %v", telegramID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload voucher"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Comprobante recibido, en espera de aprobación",
		"subscription": sub,
	})
}

// NotifyPayment pings the admin chat that a client reports having paid.
// The notice is best effort; the voucher is already stored either way.
func (h *Handler) NotifyPayment(c *gin.Context) {
	var p telegramIDParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": api.ValidationMessage(err)})
		return
	}

	cl, err := h.clients.GetByTelegramID(c.Request.Context(), p.TelegramID)
	if errors.Is(err, client.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Cliente no encontrado"})
		return
	}
	if err != nil {
		logger.Errorf("Failed to load client %d: %v", p.TelegramID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load client"})
		return
	}

	s, err := h.settings.Get(c.Request.Context())
	if err != nil {
		logger.Errorf("Failed to load settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}

	text := fmt.Sprintf("💰 <b>%s</b> reporta haber realizado el pago de su suscripción. Revisa el comprobante en el panel.", cl.Name)
	notify.BestEffort(c.Request.Context(), h.notifier, s.AdminTelegramID, text)

	c.JSON(http.StatusOK, gin.H{"message": "Notificación de pago enviada"})
}

// Settings exposes the payment details the bot shows before a voucher
// upload.
func (h *Handler) Settings(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context())
	if err != nil {
		logger.Errorf("Failed to load settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}

	resp := gin.H{
		"contact_name":  s.ContactName,
		"telegram_user": s.TelegramUser,
		"bank_details":  s.BankDetails,
	}
	if s.QR != nil {
		resp["qr_url"] = h.urls.URL(*s.QR)
	}

	c.JSON(http.StatusOK, gin.H{"settings": resp})
}
