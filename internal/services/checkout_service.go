package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/repositories"
)

var (
	errCheckoutSessionsRequired = errors.New("checkout service: session repository is required")
	errCheckoutCartsRequired    = errors.New("checkout service: cart repository is required")
	errCheckoutOrdersRequired   = errors.New("checkout service: order repository is required")
	errCheckoutClockRequired    = errors.New("checkout service: clock is required")
)

// ErrCheckoutInvalidInput indicates the caller supplied invalid input.
var ErrCheckoutInvalidInput = errors.New("checkout service: invalid input")

// ErrCheckoutNotFound indicates the checkout session does not exist.
var ErrCheckoutNotFound = errors.New("checkout service: not found")

// ErrCheckoutUnavailable indicates the checkout service cannot fulfil the request.
var ErrCheckoutUnavailable = errors.New("checkout service: unavailable")

// ErrCheckoutEmptyCart indicates checkout was attempted with no cart lines.
var ErrCheckoutEmptyCart = errors.New("checkout service: cart is empty")

// ErrCheckoutWrongStep indicates the operation is not valid in the session's current step.
var ErrCheckoutWrongStep = errors.New("checkout service: operation not valid in current step")

// ErrCheckoutMissingFields indicates required form fields were blank.
var ErrCheckoutMissingFields = errors.New("checkout service: required fields missing")

const (
	shippingWindow = "3-5 business days"
	pickupWindow   = "ready in 2 hours"
)

// CheckoutService drives the multi-step checkout flow.
type CheckoutService interface {
	Start(ctx context.Context, ownerKey string) (domain.CheckoutSession, error)
	Get(ctx context.Context, sessionID string) (domain.CheckoutSession, error)
	SelectDelivery(ctx context.Context, sessionID string, option domain.DeliveryOption) (domain.CheckoutSession, error)
	SubmitShipping(ctx context.Context, sessionID string, info domain.ShippingInfo) (domain.CheckoutSession, error)
	SubmitPayment(ctx context.Context, sessionID string, payment domain.PaymentInfo) (domain.Order, error)
	Back(ctx context.Context, sessionID string) (domain.CheckoutSession, error)
}

// CheckoutServiceDeps wires persistence and identity generation for checkout.
type CheckoutServiceDeps struct {
	Sessions    repositories.CheckoutSessionRepository
	Carts       repositories.CartRepository
	Orders      repositories.OrderRepository
	Clock       func() time.Time
	IDGenerator func() string
	OrderNumber func() int
	Logger      func(context.Context, string, map[string]any)
}

type checkoutService struct {
	sessions    repositories.CheckoutSessionRepository
	carts       repositories.CartRepository
	orders      repositories.OrderRepository
	now         func() time.Time
	newID       func() string
	orderNumber func() int
	logger      func(context.Context, string, map[string]any)
}

// NewCheckoutService constructs a CheckoutService enforcing dependency validation.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Sessions == nil {
		return nil, errCheckoutSessionsRequired
	}
	if deps.Carts == nil {
		return nil, errCheckoutCartsRequired
	}
	if deps.Orders == nil {
		return nil, errCheckoutOrdersRequired
	}
	if deps.Clock == nil {
		return nil, errCheckoutClockRequired
	}

	newID := deps.IDGenerator
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}

	orderNumber := deps.OrderNumber
	if orderNumber == nil {
		orderNumber = func() int { return rand.Intn(1000000) }
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &checkoutService{
		sessions:    deps.Sessions,
		carts:       deps.Carts,
		orders:      deps.Orders,
		now:         func() time.Time { return deps.Clock().UTC() },
		newID:       newID,
		orderNumber: orderNumber,
		logger:      logger,
	}, nil
}

// Start opens a checkout session for a non-empty cart.
func (s *checkoutService) Start(ctx context.Context, ownerKey string) (domain.CheckoutSession, error) {
	ownerKey = strings.TrimSpace(ownerKey)
	if ownerKey == "" {
		return domain.CheckoutSession{}, ErrCheckoutInvalidInput
	}

	cart, err := s.carts.Get(ctx, ownerKey)
	if err != nil && !isRepoNotFound(err) {
		return domain.CheckoutSession{}, s.translateRepoError(err)
	}
	if len(cart.Lines) == 0 {
		return domain.CheckoutSession{}, ErrCheckoutEmptyCart
	}

	now := s.now()
	session := domain.CheckoutSession{
		ID:        s.newID(),
		OwnerKey:  ownerKey,
		Step:      domain.StepDeliveryOption,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.CheckoutSession{}, s.translateRepoError(err)
	}

	s.logger(ctx, "checkout.started", map[string]any{
		"session_id": session.ID,
		"owner_key":  ownerKey,
	})
	return session, nil
}

// Get returns the session state.
func (s *checkoutService) Get(ctx context.Context, sessionID string) (domain.CheckoutSession, error) {
	return s.load(ctx, sessionID)
}

// SelectDelivery records the fulfilment mode and advances the flow. Pickup
// skips the shipping-info step entirely.
func (s *checkoutService) SelectDelivery(ctx context.Context, sessionID string, option domain.DeliveryOption) (domain.CheckoutSession, error) {
	if option != domain.DeliveryShipping && option != domain.DeliveryPickup {
		return domain.CheckoutSession{}, ErrCheckoutInvalidInput
	}

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.CheckoutSession{}, err
	}
	if session.Step != domain.StepDeliveryOption {
		return domain.CheckoutSession{}, ErrCheckoutWrongStep
	}

	session.DeliveryOption = &option
	if option == domain.DeliveryPickup {
		session.Step = domain.StepPaymentInfo
		session.ShippingInfo = nil
	} else {
		session.Step = domain.StepShippingInfo
	}

	return s.persist(ctx, session)
}

// SubmitShipping records the shipping form. All fields must be present; only
// presence is validated.
func (s *checkoutService) SubmitShipping(ctx context.Context, sessionID string, info domain.ShippingInfo) (domain.CheckoutSession, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.CheckoutSession{}, err
	}
	if session.Step != domain.StepShippingInfo {
		return domain.CheckoutSession{}, ErrCheckoutWrongStep
	}

	if anyBlank(info.FirstName, info.LastName, info.Address, info.City, info.State, info.ZipCode, info.Email, info.Phone) {
		return domain.CheckoutSession{}, ErrCheckoutMissingFields
	}

	session.ShippingInfo = &info
	session.Step = domain.StepPaymentInfo
	return s.persist(ctx, session)
}

// SubmitPayment validates the payment form for presence only, places the
// synthetic order, clears the cart, and moves the session to confirmation.
func (s *checkoutService) SubmitPayment(ctx context.Context, sessionID string, payment domain.PaymentInfo) (domain.Order, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Order{}, err
	}
	if session.Step != domain.StepPaymentInfo {
		return domain.Order{}, ErrCheckoutWrongStep
	}
	if session.DeliveryOption == nil {
		return domain.Order{}, ErrCheckoutWrongStep
	}

	if anyBlank(payment.CardNumber, payment.CardholderName, payment.ExpiryDate, payment.CVV) {
		return domain.Order{}, ErrCheckoutMissingFields
	}

	cart, err := s.carts.Get(ctx, session.OwnerKey)
	if err != nil && !isRepoNotFound(err) {
		return domain.Order{}, s.translateRepoError(err)
	}
	if len(cart.Lines) == 0 {
		return domain.Order{}, ErrCheckoutEmptyCart
	}

	window := shippingWindow
	if *session.DeliveryOption == domain.DeliveryPickup {
		window = pickupWindow
	}

	order := domain.Order{
		OrderID:        fmt.Sprintf("ORD-%d", s.orderNumber()),
		OwnerKey:       session.OwnerKey,
		DeliveryOption: *session.DeliveryOption,
		ShippingInfo:   session.ShippingInfo,
		Lines:          cart.Lines,
		Total:          RoundPrice(CartTotal(cart.Lines)),
		Window:         window,
		PlacedAt:       s.now(),
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return domain.Order{}, s.translateRepoError(err)
	}
	if err := s.carts.Delete(ctx, session.OwnerKey); err != nil {
		return domain.Order{}, s.translateRepoError(err)
	}

	session.Step = domain.StepConfirmation
	if _, err := s.persist(ctx, session); err != nil {
		return domain.Order{}, err
	}

	s.logger(ctx, "checkout.order_placed", map[string]any{
		"session_id": session.ID,
		"order_id":   order.OrderID,
		"total":      order.Total,
		"delivery":   string(order.DeliveryOption),
	})
	return order, nil
}

// Back steps the flow backwards. Pickup sessions return straight to the
// delivery-option step; confirmation is terminal.
func (s *checkoutService) Back(ctx context.Context, sessionID string) (domain.CheckoutSession, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.CheckoutSession{}, err
	}

	switch session.Step {
	case domain.StepShippingInfo:
		session.Step = domain.StepDeliveryOption
	case domain.StepPaymentInfo:
		if session.DeliveryOption != nil && *session.DeliveryOption == domain.DeliveryPickup {
			session.Step = domain.StepDeliveryOption
		} else {
			session.Step = domain.StepShippingInfo
		}
	default:
		return domain.CheckoutSession{}, ErrCheckoutWrongStep
	}

	return s.persist(ctx, session)
}

func (s *checkoutService) load(ctx context.Context, sessionID string) (domain.CheckoutSession, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.CheckoutSession{}, ErrCheckoutInvalidInput
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.CheckoutSession{}, s.translateRepoError(err)
	}
	return session, nil
}

func (s *checkoutService) persist(ctx context.Context, session domain.CheckoutSession) (domain.CheckoutSession, error) {
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.CheckoutSession{}, s.translateRepoError(err)
	}
	return session, nil
}

func (s *checkoutService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		if repoErr.IsNotFound() {
			return ErrCheckoutNotFound
		}
		return ErrCheckoutUnavailable
	}
	return ErrCheckoutUnavailable
}

func anyBlank(values ...string) bool {
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			return true
		}
	}
	return false
}
