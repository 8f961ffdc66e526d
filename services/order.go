package services

import (
	"context"

	"marketplace/apperr"
	"marketplace/models"
	"marketplace/repository"
)

// Default page sizes for order listings.
const (
	DefaultPageSize      = 10
	AdminDefaultPageSize = 20
)

// OrderService builds immutable orders from cart snapshots and owns the
// order status state machine.
type OrderService struct {
	orders repository.OrderRepository
	cart   *CartService
}

func NewOrderService(orders repository.OrderRepository, cart *CartService) *OrderService {
	return &OrderService{orders: orders, cart: cart}
}

// CreateFromCart snapshots the user's cart into a new PENDING order and
// then clears the cart. The cart is only cleared after the order insert
// succeeded; a failed insert leaves the cart intact.
func (s *OrderService) CreateFromCart(ctx context.Context, user *models.User) (*models.Order, error) {
	if user == nil {
		return nil, apperr.E(apperr.Unauthenticated, "You must be logged in to place an order")
	}

	cart, err := s.cart.GetOrCreateCart(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperr.E(apperr.InvalidState, "Cart is empty")
	}

	order := models.NewOrder(user.ID, user.Email, user.FullName, cart.Items, cart.Total())
	order.ShippingAddress = user.Address
	order.PhoneNumber = user.PhoneNumber

	saved, err := s.orders.Insert(ctx, order)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to create order", err)
	}

	if err := s.cart.ClearCart(ctx, user.ID); err != nil {
		return nil, err
	}
	return saved, nil
}

// UpdateStatus applies a status transition and persists the order.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	order, err := s.getExisting(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.SetStatus(status)

	updated, err := s.orders.Update(ctx, order)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to update order", err)
	}
	return updated, nil
}

// AttachPaymentInfo records the provider's transaction and payment ids
// and forces the order to CONFIRMED regardless of its prior status.
func (s *OrderService) AttachPaymentInfo(ctx context.Context, orderID, transactionID, paymentID string) (*models.Order, error) {
	order, err := s.getExisting(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.PaypalTransactionID = transactionID
	order.PaypalPaymentID = paymentID
	order.SetStatus(models.OrderConfirmed)

	updated, err := s.orders.Update(ctx, order)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to update order", err)
	}
	return updated, nil
}

func (s *OrderService) getExisting(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to load order", err)
	}
	if order == nil {
		return nil, apperr.E(apperr.NotFound, "Order not found")
	}
	return order, nil
}

// GetByID fetches a single order.
func (s *OrderService) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	return s.getExisting(ctx, orderID)
}

// ListUserOrders returns all of a user's orders, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	if userID == "" {
		return nil, apperr.E(apperr.Unauthenticated, "You must be logged in")
	}
	orders, err := s.orders.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to load orders", err)
	}
	return orders, nil
}

// ListUserOrdersPage returns one page of a user's orders, newest first.
func (s *OrderService) ListUserOrdersPage(ctx context.Context, userID string, page, size int) ([]models.Order, error) {
	if userID == "" {
		return nil, apperr.E(apperr.Unauthenticated, "You must be logged in")
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 0 {
		page = 0
	}
	orders, err := s.orders.FindByUserIDPage(ctx, userID, page, size)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to load orders", err)
	}
	return orders, nil
}

// ListAllPage returns one page over every order, newest first.
func (s *OrderService) ListAllPage(ctx context.Context, page, size int) ([]models.Order, error) {
	if size <= 0 {
		size = AdminDefaultPageSize
	}
	if page < 0 {
		page = 0
	}
	orders, err := s.orders.FindAllPage(ctx, page, size)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to load orders", err)
	}
	return orders, nil
}

// ListByStatus returns all orders in the given status, newest first.
func (s *OrderService) ListByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	orders, err := s.orders.FindByStatus(ctx, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to load orders", err)
	}
	return orders, nil
}

// CountByStatus counts orders in the given status.
func (s *OrderService) CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	count, err := s.orders.CountByStatus(ctx, status)
	if err != nil {
		return 0, apperr.Wrap(apperr.BackendUnavailable, "Failed to count orders", err)
	}
	return count, nil
}
