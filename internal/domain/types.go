package domain

import (
	"time"
)

// Page defines standard offset paging inputs for list operations against
// the upstream catalog (translated to skip/limit on the wire).
type Page struct {
	Number int
	Limit  int
}

// Role enumerates the authorisation roles recognised by the route guards.
type Role string

const (
	// RoleAdmin bypasses both permission and role restrictions.
	RoleAdmin Role = "ADMIN"
	// RoleManager grants access to the admin product surface.
	RoleManager Role = "MANAGER"
	// RoleUser is the default role for authenticated sessions.
	RoleUser Role = "USER"
)

// CartLineItem is one product-quantity pairing owned by the cart aggregate.
// DiscountPercent is nil when the product carries no discount; StockLimit is
// nil when the upstream snapshot omitted stock.
type CartLineItem struct {
	ProductID       int      `json:"productId"`
	Title           string   `json:"title"`
	UnitPrice       float64  `json:"unitPrice"`
	Thumbnail       string   `json:"thumbnail"`
	Quantity        int      `json:"quantity"`
	DiscountPercent *float64 `json:"discountPercent,omitempty"`
	StockLimit      *int     `json:"stockLimit,omitempty"`
}

// PendingProduct is a transient product snapshot staged for confirmation
// before it becomes a cart line.
type PendingProduct struct {
	ProductID       int      `json:"productId"`
	Title           string   `json:"title"`
	UnitPrice       float64  `json:"unitPrice"`
	Thumbnail       string   `json:"thumbnail"`
	DiscountPercent *float64 `json:"discountPercent,omitempty"`
	StockLimit      *int     `json:"stockLimit,omitempty"`
}

// Cart is the owner-scoped cart aggregate. Pending holds a staged product
// snapshot awaiting confirmation before it becomes a line.
type Cart struct {
	OwnerKey  string          `json:"ownerKey"`
	Lines     []CartLineItem  `json:"lines"`
	Pending   *PendingProduct `json:"pending,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CommentOrigin distinguishes locally authored comments from read-only
// remote projections merged at display time.
type CommentOrigin string

const (
	// CommentOriginLocal marks comments created and persisted in this deployment.
	CommentOriginLocal CommentOrigin = "local"
	// CommentOriginRemote marks comments sourced from the upstream comment feed.
	CommentOriginRemote CommentOrigin = "remote-comment"
	// CommentOriginReview marks entries projected from upstream product reviews.
	CommentOriginReview CommentOrigin = "remote-review"
)

// Comment is a user-authored product comment. Only local-origin comments are
// mutable.
type Comment struct {
	ID         string        `json:"id"`
	ProductID  int           `json:"productId"`
	Body       string        `json:"body"`
	Rating     *float64      `json:"rating,omitempty"`
	AuthorName string        `json:"authorName"`
	CreatedAt  time.Time     `json:"createdAt"`
	Origin     CommentOrigin `json:"origin"`
}

// ManagedProduct is an admin-managed catalog record persisted locally,
// independent of the upstream catalog.
type ManagedProduct struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	UnitPrice       float64  `json:"unitPrice"`
	DiscountPercent float64  `json:"discountPercent"`
	Rating          float64  `json:"rating"`
	Stock           int      `json:"stock"`
	Brand           string   `json:"brand"`
	Category        string   `json:"category"`
	Thumbnail       string   `json:"thumbnail"`
	Images          []string `json:"images"`
}

// DeliveryOption selects between the two mutually exclusive fulfilment modes.
type DeliveryOption string

const (
	// DeliveryShipping routes checkout through the shipping-info step.
	DeliveryShipping DeliveryOption = "shipping"
	// DeliveryPickup skips the shipping-info step entirely.
	DeliveryPickup DeliveryOption = "pickup"
)

// CheckoutStep identifies a state of the checkout flow.
type CheckoutStep string

const (
	// StepDeliveryOption is the initial checkout state.
	StepDeliveryOption CheckoutStep = "DELIVERY_OPTION"
	// StepShippingInfo collects the shipping form; reachable only for shipping delivery.
	StepShippingInfo CheckoutStep = "SHIPPING_INFO"
	// StepPaymentInfo collects the simulated payment form.
	StepPaymentInfo CheckoutStep = "PAYMENT_INFO"
	// StepConfirmation is terminal for the session.
	StepConfirmation CheckoutStep = "CONFIRMATION"
)

// ShippingInfo carries the shipping form fields. All fields are required;
// only presence is validated.
type ShippingInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// PaymentInfo carries the simulated payment form fields. No semantic card
// validation is performed anywhere.
type PaymentInfo struct {
	CardNumber     string `json:"cardNumber"`
	CardholderName string `json:"cardholderName"`
	ExpiryDate     string `json:"expiryDate"`
	CVV            string `json:"cvv"`
}

// CheckoutSession tracks one in-flight checkout flow. The session references
// the owner cart rather than copying its lines; the cart is read at order
// placement.
type CheckoutSession struct {
	ID             string          `json:"id"`
	OwnerKey       string          `json:"ownerKey"`
	Step           CheckoutStep    `json:"step"`
	DeliveryOption *DeliveryOption `json:"deliveryOption,omitempty"`
	ShippingInfo   *ShippingInfo   `json:"shippingInfo,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Order is the synthetic order produced on payment submission.
type Order struct {
	OrderID        string         `json:"orderId"`
	OwnerKey       string         `json:"ownerKey"`
	DeliveryOption DeliveryOption `json:"deliveryOption"`
	ShippingInfo   *ShippingInfo  `json:"shippingInfo,omitempty"`
	Lines          []CartLineItem `json:"lines"`
	Total          float64        `json:"total"`
	Window         string         `json:"window"`
	PlacedAt       time.Time      `json:"placedAt"`
}

// User is the authenticated principal held for the session lifetime.
type User struct {
	ID          int      `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Role        Role     `json:"role"`
	Permissions []string `json:"permissions"`
}

// Product is a typed projection of an upstream catalog product.
type Product struct {
	ID              int      `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	DiscountPercent float64  `json:"discountPercentage"`
	Rating          float64  `json:"rating"`
	Stock           int      `json:"stock"`
	Brand           string   `json:"brand"`
	Category        string   `json:"category"`
	Thumbnail       string   `json:"thumbnail"`
	Images          []string `json:"images"`
}

// ProductPage is one page of the upstream product listing.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// DashboardStats aggregates the managed product collection for the admin
// dashboard panel.
type DashboardStats struct {
	ProductCount    int     `json:"productCount"`
	TotalStockValue float64 `json:"totalStockValue"`
	AverageRating   float64 `json:"averageRating"`
	LowStockCount   int     `json:"lowStockCount"`
	TotalUsers      int     `json:"totalUsers"`
	CartRevenue     float64 `json:"cartRevenue"`
}

// ActivityUser is one entry of the dashboard's recent user feed.
type ActivityUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// ActivityCart is one entry of the dashboard's recent cart feed.
type ActivityCart struct {
	ID        int     `json:"id"`
	UserID    int     `json:"userId"`
	UserName  string  `json:"userName"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"itemCount"`
}

// ActivityComment is one entry of the dashboard's recent comment feed.
type ActivityComment struct {
	ID         int    `json:"id"`
	Body       string `json:"body"`
	AuthorName string `json:"authorName"`
}

// DashboardActivity is the recent-activity panel of the admin dashboard.
type DashboardActivity struct {
	RecentUsers    []ActivityUser    `json:"recentUsers"`
	RecentCarts    []ActivityCart    `json:"recentCarts"`
	RecentComments []ActivityComment `json:"recentComments"`
}
