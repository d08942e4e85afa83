package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the authenticated account, replaced wholesale on every
// successful auth call and cleared on logout.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	IsAdmin bool   `json:"is_admin"`
}

// Event is backend reference data. The client never mutates it.
type Event struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Location    string          `json:"location"`
	Organizer   string          `json:"organizer"`
}

type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderApproved OrderStatus = "approved"
	OrderRejected OrderStatus = "rejected"
)

// Decided reports whether the status is terminal. pending -> approved
// and pending -> rejected are the only legal transitions.
func (s OrderStatus) Decided() bool {
	return s == OrderApproved || s == OrderRejected
}

func (s OrderStatus) Valid() bool {
	return s == OrderPending || s == OrderApproved || s == OrderRejected
}

type Order struct {
	ID                  string               `json:"id"`
	Event               Event                `json:"event"`
	Quantity            int                  `json:"quantity"`
	TotalAmount         decimal.Decimal      `json:"total_amount"`
	PaymentMethod       string               `json:"payment_method"`
	Status              OrderStatus          `json:"status"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
	Tickets             []Ticket             `json:"tickets,omitempty"`
	PaymentConfirmation *PaymentConfirmation `json:"payment_confirmation,omitempty"`
}

// TicketOrder is the order context the backend embeds in each ticket.
type TicketOrder struct {
	ID       string      `json:"id"`
	Status   OrderStatus `json:"status"`
	Event    TicketEvent `json:"event"`
	Quantity int         `json:"quantity"`
}

type TicketEvent struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
}

// Ticket is one admission unit. TicketID is the scannable identifier,
// distinct from the record id. IsUsed only ever flips false -> true.
type Ticket struct {
	ID        string      `json:"id"`
	TicketID  string      `json:"ticket_id"`
	QRCode    string      `json:"qr_code,omitempty"`
	IsUsed    bool        `json:"is_used"`
	CreatedAt time.Time   `json:"created_at"`
	Order     TicketOrder `json:"order"`
}

const (
	PaymentMethodBank        = "bank"
	PaymentMethodMobileMoney = "mobile_money"
)

// KnownPaymentMethod reports whether the method is one the manual
// payment flow supports.
func KnownPaymentMethod(method string) bool {
	return method == PaymentMethodBank || method == PaymentMethodMobileMoney
}

// PaymentMethod is a backend-provided catalog entry for manual payment.
type PaymentMethod struct {
	ID      string               `json:"id"`
	Type    string               `json:"type"` // bank, mobile_money
	Name    string               `json:"name"`
	Details PaymentMethodDetails `json:"details"`
}

type PaymentMethodDetails struct {
	AccountName   string `json:"account_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	Branch        string `json:"branch,omitempty"`
	SortCode      string `json:"sort_code,omitempty"`
	Number        string `json:"number,omitempty"`
	Network       string `json:"network,omitempty"`
}

// PaymentConfirmation is user-submitted proof of manual payment.
// At most one per order.
type PaymentConfirmation struct {
	ID                string    `json:"id"`
	OrderID           string    `json:"order_id"`
	TransactionID     string    `json:"transaction_id"`
	PaymentScreenshot string    `json:"payment_screenshot,omitempty"`
	ConfirmationNotes string    `json:"confirmation_notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
