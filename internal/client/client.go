package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"eventpass/internal/config"
	"eventpass/internal/model"

	"github.com/google/uuid"
)

// TokenStore is the persisted credential slice the gateway needs:
// read both tokens, rotate the access token, wipe everything on
// irrecoverable auth failure.
type TokenStore interface {
	AccessToken() (string, error)
	RefreshToken() (string, error)
	SetAccessToken(token string) error
	Clear() error
}

// Backend is the single point of contact with the remote ticketing API.
type Backend interface {
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)

	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)

	CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error)

	ListTickets(ctx context.Context) ([]model.Ticket, error)
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)
	ValidateTicket(ctx context.Context, ticketID string) (*ValidateTicketResult, error)

	ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)
	SubmitPaymentConfirmation(ctx context.Context, orderID string, req PaymentConfirmationRequest) (*model.PaymentConfirmation, error)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Access  string
	Refresh string
	User    model.User
}

type CreateOrderRequest struct {
	EventID       string `json:"event_id"`
	Quantity      int    `json:"quantity"`
	PaymentMethod string `json:"payment_method"`
}

type ValidateTicketResult struct {
	Message string        `json:"message"`
	Ticket  *model.Ticket `json:"ticket,omitempty"`
}

// Screenshot is the optional image attached to a payment confirmation.
type Screenshot struct {
	Filename    string
	ContentType string
	Data        []byte
}

type PaymentConfirmationRequest struct {
	TransactionID string
	Notes         string
	Screenshot    *Screenshot
}

type backendClient struct {
	httpClient   *http.Client
	uploadClient *http.Client
	baseURL      string
	tokens       TokenStore
	logger       *slog.Logger

	// refreshMu serializes token refresh so a rotation fully completes
	// before any other request observes the new token.
	refreshMu sync.Mutex
}

func NewBackend(cfg *config.Backend, tokens TokenStore, logger *slog.Logger) Backend {
	return &backendClient{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		uploadClient: &http.Client{Timeout: cfg.UploadTimeout},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		tokens:       tokens,
		logger:       logger,
	}
}

type requestSpec struct {
	method      string
	path        string
	body        []byte
	contentType string
	auth        bool
	upload      bool
	out         any
}

// do sends one request. Authorized requests that come back 401 get
// exactly one refresh-and-retry; the retry is scoped to this request.
func (c *backendClient) do(ctx context.Context, spec requestSpec) error {
	hc := c.httpClient
	if spec.upload {
		hc = c.uploadClient
	}

	retried := false
	for {
		req, err := http.NewRequestWithContext(ctx, spec.method, c.baseURL+spec.path, bytes.NewReader(spec.body))
		if err != nil {
			return fmt.Errorf("build request %s %s: %w", spec.method, spec.path, err)
		}
		if spec.contentType != "" {
			req.Header.Set("Content-Type", spec.contentType)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", uuid.NewString())

		// Attach the bearer token just before send so a rotation done by
		// another request is observed here too.
		var sent string
		if spec.auth {
			sent = c.currentAccessToken(ctx)
			if sent != "" {
				req.Header.Set("Authorization", "Bearer "+sent)
			}
		}

		resp, err := hc.Do(req)
		if err != nil {
			return transportError(err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return transportError(err)
		}

		if resp.StatusCode == http.StatusUnauthorized && spec.auth && !retried {
			retried = true
			if err := c.recoverAuth(ctx, sent); err != nil {
				return err
			}
			continue
		}

		if resp.StatusCode >= 400 {
			apiErr := responseError(resp.StatusCode, body)
			// A 401 on an unauthenticated call (login, register) is a
			// credentials failure, not an expired session; there is no
			// token to refresh and nothing to log out.
			if !spec.auth && apiErr.Kind == KindAuthExpired {
				apiErr.Kind = KindValidation
				if apiErr.Message == sessionExpiredMessage {
					apiErr.Message = invalidCredentialsMessage
				}
			}
			c.logger.Debug("backend request failed",
				"method", spec.method, "path", spec.path,
				"status", resp.StatusCode, "kind", apiErr.Kind)
			return apiErr
		}

		if spec.out != nil {
			if err := json.Unmarshal(body, spec.out); err != nil {
				return fmt.Errorf("decode %s %s response: %w", spec.method, spec.path, err)
			}
		}
		return nil
	}
}

func (c *backendClient) postJSON(ctx context.Context, path string, in, out any, auth bool) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}
	return c.do(ctx, requestSpec{
		method:      http.MethodPost,
		path:        path,
		body:        body,
		contentType: "application/json",
		auth:        auth,
		out:         out,
	})
}

func (c *backendClient) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, requestSpec{method: http.MethodGet, path: path, auth: true, out: out})
}

// authUser is the wire shape of the user record on auth responses.
type authUser struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsAdmin   bool   `json:"is_admin"`
}

type authReply struct {
	Access  string   `json:"access"`
	Refresh string   `json:"refresh"`
	User    authUser `json:"user"`
}

func (u authUser) toModel() model.User {
	return model.User{
		ID:      u.ID,
		Name:    strings.TrimSpace(u.FirstName + " " + u.LastName),
		Email:   u.Email,
		Phone:   u.Phone,
		IsAdmin: u.IsAdmin,
	}
}

func (c *backendClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var reply authReply
	err := c.postJSON(ctx, "/auth/login/", LoginRequest{Email: email, Password: password}, &reply, false)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Access: reply.Access, Refresh: reply.Refresh, User: reply.User.toModel()}, nil
}

func (c *backendClient) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var reply authReply
	if err := c.postJSON(ctx, "/auth/register/", req, &reply, false); err != nil {
		return nil, err
	}
	return &AuthResponse{Access: reply.Access, Refresh: reply.Refresh, User: reply.User.toModel()}, nil
}

func (c *backendClient) ListEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	if err := c.getJSON(ctx, "/events/", &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *backendClient) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	if err := c.getJSON(ctx, "/events/"+id+"/", &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *backendClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.Order, error) {
	var order model.Order
	if err := c.postJSON(ctx, "/orders/", req, &order, true); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *backendClient) ListOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.getJSON(ctx, "/orders/list/", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *backendClient) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	if err := c.getJSON(ctx, "/orders/"+id+"/", &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *backendClient) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	body, err := json.Marshal(map[string]model.OrderStatus{"status": status})
	if err != nil {
		return nil, fmt.Errorf("marshal status update: %w", err)
	}
	var order model.Order
	err = c.do(ctx, requestSpec{
		method:      http.MethodPatch,
		path:        "/orders/" + id + "/",
		body:        body,
		contentType: "application/json",
		auth:        true,
		out:         &order,
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *backendClient) ListTickets(ctx context.Context) ([]model.Ticket, error) {
	var tickets []model.Ticket
	if err := c.getJSON(ctx, "/tickets/", &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (c *backendClient) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := c.getJSON(ctx, "/tickets/"+id+"/", &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (c *backendClient) ValidateTicket(ctx context.Context, ticketID string) (*ValidateTicketResult, error) {
	var result ValidateTicketResult
	err := c.postJSON(ctx, "/tickets/validate/", map[string]string{"ticket_id": ticketID}, &result, true)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *backendClient) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	if err := c.getJSON(ctx, "/payment-methods/", &methods); err != nil {
		return nil, err
	}
	return methods, nil
}

func (c *backendClient) SubmitPaymentConfirmation(ctx context.Context, orderID string, req PaymentConfirmationRequest) (*model.PaymentConfirmation, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	if err := form.WriteField("transaction_id", req.TransactionID); err != nil {
		return nil, fmt.Errorf("write transaction_id field: %w", err)
	}
	if req.Notes != "" {
		if err := form.WriteField("confirmation_notes", req.Notes); err != nil {
			return nil, fmt.Errorf("write confirmation_notes field: %w", err)
		}
	}
	if req.Screenshot != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="payment_screenshot"; filename="%s"`, screenshotName(req.Screenshot.Filename)))
		contentType := req.Screenshot.ContentType
		if contentType == "" {
			contentType = "image/jpeg"
		}
		header.Set("Content-Type", contentType)
		part, err := form.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("create screenshot part: %w", err)
		}
		if _, err := part.Write(req.Screenshot.Data); err != nil {
			return nil, fmt.Errorf("write screenshot part: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("close multipart form: %w", err)
	}

	var confirmation model.PaymentConfirmation
	err := c.do(ctx, requestSpec{
		method:      http.MethodPost,
		path:        "/payments/" + orderID + "/submit-confirmation/",
		body:        buf.Bytes(),
		contentType: form.FormDataContentType(),
		auth:        true,
		upload:      true,
		out:         &confirmation,
	})
	if err != nil {
		return nil, err
	}
	return &confirmation, nil
}

func screenshotName(name string) string {
	if name == "" {
		return fmt.Sprintf("screenshot_%d.jpg", time.Now().UnixMilli())
	}
	return name
}
