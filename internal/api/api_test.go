package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/safar/storefront/internal/auth"
	"github.com/safar/storefront/internal/config"
	"github.com/safar/storefront/internal/kvstore"
	"github.com/safar/storefront/internal/logging"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/session"
)

var (
	bangkok  = time.FixedZone("ICT", 7*60*60)
	now      = time.Date(2026, 10, 19, 10, 30, 0, 0, bangkok)
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	ctl    *session.Controller
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctl, err := session.New(context.Background(), session.Options{
		KV:       kvstore.NewMemory(),
		Location: bangkok,
		Log:      logging.Discard(),
		Now:      func() time.Time { return now },
		Suffix:   func() int { return 7 },
	})
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	authenticator := auth.New(config.AdminConfig{
		Username:     "admin",
		PasswordHash: string(hash),
		JWTSecret:    "signing-key",
		TokenTTL:     time.Hour,
	}, nil)

	h := NewHandler(ctl, authenticator, bangkok, logging.Discard())
	return &testServer{t: t, router: h.Router(), ctl: ctl}
}

func (s *testServer) do(method, path string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) shopper(method, path string, body interface{}) *httptest.ResponseRecorder {
	return s.do(method, path, body, http.Header{UserHeader: {"U123"}})
}

func (s *testServer) admin(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	w := s.do(http.MethodPost, "/api/admin/login", loginRequest{Username: "admin", Password: "s3cret"}, nil)
	require.Equal(s.t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	decode(s.t, w, &login)

	return s.do(method, path, body, http.Header{"Authorization": {"Bearer " + login.Token}})
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProducts(t *testing.T) {
	s := newTestServer(t)

	w := s.shopper(http.MethodGet, "/api/products?category=gas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []models.Product
	decode(t, w, &products)
	require.NotEmpty(t, products)
	for _, p := range products {
		assert.Equal(t, models.CategoryGas, p.Category)
	}

	w = s.shopper(http.MethodGet, "/api/products/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.shopper(http.MethodGet, "/api/products/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.shopper(http.MethodGet, "/api/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.shopper(http.MethodPost, "/api/cart/items", cartItemRequest{ProductID: 1, Quantity: 2})
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Total int64 `json:"total"`
		Count int   `json:"count"`
	}
	decode(t, w, &view)
	assert.Equal(t, int64(80), view.Total)

	w = s.shopper(http.MethodPut, "/api/cart/items/1", cartItemRequest{Quantity: 1000})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &view)
	assert.Equal(t, 100, view.Count, "quantity is clamped to stock")

	// The guest has a separate cart.
	w = s.do(http.MethodGet, "/api/cart", nil, nil)
	decode(t, w, &view)
	assert.Zero(t, view.Count)

	w = s.shopper(http.MethodDelete, "/api/cart/items/1", nil)
	decode(t, w, &view)
	assert.Zero(t, view.Count)

	w = s.shopper(http.MethodPost, "/api/cart/items", gin.H{"product_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddCartItemQuantity(t *testing.T) {
	s := newTestServer(t)
	var view struct {
		Count int `json:"count"`
	}

	for _, quantity := range []int{0, -5} {
		w := s.shopper(http.MethodPost, "/api/cart/items", gin.H{"product_id": 1, "quantity": quantity})
		assert.Equal(t, http.StatusBadRequest, w.Code, "quantity %d", quantity)
	}

	w := s.shopper(http.MethodPost, "/api/cart/items", gin.H{"product_id": 1})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &view)
	assert.Equal(t, 1, view.Count)

	w = s.shopper(http.MethodPost, "/api/cart/items", gin.H{"product_id": 1, "quantity": math.MaxInt})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &view)
	assert.Equal(t, 100, view.Count)
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusOK, s.shopper(http.MethodPost, "/api/cart/items", cartItemRequest{ProductID: 1, Quantity: 2}).Code)
	require.Equal(t, http.StatusCreated, s.shopper(http.MethodPost, "/api/checkout", nil).Code)
	require.Equal(t, http.StatusOK, s.shopper(http.MethodPost, "/api/checkout/next", nil).Code)

	w := s.shopper(http.MethodPost, "/api/checkout/next", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var verr map[string]string
	decode(t, w, &verr)
	assert.Equal(t, "customer_name", verr["field"])

	customer := models.Customer{Name: "Somchai", Phone: "0812345678", Address: "12 Soi 3"}
	require.Equal(t, http.StatusOK, s.shopper(http.MethodPut, "/api/checkout/customer", customer).Code)
	require.Equal(t, http.StatusOK, s.shopper(http.MethodPost, "/api/checkout/next", nil).Code)
	require.Equal(t, http.StatusOK, s.shopper(http.MethodPut, "/api/checkout/payment", paymentRequest{Method: models.PaymentCash}).Code)

	w = s.shopper(http.MethodPost, "/api/checkout/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view session.CheckoutView
	decode(t, w, &view)
	assert.Equal(t, "summary", view.Step)

	w = s.shopper(http.MethodPost, "/api/checkout/confirm", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var order models.Order
	decode(t, w, &order)
	assert.Equal(t, int64(80), order.Total)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "U123", order.UserID)

	w = s.shopper(http.MethodPost, "/api/checkout/confirm", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.shopper(http.MethodGet, "/api/customer-info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info models.Customer
	decode(t, w, &info)
	assert.Equal(t, "Somchai", info.Name)

	require.Equal(t, http.StatusNoContent, s.shopper(http.MethodDelete, "/api/checkout", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.shopper(http.MethodGet, "/api/checkout", nil).Code)

	w = s.shopper(http.MethodGet, "/api/notices", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestPaymentSlipUpload(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusOK, s.shopper(http.MethodPost, "/api/cart/items", gin.H{"product_id": 1}).Code)
	require.Equal(t, http.StatusCreated, s.shopper(http.MethodPost, "/api/checkout", nil).Code)
	require.Equal(t, http.StatusOK, s.shopper(http.MethodPost, "/api/checkout/next", nil).Code)
	customer := models.Customer{Name: "Somchai", Phone: "0812345678", Address: "12 Soi 3"}
	require.Equal(t, http.StatusOK, s.shopper(http.MethodPut, "/api/checkout/customer", customer).Code)
	require.Equal(t, http.StatusOK, s.shopper(http.MethodPost, "/api/checkout/next", nil).Code)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("payment_method", "promptpay"))
	require.NoError(t, form.WriteField("transfer_ref", "PP-1"))
	part, err := form.CreateFormFile("slip", "slip.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/checkout/payment", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set(UserHeader, "U123")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view session.CheckoutView
	decode(t, w, &view)
	assert.True(t, view.HasSlip)
	assert.Equal(t, models.PaymentPromptPay, view.PaymentMethod)

	require.Equal(t, http.StatusOK, s.shopper(http.MethodPost, "/api/checkout/next", nil).Code)
	w = s.shopper(http.MethodPost, "/api/checkout/confirm", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var order models.Order
	decode(t, w, &order)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "PP-1", order.PaymentMeta.TransferRef)
}

func TestAdminRequiresToken(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/admin/orders", nil, nil).Code)

	w := s.do(http.MethodPost, "/api/admin/login", loginRequest{Username: "admin", Password: "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminProducts(t *testing.T) {
	s := newTestServer(t)

	w := s.admin(http.MethodPost, "/api/admin/products", models.Product{Name: "Ice Bucket", Price: 120, Stock: 5, Category: models.CategoryOther})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Product
	decode(t, w, &created)
	assert.NotZero(t, created.ID)

	w = s.admin(http.MethodPost, "/api/admin/products", models.Product{Name: "Bad", Category: "toys"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	created.Price = 150
	w = s.admin(http.MethodPut, "/api/admin/products/"+itoa(created.ID), created)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.admin(http.MethodPut, "/api/admin/products/999", created)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, http.StatusNoContent, s.admin(http.MethodDelete, "/api/admin/products/"+itoa(created.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, s.admin(http.MethodDelete, "/api/admin/products/"+itoa(created.ID), nil).Code)
}

func TestAdminOrders(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.ctl.AddToCart(ctx, "U123", 1, 2)
	require.NoError(t, err)
	_, err = s.ctl.StartCheckout(ctx, "U123")
	require.NoError(t, err)
	_, err = s.ctl.NextStep(ctx, "U123")
	require.NoError(t, err)
	_, err = s.ctl.SetCustomer(ctx, "U123", models.Customer{Name: "A", Phone: "0812345678", Address: "X"})
	require.NoError(t, err)
	_, err = s.ctl.NextStep(ctx, "U123")
	require.NoError(t, err)
	_, err = s.ctl.NextStep(ctx, "U123")
	require.NoError(t, err)
	order, err := s.ctl.Confirm(ctx, "U123")
	require.NoError(t, err)

	w := s.admin(http.MethodGet, "/api/admin/orders?status=confirmed&date=2026-10-19", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []models.Order `json:"items"`
		Total int64          `json:"total"`
	}
	decode(t, w, &page)
	assert.Equal(t, int64(1), page.Total)

	w = s.admin(http.MethodGet, "/api/admin/orders?date=2026-10-18", nil)
	decode(t, w, &page)
	assert.Zero(t, page.Total)

	w = s.admin(http.MethodGet, "/api/admin/orders?page=461168601842738791", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(1), page.Total)

	assert.Equal(t, http.StatusBadRequest, s.admin(http.MethodGet, "/api/admin/orders?date=19/10/2026", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.admin(http.MethodGet, "/api/admin/orders?status=shipped", nil).Code)

	path := "/api/admin/orders/" + itoa(order.ID)
	assert.Equal(t, http.StatusOK, s.admin(http.MethodGet, path, nil).Code)

	w = s.admin(http.MethodPut, path+"/status", gin.H{"status": "preparing"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Order
	decode(t, w, &updated)
	assert.Equal(t, models.OrderStatusPreparing, updated.Status)

	assert.Equal(t, http.StatusBadRequest, s.admin(http.MethodPut, path+"/status", gin.H{"status": "shipped"}).Code)

	w = s.admin(http.MethodGet, "/api/admin/reports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report struct {
		TotalOrders  int   `json:"total_orders"`
		TodayRevenue int64 `json:"today_revenue"`
	}
	decode(t, w, &report)
	assert.Equal(t, 1, report.TotalOrders)
	assert.Equal(t, int64(80), report.TodayRevenue)
}

func TestLedgerWithoutAdapter(t *testing.T) {
	s := newTestServer(t)

	w := s.admin(http.MethodPut, "/api/admin/ledger", ledgerRequest{Owner: "o", Repo: "r"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.admin(http.MethodGet, "/api/admin/ledger", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"owner":"","repo":"","configured":false}`, w.Body.String())
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
