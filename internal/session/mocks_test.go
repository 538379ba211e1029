package session

import (
	"context"
	"sync"

	"github.com/safar/storefront/internal/ledger"
	"github.com/safar/storefront/internal/models"
)

type mockLedger struct {
	mu       sync.Mutex
	settings ledger.Settings

	CreateErr  error
	StatusErr  error
	FindErr    error
	NextIssue  int
	FoundIssue int

	Created  []models.Order
	Statuses map[int]models.OrderStatus
	Searched []string
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		settings:  ledger.Settings{Token: "t", Owner: "o", Repo: "r"},
		NextIssue: 42,
		Statuses:  make(map[int]models.OrderStatus),
	}
}

func (m *mockLedger) Configured() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.Configured()
}

func (m *mockLedger) Settings() ledger.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

func (m *mockLedger) Configure(s ledger.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return nil
}

func (m *mockLedger) CreateOrder(_ context.Context, order models.Order) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.Created = append(m.Created, order)
	return m.NextIssue, nil
}

func (m *mockLedger) SetStatus(_ context.Context, issue int, status models.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StatusErr != nil {
		return m.StatusErr
	}
	m.Statuses[issue] = status
	return nil
}

func (m *mockLedger) FindIssue(_ context.Context, orderNumber string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Searched = append(m.Searched, orderNumber)
	if m.FindErr != nil {
		return 0, m.FindErr
	}
	return m.FoundIssue, nil
}

func (m *mockLedger) ListOrders(context.Context) ([]ledger.RemoteOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := make([]ledger.RemoteOrder, 0, len(m.Created))
	for i, o := range m.Created {
		orders = append(orders, ledger.RemoteOrder{Issue: i + 1, Title: o.OrderNumber, Status: o.Status})
	}
	return orders, nil
}

type mockNotifier struct {
	mu sync.Mutex

	ShouldError error
	Sent        []models.Order
}

func (m *mockNotifier) Name() string     { return "line" }
func (m *mockNotifier) Configured() bool { return true }

func (m *mockNotifier) SendOrderSummary(_ context.Context, order models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldError != nil {
		return m.ShouldError
	}
	m.Sent = append(m.Sent, order)
	return nil
}
