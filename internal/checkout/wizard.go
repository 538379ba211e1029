// Package checkout is the linear checkout flow that turns a cart into an
// order: cart review, customer info, payment method, summary, receipt.
package checkout

import (
	"strings"

	"github.com/google/uuid"

	"github.com/safar/storefront/internal/models"
)

type Step int

const (
	StepCartReview Step = iota + 1
	StepCustomerInfo
	StepPaymentMethod
	StepSummary
	StepReceipt
)

func (s Step) String() string {
	switch s {
	case StepCartReview:
		return "cart_review"
	case StepCustomerInfo:
		return "customer_info"
	case StepPaymentMethod:
		return "payment_method"
	case StepSummary:
		return "summary"
	case StepReceipt:
		return "receipt"
	}
	return "unknown"
}

// Wizard holds the data collected by one checkout attempt. Moving back
// never clears what was entered; abandoning the wizard drops all of it.
type Wizard struct {
	id          uuid.UUID
	step        Step
	customer    models.Customer
	method      models.PaymentMethod
	transferRef string
	slip        *Slip
	meta        models.PaymentMeta
	receipt     *models.Order
}

// New starts a checkout at cart review, prefilled with the customer's last
// known details.
func New(prefill models.Customer) *Wizard {
	return &Wizard{
		id:       uuid.New(),
		step:     StepCartReview,
		customer: prefill,
		method:   models.PaymentCash,
	}
}

func (w *Wizard) ID() uuid.UUID             { return w.id }
func (w *Wizard) Step() Step                { return w.step }
func (w *Wizard) Customer() models.Customer { return w.customer }

func (w *Wizard) Payment() (models.PaymentMethod, models.PaymentMeta) {
	return w.method, w.meta
}

func (w *Wizard) HasSlip() bool {
	return w.slip != nil
}

func (w *Wizard) Receipt() (models.Order, bool) {
	if w.receipt == nil {
		return models.Order{}, false
	}
	return *w.receipt, true
}

// SetCustomer records customer details while on the customer info step.
func (w *Wizard) SetCustomer(c models.Customer) error {
	if err := w.require(StepCustomerInfo); err != nil {
		return err
	}
	w.customer = c
	return nil
}

// SetPayment records the payment choice while on the payment step. A nil
// slip keeps any slip attached earlier.
func (w *Wizard) SetPayment(method models.PaymentMethod, transferRef string, slip *Slip) error {
	if err := w.require(StepPaymentMethod); err != nil {
		return err
	}
	w.method = method
	w.transferRef = strings.TrimSpace(transferRef)
	if slip != nil {
		w.slip = slip
	}
	return nil
}

// Next validates the current step's gate and advances one step. The
// summary step is left only through Complete.
func (w *Wizard) Next(lines []models.CartLine) error {
	switch w.step {
	case StepCartReview:
		if len(lines) == 0 {
			return ErrCartEmpty
		}

	case StepCustomerInfo:
		customer, err := ValidateCustomer(w.customer)
		if err != nil {
			return err
		}
		w.customer = customer

	case StepPaymentMethod:
		meta, err := w.verifyPayment()
		if err != nil {
			return err
		}
		w.meta = meta

	case StepSummary:
		return ErrInvalidTransition

	default:
		return ErrWizardClosed
	}

	w.step++
	return nil
}

// Back moves one step towards cart review without validation.
func (w *Wizard) Back() error {
	switch w.step {
	case StepReceipt:
		return ErrWizardClosed
	case StepCartReview:
		return ErrInvalidTransition
	}
	w.step--
	return nil
}

// Complete moves the wizard from summary to its terminal receipt step. The
// raw slip is released; the order carries its encoded copy.
func (w *Wizard) Complete(order models.Order) error {
	if err := w.require(StepSummary); err != nil {
		return err
	}
	w.slip = nil
	w.receipt = &order
	w.step = StepReceipt
	return nil
}

func (w *Wizard) require(step Step) error {
	switch {
	case w.step == StepReceipt:
		return ErrWizardClosed
	case w.step != step:
		return ErrInvalidTransition
	}
	return nil
}

func (w *Wizard) verifyPayment() (models.PaymentMeta, error) {
	if !w.method.Valid() {
		return models.PaymentMeta{}, invalid("payment_method", "choose cash, transfer or promptpay")
	}
	if !w.method.RequiresSlip() {
		return models.PaymentMeta{}, nil
	}

	contentType, err := w.slip.Validate()
	if err != nil {
		return models.PaymentMeta{}, err
	}

	return models.PaymentMeta{
		TransferRef:   w.transferRef,
		SlipImageData: w.slip.DataURL(contentType),
		Verified:      true,
	}, nil
}

// ValidateCustomer trims the customer fields and checks the required ones.
// Phones must carry 9 to 11 digits once punctuation is stripped.
func ValidateCustomer(c models.Customer) (models.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	c.Note = strings.TrimSpace(c.Note)

	switch {
	case c.Name == "":
		return c, invalid("customer_name", "name is required")
	case c.Phone == "":
		return c, invalid("customer_phone", "phone is required")
	case c.Address == "":
		return c, invalid("delivery_address", "delivery address is required")
	}

	if n := countDigits(c.Phone); n < 9 || n > 11 {
		return c, invalid("customer_phone", "phone must have 9 to 11 digits")
	}
	return c, nil
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
