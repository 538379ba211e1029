package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/safar/storefront/internal/config"
	"github.com/safar/storefront/internal/models"
	"github.com/safar/storefront/internal/remote"
)

// GuestUserID is the identity used when the messaging platform gave none.
const GuestUserID = "guest"

var errNoRecipient = errors.New("no messaging identity for order")

// Line pushes a flex message to the user who placed the order.
type Line struct {
	endpoint string
	token    string
	client   *http.Client
}

func NewLine(cfg config.LineConfig, client *http.Client) *Line {
	if client == nil {
		client = http.DefaultClient
	}
	return &Line{
		endpoint: cfg.Endpoint,
		token:    cfg.ChannelToken,
		client:   client,
	}
}

func (l *Line) Name() string { return "line" }

func (l *Line) Configured() bool { return l.token != "" }

func (l *Line) SendOrderSummary(ctx context.Context, order models.Order) error {
	const op = "line push"

	if !l.Configured() {
		return remote.ErrNotConfigured
	}
	// Pushing needs a signed-in user who granted the messaging scope.
	if order.UserID == "" || order.UserID == GuestUserID {
		return &remote.Error{Kind: remote.KindPermission, Op: op, Err: errNoRecipient}
	}

	api, err := l.api()
	if err != nil {
		return fmt.Errorf("create messaging client: %w", err)
	}

	// The retry key lets the platform drop a duplicate push of this order.
	res, _, err := api.WithContext(ctx).PushMessageWithHttpInfo(&messaging_api.PushMessageRequest{
		To:       order.UserID,
		Messages: []messaging_api.MessageInterface{flexMessage(order)},
	}, uuid.NewString())
	if err != nil {
		if res != nil {
			return &remote.Error{Kind: remote.FromStatus(res.StatusCode), Op: op, Err: err}
		}
		return &remote.Error{Kind: remote.KindOf(err), Op: op, Err: err}
	}
	return nil
}

// api builds a client per push; the SDK keeps the request context on the
// client itself.
func (l *Line) api() (*messaging_api.MessagingApiAPI, error) {
	opts := []messaging_api.MessagingApiAPIOption{messaging_api.WithHTTPClient(l.client)}
	if l.endpoint != "" {
		opts = append(opts, messaging_api.WithEndpoint(l.endpoint))
	}
	return messaging_api.NewMessagingApiAPI(l.token, opts...)
}

func text(s string) *messaging_api.FlexText {
	return &messaging_api.FlexText{Text: s, Size: "sm", Wrap: true}
}

func row(left, right string) *messaging_api.FlexBox {
	return &messaging_api.FlexBox{
		Layout: messaging_api.FlexBoxLAYOUT_HORIZONTAL,
		Contents: []messaging_api.FlexComponentInterface{
			text(left),
			&messaging_api.FlexText{Text: right, Size: "sm", Weight: messaging_api.FlexTextWEIGHT_BOLD},
		},
	}
}

func flexMessage(order models.Order) *messaging_api.FlexMessage {
	rows := []messaging_api.FlexComponentInterface{
		&messaging_api.FlexText{Text: "Order " + order.OrderNumber, Weight: messaging_api.FlexTextWEIGHT_BOLD, Size: "lg"},
		&messaging_api.FlexText{Text: order.Date, Size: "xs", Color: "#888888"},
		&messaging_api.FlexSeparator{Margin: "md"},
	}
	for _, item := range order.Items {
		rows = append(rows, row(fmt.Sprintf("%s x%d", item.Name, item.Quantity), models.FormatMoney(item.Subtotal())))
	}
	rows = append(rows,
		&messaging_api.FlexSeparator{Margin: "md"},
		row("Total", models.FormatMoney(order.Total)),
		text("Payment: "+string(order.PaymentMethod)),
		text("Status: "+string(order.Status)),
		text(order.Customer.Name+" "+order.Customer.Phone),
		text(order.Customer.Address),
	)

	return &messaging_api.FlexMessage{
		AltText: Summary(order),
		Contents: &messaging_api.FlexBubble{
			Body: &messaging_api.FlexBox{
				Layout:   messaging_api.FlexBoxLAYOUT_VERTICAL,
				Contents: rows,
			},
		},
	}
}

var _ Notifier = (*Line)(nil)
