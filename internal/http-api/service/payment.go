package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrSignatureMismatch = errors.New("payment signature mismatch")

// PaymentGateway is the boundary to the checkout provider. Order
// creation and the signature scheme follow the provider's contract;
// billing correctness stays on the provider's side.
type PaymentGateway interface {
	// CreateOrder registers an order for the amount and returns the
	// gateway order id the checkout widget needs.
	CreateOrder(amount int64, currency string) (string, error)

	// VerifySignature checks the callback signature the widget posts
	// back after a successful payment.
	VerifySignature(orderID, paymentID, signature string) error

	// KeyID is the public key the front end passes to the widget.
	KeyID() string
}

type hmacGateway struct {
	keyID  string
	secret string
}

// NewPaymentGateway builds the default gateway client. Orders are
// minted locally; signatures are verified with the provider's
// HMAC-SHA256 scheme over "orderID|paymentID".
func NewPaymentGateway(keyID, secret string) PaymentGateway {
	return &hmacGateway{keyID: keyID, secret: secret}
}

func (g *hmacGateway) CreateOrder(amount int64, currency string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("order amount must be positive, got %d", amount)
	}
	return "order_" + uuid.New().String(), nil
}

func (g *hmacGateway) VerifySignature(orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	// constant-time compare
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

func (g *hmacGateway) KeyID() string {
	return g.keyID
}
