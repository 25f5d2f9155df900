package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/hasan-mia/manufacturer-server/internal/apperror"
	"github.com/hasan-mia/manufacturer-server/internal/model"
	"github.com/hasan-mia/manufacturer-server/internal/payment"
)

// fakeIntentCreator records the arguments of the last CreateIntent call.
type fakeIntentCreator struct {
	amount      int64
	currency    string
	methodTypes []string
	err         error
}

func (f *fakeIntentCreator) CreateIntent(_ context.Context, amount int64, currency string, methodTypes []string) (*payment.Intent, error) {
	f.amount = amount
	f.currency = currency
	f.methodTypes = methodTypes
	if f.err != nil {
		return nil, f.err
	}
	return &payment.Intent{
		ID:           "pi_test",
		ClientSecret: "pi_test_secret",
		Amount:       amount,
		Currency:     currency,
	}, nil
}

// =========================================================================
// CREATE INTENT TESTS
// =========================================================================

func TestCreateIntent_AmountConversion(t *testing.T) {
	provider := &fakeIntentCreator{}
	svc := NewPaymentService(provider, newFakeDocRepo(), testLogger())

	secret, err := svc.CreateIntent(context.Background(), 19.99)
	if err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}

	// Whole dollars in minor units: floor(19.99) * 100
	if provider.amount != 1900 {
		t.Errorf("provider amount = %d, want 1900", provider.amount)
	}
	if provider.currency != "usd" {
		t.Errorf("provider currency = %q, want usd", provider.currency)
	}
	if len(provider.methodTypes) != 1 || provider.methodTypes[0] != "card" {
		t.Errorf("provider method types = %v, want [card]", provider.methodTypes)
	}
	if secret != "pi_test_secret" {
		t.Errorf("client secret = %q, want pi_test_secret", secret)
	}
}

func TestCreateIntent_RejectsBadTotals(t *testing.T) {
	svc := NewPaymentService(&fakeIntentCreator{}, newFakeDocRepo(), testLogger())

	for name, total := range map[string]float64{
		"zero":     0,
		"negative": -5,
		"nan":      math.NaN(),
		"inf":      math.Inf(1),
		"subunit":  0.99, // floors to a zero charge
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateIntent(context.Background(), total)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("CreateIntent(%v) error = %v, want ErrValidation", total, err)
			}
		})
	}
}

func TestCreateIntent_ProviderFailure(t *testing.T) {
	provider := &fakeIntentCreator{err: errors.New("stripe: down")}
	svc := NewPaymentService(provider, newFakeDocRepo(), testLogger())

	if _, err := svc.CreateIntent(context.Background(), 10); err == nil {
		t.Fatal("CreateIntent() should propagate provider failures")
	}
}

// =========================================================================
// RECORD PAYMENT TESTS
// =========================================================================

func TestRecordPayment_MarksOrderPaid(t *testing.T) {
	docs := newFakeDocRepo()
	svc := NewPaymentService(&fakeIntentCreator{}, docs, testLogger())

	orderID, err := docs.Insert(context.Background(), model.CollectionOrders, map[string]any{
		"email": "a@x.com",
		"item":  "bolt",
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	err = svc.RecordPayment(context.Background(), orderID, map[string]any{
		"transactionId": "txn_123",
		"email":         "a@x.com",
	})
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	raw, err := docs.Get(context.Background(), model.CollectionOrders, orderID)
	if err != nil {
		t.Fatalf("Get(order) error = %v", err)
	}
	order := decodeDoc(t, raw)
	if order["paid"] != true {
		t.Error("order was not marked paid")
	}
	if order["transactionId"] != "txn_123" {
		t.Errorf("order transactionId = %v, want txn_123", order["transactionId"])
	}

	payments, err := docs.List(context.Background(), model.CollectionPayments)
	if err != nil {
		t.Fatalf("List(payments) error = %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("payment collection holds %d records, want 1", len(payments))
	}
}

func TestRecordPayment_RequiresTransactionID(t *testing.T) {
	svc := NewPaymentService(&fakeIntentCreator{}, newFakeDocRepo(), testLogger())

	err := svc.RecordPayment(context.Background(), "order-1", map[string]any{"email": "a@x.com"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("RecordPayment() error = %v, want ErrValidation", err)
	}
}

func TestRecordPayment_UnknownOrder(t *testing.T) {
	svc := NewPaymentService(&fakeIntentCreator{}, newFakeDocRepo(), testLogger())

	err := svc.RecordPayment(context.Background(), "ghost", map[string]any{"transactionId": "txn_1"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("RecordPayment() error = %v, want ErrNotFound", err)
	}
}
