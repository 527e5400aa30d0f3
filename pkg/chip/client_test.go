package chip

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestCreatePaymentRequest(t *testing.T) {
	var captured *http.Request
	var payload CreatePaymentRequest

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = req
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return jsonResponse(http.StatusCreated, `{"id":"pay_1","status":"created","checkout_url":"https://gate.chip-in.asia/p/pay_1"}`), nil
	})

	client, err := NewClient("sk_test", WithBaseURL("http://chip.test/api/"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	payment, err := client.CreatePayment(context.Background(), CreatePaymentRequest{
		Amount:    76859,
		Currency:  "MYR",
		Reference: "order_abc",
		Customer:  Customer{Email: "a@example.com", FullName: "Aisyah Rahman"},
		Product:   Product{Name: "1g Gold Bar", Description: "Payment for order #abc"},
		Redirect:  Redirect{SuccessURL: "http://shop/order-confirmation?order_id=abc", FailureURL: "http://shop/checkout?error=payment_failed&order_id=abc"},
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}

	if captured.Method != http.MethodPost || captured.URL.String() != "http://chip.test/api/payment/create" {
		t.Fatalf("unexpected request %s %s", captured.Method, captured.URL)
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer sk_test" {
		t.Fatalf("unexpected auth header %q", got)
	}
	if payload.Amount != 76859 || payload.Reference != "order_abc" || payload.Customer.FullName != "Aisyah Rahman" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payment.ID != "pay_1" || payment.CheckoutURL == "" {
		t.Fatalf("unexpected payment %+v", payment)
	}
}

func TestGetPaymentRequest(t *testing.T) {
	var capturedURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return jsonResponse(http.StatusOK, `{"id":"pay_1","status":"paid","reference":"order_abc"}`), nil
	})
	client, _ := NewClient("sk_test", WithBaseURL("http://chip.test/api"), WithHTTPClient(&http.Client{Transport: rt}))

	payment, err := client.GetPayment(context.Background(), "pay_1")
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if capturedURL != "http://chip.test/api/payments/pay_1" {
		t.Fatalf("unexpected url %q", capturedURL)
	}
	if !payment.IsPaid() || payment.Reference != "order_abc" {
		t.Fatalf("unexpected payment %+v", payment)
	}
}

func TestGatewayErrorsAreDependencyErrors(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"error":"bad amount"}`), nil
	})
	client, _ := NewClient("sk_test", WithHTTPClient(&http.Client{Transport: rt}))

	_, err := client.CreatePayment(context.Background(), CreatePaymentRequest{Amount: 100, Currency: "MYR"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}

	failing := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection reset")
	})
	client, _ = NewClient("sk_test", WithHTTPClient(&http.Client{Transport: failing}))
	if _, err := client.GetPayment(context.Background(), "pay_1"); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestNewClientRequiresSecret(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestSignVerify(t *testing.T) {
	body := []byte(`{"event":"payment.paid"}`)
	sig := Sign("whsec", body)

	if err := Verify("whsec", body, sig); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
	if err := Verify("whsec", body, "sha256="+strings.ToUpper(sig)); err != nil {
		t.Fatalf("expected prefixed signature to verify, got %v", err)
	}
	if err := Verify("whsec", []byte(`{"event":"payment.failed"}`), sig); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected invalid signature for tampered body, got %v", err)
	}
	if err := Verify("whsec", body, ""); !errors.Is(err, ErrMissingSignature) {
		t.Fatalf("expected missing signature, got %v", err)
	}
	if err := Verify("whsec", body, "zz"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected invalid signature for bad hex, got %v", err)
	}
}
