package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/xfery/dropship-backend/pkg/errors"
)

type stubWebhookService struct {
	err    error
	events []string
}

func (s *stubWebhookService) HandleEvent(ctx context.Context, event *stripe.Event) error {
	s.events = append(s.events, event.ID)
	return s.err
}

type stubVerifier struct {
	event stripe.Event
	err   error
}

func (s stubVerifier) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return s.event, s.err
}

type stubGuard struct {
	processed bool
	markErr   error
	deleted   []string
}

func (s *stubGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	return s.processed, s.markErr
}

func (s *stubGuard) Delete(ctx context.Context, eventID string) error {
	s.deleted = append(s.deleted, eventID)
	return nil
}

func postWebhook(handler http.HandlerFunc, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(`{}`)))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	respRec := httptest.NewRecorder()
	handler.ServeHTTP(respRec, req)
	return respRec
}

func TestStripeWebhookProcessesVerifiedEvent(t *testing.T) {
	svc := &stubWebhookService{}
	guard := &stubGuard{}
	handler := StripeWebhook(svc, stubVerifier{event: stripe.Event{ID: "evt_1"}}, guard, nil)

	respRec := postWebhook(handler, "t=1,v1=sig")

	if respRec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", respRec.Code)
	}
	if len(svc.events) != 1 || svc.events[0] != "evt_1" {
		t.Fatalf("expected evt_1 handled once, got %v", svc.events)
	}
	if len(guard.deleted) != 0 {
		t.Fatalf("expected dedupe mark kept, got deletes %v", guard.deleted)
	}
}

func TestStripeWebhookRejectsMissingSignature(t *testing.T) {
	svc := &stubWebhookService{}
	handler := StripeWebhook(svc, stubVerifier{}, &stubGuard{}, nil)

	respRec := postWebhook(handler, "")

	if respRec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", respRec.Code)
	}
	if len(svc.events) != 0 {
		t.Fatalf("expected no events handled, got %v", svc.events)
	}
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	svc := &stubWebhookService{}
	verifier := stubVerifier{err: pkgerrors.New(pkgerrors.CodeSignature, "webhook signature verification failed")}
	handler := StripeWebhook(svc, verifier, &stubGuard{}, nil)

	respRec := postWebhook(handler, "t=1,v1=bad")

	if respRec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", respRec.Code)
	}
	if len(svc.events) != 0 {
		t.Fatalf("expected no events handled, got %v", svc.events)
	}
}

func TestStripeWebhookAcksDuplicateWithoutReprocessing(t *testing.T) {
	svc := &stubWebhookService{}
	handler := StripeWebhook(svc, stubVerifier{event: stripe.Event{ID: "evt_dup"}}, &stubGuard{processed: true}, nil)

	respRec := postWebhook(handler, "t=1,v1=sig")

	if respRec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", respRec.Code)
	}
	if len(svc.events) != 0 {
		t.Fatalf("expected duplicate to skip processing, got %v", svc.events)
	}
}

func TestStripeWebhookReleasesMarkOnFailure(t *testing.T) {
	svc := &stubWebhookService{err: pkgerrors.New(pkgerrors.CodeInternal, "persist payment intent")}
	guard := &stubGuard{}
	handler := StripeWebhook(svc, stubVerifier{event: stripe.Event{ID: "evt_fail"}}, guard, nil)

	respRec := postWebhook(handler, "t=1,v1=sig")

	if respRec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", respRec.Code)
	}
	if len(guard.deleted) != 1 || guard.deleted[0] != "evt_fail" {
		t.Fatalf("expected mark released for evt_fail, got %v", guard.deleted)
	}
}
