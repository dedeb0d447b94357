package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mohammadarifzafra/topgrade-api/internal/domain/enums"
	"github.com/mohammadarifzafra/topgrade-api/internal/domain/model"
	"github.com/mohammadarifzafra/topgrade-api/internal/infra/payment"
	pgrepo "github.com/mohammadarifzafra/topgrade-api/internal/repo/postgres"
	authsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/auth"
	purchasesvc "github.com/mohammadarifzafra/topgrade-api/internal/services/purchases"
)

func TestPurchaseCreateChargesAndReturnsCreated(t *testing.T) {
	ledger := &purchaseLedgerStub{}
	h := NewPurchaseHandler(newPurchaseService(ledger, &purchaseGatewayStub{}))

	resp := performPurchaseRequest(t, h, `{"kind":"standard","course_id":1}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d body %s", resp.Code, http.StatusCreated, resp.Body.String())
	}

	var payload struct {
		Purchase struct {
			Status       string `json:"status"`
			ChargedCents int64  `json:"charged_cents"`
			SavingsCents int64  `json:"savings_cents"`
		} `json:"purchase"`
		Course struct {
			DiscountedPriceCents int64 `json:"discounted_price_cents"`
		} `json:"course"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Purchase.Status != "completed" {
		t.Fatalf("expected completed purchase, got %q", payload.Purchase.Status)
	}
	if payload.Purchase.ChargedCents != 40000 || payload.Purchase.SavingsCents != 10000 {
		t.Fatalf("unexpected amounts: %+v", payload.Purchase)
	}
	if payload.Course.DiscountedPriceCents != 40000 {
		t.Fatalf("expected discounted price in course payload, got %d", payload.Course.DiscountedPriceCents)
	}
}

func TestPurchaseCreateDuplicateReturnsConflict(t *testing.T) {
	ledger := &purchaseLedgerStub{createErr: pgrepo.ErrDuplicatePurchase}
	h := NewPurchaseHandler(newPurchaseService(ledger, &purchaseGatewayStub{}))

	resp := performPurchaseRequest(t, h, `{"kind":"standard","course_id":1}`)
	if resp.Code != http.StatusConflict {
		t.Fatalf("unexpected status: got %d want %d", resp.Code, http.StatusConflict)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "ALREADY_PURCHASED" {
		t.Fatalf("unexpected error code: %q", payload.Code)
	}
}

func TestPurchaseCreateDeclinedReturnsPaymentRequired(t *testing.T) {
	h := NewPurchaseHandler(newPurchaseService(&purchaseLedgerStub{}, &purchaseGatewayStub{declined: true}))

	resp := performPurchaseRequest(t, h, `{"kind":"standard","course_id":1}`)
	if resp.Code != http.StatusPaymentRequired {
		t.Fatalf("unexpected status: got %d want %d", resp.Code, http.StatusPaymentRequired)
	}
}

func TestPurchaseCreateUnknownKindReturnsBadRequest(t *testing.T) {
	h := NewPurchaseHandler(newPurchaseService(&purchaseLedgerStub{}, &purchaseGatewayStub{}))

	resp := performPurchaseRequest(t, h, `{"kind":"premium","course_id":1}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", resp.Code, http.StatusBadRequest)
	}
}

func TestPurchaseCreateRequiresIdentity(t *testing.T) {
	h := NewPurchaseHandler(newPurchaseService(&purchaseLedgerStub{}, &purchaseGatewayStub{}))

	req := httptest.NewRequest(http.MethodPost, "/purchases", bytes.NewReader([]byte(`{"kind":"standard","course_id":1}`)))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
}

func performPurchaseRequest(t *testing.T, h *PurchaseHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/purchases", bytes.NewReader([]byte(body)))
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 42,
		SID:    "sid-42",
		Role:   "student",
	}))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func newPurchaseService(ledger *purchaseLedgerStub, gateway *purchaseGatewayStub) *purchasesvc.Service {
	return purchasesvc.NewService(purchasesvc.Dependencies{
		Catalog: purchaseCatalogStub{},
		Ledger:  ledger,
		Gateway: gateway,
	})
}

var handlerTestCourse = model.Course{
	Ref:                model.CourseRef{Kind: enums.CourseKindStandard, ID: 1},
	Title:              "Data Engineering",
	PriceCents:         50000,
	DiscountPercentage: 20,
}

type purchaseCatalogStub struct{}

func (purchaseCatalogStub) GetCourse(_ context.Context, ref model.CourseRef) (model.Course, error) {
	if ref != handlerTestCourse.Ref {
		return model.Course{}, pgrepo.ErrCourseNotFound
	}
	return handlerTestCourse, nil
}

type purchaseGatewayStub struct {
	declined bool
}

func (s *purchaseGatewayStub) Charge(context.Context, payment.ChargeRequest) (payment.ChargeResult, error) {
	if s.declined {
		return payment.ChargeResult{ProviderRef: "ch_declined", Declined: true, Reason: "card declined"}, nil
	}
	return payment.ChargeResult{ProviderRef: "ch_ok"}, nil
}

type purchaseLedgerStub struct {
	createErr error
}

func (s *purchaseLedgerStub) CreatePending(_ context.Context, userID int64, course model.CourseRef, amountCents int64, discountPct float64) (model.Purchase, error) {
	if s.createErr != nil {
		return model.Purchase{}, s.createErr
	}
	return model.Purchase{
		ID:                 77,
		UserID:             userID,
		Course:             course,
		Status:             enums.PurchaseStatusPending,
		AmountCents:        amountCents,
		DiscountPercentage: discountPct,
	}, nil
}

func (s *purchaseLedgerStub) MarkCompleted(_ context.Context, purchaseID, chargedCents int64, providerRef string) (model.Purchase, error) {
	return model.Purchase{
		ID:           purchaseID,
		UserID:       42,
		Course:       handlerTestCourse.Ref,
		Status:       enums.PurchaseStatusCompleted,
		AmountCents:  handlerTestCourse.PriceCents,
		ChargedCents: chargedCents,
		ProviderRef:  providerRef,
	}, nil
}

func (s *purchaseLedgerStub) MarkCancelled(_ context.Context, purchaseID int64, providerRef string) (model.Purchase, error) {
	return model.Purchase{ID: purchaseID, Status: enums.PurchaseStatusCancelled, ProviderRef: providerRef}, nil
}

func (s *purchaseLedgerStub) HasCompleted(context.Context, int64, model.CourseRef) (bool, error) {
	return false, nil
}

func (s *purchaseLedgerStub) ListCompletedByUser(context.Context, int64) ([]model.Purchase, error) {
	return nil, nil
}
