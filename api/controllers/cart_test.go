package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	cartsvc "github.com/calebmorris/cartly-backend/internal/cart"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
)

type stubCartService struct {
	cart     *cartsvc.CartDTO
	item     *cartsvc.ItemDTO
	err      error
	lastQty  float64
	lastItem uuid.UUID
	cleared  bool
	complete bool
	recorded bool
}

func (s *stubCartService) GetCart(ctx context.Context, userID uuid.UUID, storeNumber int) (*cartsvc.CartDTO, error) {
	return s.cart, s.err
}

func (s *stubCartService) AddItem(ctx context.Context, userID uuid.UUID, storeNumber int, input cartsvc.AddItemInput) (*cartsvc.ItemDTO, error) {
	return s.item, s.err
}

func (s *stubCartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity float64) (*cartsvc.ItemDTO, error) {
	s.lastItem = itemID
	s.lastQty = quantity
	return s.item, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	s.lastItem = itemID
	return s.err
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID, storeNumber int) error {
	s.cleared = true
	return s.err
}

func (s *stubCartService) Complete(ctx context.Context, userID uuid.UUID, storeNumber int) error {
	s.complete = true
	return s.err
}

func (s *stubCartService) RecordPurchases(ctx context.Context, userID uuid.UUID, storeNumber int) error {
	s.recorded = true
	return s.err
}

func TestCartGetSuccess(t *testing.T) {
	svc := &stubCartService{cart: &cartsvc.CartDTO{StoreNumber: 86, Subtotal: "$12.47", Items: []cartsvc.ItemDTO{}}}
	handler := CartGet(svc, nil)

	req := withTestIdentity(httptest.NewRequest(http.MethodGet, "/api/cart", nil), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Subtotal != "$12.47" {
		t.Fatalf("unexpected subtotal: %s", envelope.Data.Subtotal)
	}
}

func TestCartAddItemValidatesBody(t *testing.T) {
	handler := CartAddItem(&stubCartService{}, nil)

	body := strings.NewReader(`{"price":"$1.00"}`)
	req := withTestIdentity(httptest.NewRequest(http.MethodPost, "/api/cart/add", body), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemCreated(t *testing.T) {
	svc := &stubCartService{item: &cartsvc.ItemDTO{ID: uuid.New(), ProductName: "Milk"}}
	handler := CartAddItem(svc, nil)

	body := strings.NewReader(`{"product_name":"Milk","price":"$3.49","quantity":1}`)
	req := withTestIdentity(httptest.NewRequest(http.MethodPost, "/api/cart/add", body), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}

func TestCartUpdateQuantityForwardsItem(t *testing.T) {
	itemID := uuid.New()
	svc := &stubCartService{item: &cartsvc.ItemDTO{ID: itemID, Quantity: 3}}
	handler := CartUpdateQuantity(svc, nil)

	body := strings.NewReader(`{"item_id":"` + itemID.String() + `","quantity":3}`)
	req := withTestIdentity(httptest.NewRequest(http.MethodPut, "/api/cart/quantity", body), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastItem != itemID || svc.lastQty != 3 {
		t.Fatalf("service saw item=%s qty=%v", svc.lastItem, svc.lastQty)
	}
}

func TestCartUpdateQuantityRejectsBadID(t *testing.T) {
	handler := CartUpdateQuantity(&stubCartService{}, nil)

	body := strings.NewReader(`{"item_id":"nope","quantity":2}`)
	req := withTestIdentity(httptest.NewRequest(http.MethodPut, "/api/cart/quantity", body), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartRemoveItemNotFound(t *testing.T) {
	itemID := uuid.New()
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")}
	handler := CartRemoveItem(svc, nil)

	req := withTestIdentity(httptest.NewRequest(http.MethodDelete, "/api/cart/"+itemID.String(), nil), uuid.New(), 86)
	req = withURLParam(req, "itemId", itemID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestCartCompleteInvokesService(t *testing.T) {
	svc := &stubCartService{}
	handler := CartComplete(svc, nil)

	req := withTestIdentity(httptest.NewRequest(http.MethodPost, "/api/cart/complete", nil), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !svc.complete {
		t.Fatalf("expected Complete to be called")
	}
}

func TestCartUpdateFrequentRecordsPurchases(t *testing.T) {
	svc := &stubCartService{}
	handler := CartUpdateFrequent(svc, nil)

	req := withTestIdentity(httptest.NewRequest(http.MethodPost, "/api/cart/update-frequent", nil), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !svc.recorded {
		t.Fatalf("expected RecordPurchases to be called")
	}
	if svc.complete || svc.cleared {
		t.Fatalf("cart should not be cleared by update-frequent")
	}
}
