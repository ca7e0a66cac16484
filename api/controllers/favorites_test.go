package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	favsvc "github.com/calebmorris/cartly-backend/internal/favorites"
)

type stubFavoritesService struct {
	items     []favsvc.ItemDTO
	starred   bool
	err       error
	lastLimit int
	lastName  string
}

func (s *stubFavoritesService) GetFrequent(ctx context.Context, userID uuid.UUID, storeNumber, limit int) ([]favsvc.ItemDTO, error) {
	s.lastLimit = limit
	return s.items, s.err
}

func (s *stubFavoritesService) GetFavorites(ctx context.Context, userID uuid.UUID, storeNumber int) ([]favsvc.ItemDTO, error) {
	return s.items, s.err
}

func (s *stubFavoritesService) Star(ctx context.Context, userID uuid.UUID, storeNumber int, input favsvc.StarInput) error {
	s.lastName = input.ProductName
	return s.err
}

func (s *stubFavoritesService) Unstar(ctx context.Context, userID uuid.UUID, storeNumber int, productName string) error {
	s.lastName = productName
	return s.err
}

func (s *stubFavoritesService) IsStarred(ctx context.Context, userID uuid.UUID, storeNumber int, productName string) (bool, error) {
	s.lastName = productName
	return s.starred, s.err
}

func TestFrequentItemsDefaultsLimit(t *testing.T) {
	svc := &stubFavoritesService{items: []favsvc.ItemDTO{}}
	handler := FrequentItems(svc, nil)

	req := withTestIdentity(httptest.NewRequest(http.MethodGet, "/api/frequent", nil), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastLimit != defaultFrequentLimit {
		t.Fatalf("expected default limit, got %d", svc.lastLimit)
	}
}

func TestFrequentItemsRejectsOutOfRangeLimit(t *testing.T) {
	handler := FrequentItems(&stubFavoritesService{}, nil)

	req := withTestIdentity(httptest.NewRequest(http.MethodGet, "/api/frequent?limit=500", nil), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestStarFavoriteCreated(t *testing.T) {
	svc := &stubFavoritesService{}
	handler := StarFavorite(svc, nil)

	body := strings.NewReader(`{"product_name":"Greek Yogurt","price":"$5.99"}`)
	req := withTestIdentity(httptest.NewRequest(http.MethodPost, "/api/favorites/add", body), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.lastName != "Greek Yogurt" {
		t.Fatalf("service saw %q", svc.lastName)
	}
}

func TestUnstarRequiresProductName(t *testing.T) {
	handler := UnstarFavorite(&stubFavoritesService{}, nil)

	req := withTestIdentity(httptest.NewRequest(http.MethodDelete, "/api/favorites/%20", nil), uuid.New(), 86)
	req = withURLParam(req, "productName", "%20")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUnstarDecodesEscapedProductName(t *testing.T) {
	svc := &stubFavoritesService{}
	handler := UnstarFavorite(svc, nil)

	req := withTestIdentity(httptest.NewRequest(http.MethodDelete, "/api/favorites/Greek%20Yogurt", nil), uuid.New(), 86)
	req = withURLParam(req, "productName", "Greek%20Yogurt")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastName != "Greek Yogurt" {
		t.Fatalf("service saw product %q", svc.lastName)
	}
}

func TestIsFavoriteReportsFlag(t *testing.T) {
	svc := &stubFavoritesService{starred: true}
	handler := IsFavorite(svc, nil)

	req := withTestIdentity(httptest.NewRequest(http.MethodGet, "/api/favorites/check/Milk", nil), uuid.New(), 86)
	req = withURLParam(req, "productName", "Milk")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data map[string]bool `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data["is_favorite"] {
		t.Fatalf("expected is_favorite true")
	}
}
