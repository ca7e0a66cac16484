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
	listsvc "github.com/calebmorris/cartly-backend/internal/lists"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
)

type stubListService struct {
	autoSave  *listsvc.AutoSaveResult
	list      *listsvc.ListDTO
	lists     []listsvc.ListDTO
	load      *listsvc.LoadResult
	err       error
	lastStore *int
	lastName  string
	deleted   uuid.UUID
}

func (s *stubListService) AutoSave(ctx context.Context, userID uuid.UUID, storeNumber int, name string) (*listsvc.AutoSaveResult, error) {
	s.lastName = name
	return s.autoSave, s.err
}

func (s *stubListService) Tag(ctx context.Context, userID uuid.UUID, storeNumber int, customName string) (*listsvc.ListDTO, error) {
	s.lastName = customName
	return s.list, s.err
}

func (s *stubListService) Today(ctx context.Context, userID uuid.UUID, storeNumber int) (*listsvc.ListDTO, error) {
	return s.list, s.err
}

func (s *stubListService) SaveAsNew(ctx context.Context, userID uuid.UUID, storeNumber int, name string) (*listsvc.ListDTO, error) {
	s.lastName = name
	return s.list, s.err
}

func (s *stubListService) List(ctx context.Context, userID uuid.UUID, storeNumber *int) ([]listsvc.ListDTO, error) {
	s.lastStore = storeNumber
	return s.lists, s.err
}

func (s *stubListService) Get(ctx context.Context, userID, listID uuid.UUID) (*listsvc.ListDTO, error) {
	return s.list, s.err
}

func (s *stubListService) Load(ctx context.Context, userID uuid.UUID, storeNumber int, listID uuid.UUID) (*listsvc.LoadResult, error) {
	return s.load, s.err
}

func (s *stubListService) Delete(ctx context.Context, userID uuid.UUID, listID uuid.UUID) error {
	s.deleted = listID
	return s.err
}

func TestListAutoSaveSkippedWhenCartEmpty(t *testing.T) {
	svc := &stubListService{autoSave: &listsvc.AutoSaveResult{Skipped: true}}
	handler := ListAutoSave(svc, nil)

	body := strings.NewReader(`{"name":""}`)
	req := withTestIdentity(httptest.NewRequest(http.MethodPost, "/api/lists/auto-save", body), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data listsvc.AutoSaveResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Skipped {
		t.Fatalf("expected skipped result")
	}
}

func TestListTagRequiresName(t *testing.T) {
	handler := ListTag(&stubListService{}, nil)

	body := strings.NewReader(`{"custom_name":""}`)
	req := withTestIdentity(httptest.NewRequest(http.MethodPost, "/api/lists/tag", body), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListTagForwardsCustomName(t *testing.T) {
	svc := &stubListService{list: &listsvc.ListDTO{Name: "Week 12"}}
	handler := ListTag(svc, nil)

	body := strings.NewReader(`{"custom_name":"Breakfast Run"}`)
	req := withTestIdentity(httptest.NewRequest(http.MethodPost, "/api/lists/tag", body), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastName != "Breakfast Run" {
		t.Fatalf("service saw custom name %q", svc.lastName)
	}
}

func TestListTodayAnswersExistsFalse(t *testing.T) {
	handler := ListToday(&stubListService{}, nil)

	req := withTestIdentity(httptest.NewRequest(http.MethodGet, "/api/lists/today", nil), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			Exists bool             `json:"exists"`
			List   *listsvc.ListDTO `json:"list"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Exists || envelope.Data.List != nil {
		t.Fatalf("expected exists false with no list, got %+v", envelope.Data)
	}
}

func TestListTodayWrapsList(t *testing.T) {
	svc := &stubListService{list: &listsvc.ListDTO{Name: "Friday, August 28, 2026", ItemCount: 2}}
	handler := ListToday(svc, nil)

	req := withTestIdentity(httptest.NewRequest(http.MethodGet, "/api/lists/today", nil), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			Exists bool             `json:"exists"`
			List   *listsvc.ListDTO `json:"list"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Exists || envelope.Data.List == nil {
		t.Fatalf("expected wrapped list, got %+v", envelope.Data)
	}
	if envelope.Data.List.ItemCount != 2 {
		t.Fatalf("unexpected list payload: %+v", envelope.Data.List)
	}
}

func TestListsIndexParsesStoreFilter(t *testing.T) {
	svc := &stubListService{lists: []listsvc.ListDTO{}}
	handler := ListsIndex(svc, nil)

	req := withTestIdentity(httptest.NewRequest(http.MethodGet, "/api/lists?store_number=99", nil), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastStore == nil || *svc.lastStore != 99 {
		t.Fatalf("expected store filter 99, got %v", svc.lastStore)
	}
}

func TestListsIndexRejectsBadStoreFilter(t *testing.T) {
	handler := ListsIndex(&stubListService{}, nil)

	req := withTestIdentity(httptest.NewRequest(http.MethodGet, "/api/lists?store_number=abc", nil), uuid.New(), 86)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListLoadReturnsCart(t *testing.T) {
	listID := uuid.New()
	svc := &stubListService{load: &listsvc.LoadResult{ListName: "Week 12", Cart: &cartsvc.CartDTO{StoreNumber: 86}}}
	handler := ListLoad(svc, nil)

	req := withTestIdentity(httptest.NewRequest(http.MethodPost, "/api/lists/"+listID.String()+"/load", nil), uuid.New(), 86)
	req = withURLParam(req, "listId", listID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data listsvc.LoadResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ListName != "Week 12" {
		t.Fatalf("unexpected list name: %s", envelope.Data.ListName)
	}
}

func TestListDeleteNotFound(t *testing.T) {
	listID := uuid.New()
	svc := &stubListService{err: pkgerrors.New(pkgerrors.CodeNotFound, "list not found")}
	handler := ListDelete(svc, nil)

	req := withTestIdentity(httptest.NewRequest(http.MethodDelete, "/api/lists/"+listID.String(), nil), uuid.New(), 86)
	req = withURLParam(req, "listId", listID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
