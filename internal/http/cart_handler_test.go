package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Mock ---

type CartServiceMock struct {
	addResult service.AddResult
	view      domain.CartView
	deleted   int64
	err       error

	gotSession string
	gotProduct string
	gotDelta   int
}

func (m *CartServiceMock) AddItem(_ context.Context, sessionID, productID string, delta int) (service.AddResult, error) {
	m.gotSession, m.gotProduct, m.gotDelta = sessionID, productID, delta
	return m.addResult, m.err
}

func (m *CartServiceMock) GetCart(_ context.Context, sessionID string) (domain.CartView, error) {
	m.gotSession = sessionID
	return m.view, m.err
}

func (m *CartServiceMock) Cleanup(_ context.Context, sessionID string) (int64, error) {
	m.gotSession = sessionID
	return m.deleted, m.err
}

func TestAddItem_Success(t *testing.T) {
	productID := primitive.NewObjectID()
	mock := &CartServiceMock{addResult: service.AddResult{Line: &domain.CartLine{
		ID: primitive.NewObjectID(), SessionID: "s1", ProductID: productID, Quantity: 2,
	}}}

	handler := NewCartHandler(mock, 5*time.Second)
	body := fmt.Sprintf(`{"session_id":"s1","product_id":"%s","quantity":2}`, productID.Hex())
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/cart/add", bytes.NewBufferString(body))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if mock.gotDelta != 2 {
		t.Errorf("Expected delta 2, got %d", mock.gotDelta)
	}

	var line domain.CartLine
	if err := json.NewDecoder(recorder.Body).Decode(&line); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if line.ProductID != productID {
		t.Errorf("Expected product_id %s, got %s", productID.Hex(), line.ProductID.Hex())
	}
	if line.Quantity != 2 {
		t.Errorf("Expected quantity 2, got %d", line.Quantity)
	}
}

func TestAddItem_DefaultQuantityIsOne(t *testing.T) {
	mock := &CartServiceMock{addResult: service.AddResult{Line: &domain.CartLine{Quantity: 1}}}
	handler := NewCartHandler(mock, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/cart/add",
		bytes.NewBufferString(`{"session_id":"s1","product_id":"abc"}`))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if mock.gotDelta != 1 {
		t.Errorf("Expected default delta 1, got %d", mock.gotDelta)
	}
}

func TestAddItem_NegativeQuantityIsPassedThrough(t *testing.T) {
	mock := &CartServiceMock{addResult: service.AddResult{Removed: true}}
	handler := NewCartHandler(mock, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/cart/add",
		bytes.NewBufferString(`{"session_id":"s1","product_id":"abc","quantity":-3}`))

	handler.AddItem(recorder, request)

	if mock.gotDelta != -3 {
		t.Errorf("Expected delta -3, got %d", mock.gotDelta)
	}
	var resp RemovedResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "removed" {
		t.Errorf("Expected status 'removed', got '%s'", resp.Status)
	}
}

func TestAddItem_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid json", `{`, nil, http.StatusBadRequest, "invalid_request"},
		{"missing session", `{"product_id":"abc"}`, nil, http.StatusBadRequest, "invalid_request"},
		{"invalid identifier", `{"session_id":"s1","product_id":"abc"}`, service.ErrInvalidIdentifier, http.StatusBadRequest, "invalid_identifier"},
		{"not found", `{"session_id":"s1","product_id":"abc"}`, fmt.Errorf("product x: %w", service.ErrNotFound), http.StatusNotFound, "not_found"},
		{"invalid quantity", `{"session_id":"s1","product_id":"abc","quantity":0}`, service.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
		{"busy", `{"session_id":"s1","product_id":"abc"}`, service.ErrSessionBusy, http.StatusConflict, "session_busy"},
		{"store failure", `{"session_id":"s1","product_id":"abc"}`, errors.New("connection reset"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCartHandler(&CartServiceMock{err: tt.err}, 5*time.Second)
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest("POST", "/api/cart/add", bytes.NewBufferString(tt.body))

			handler.AddItem(recorder, request)

			if recorder.Code != tt.wantStatus {
				t.Errorf("Expected status code %d, got %d", tt.wantStatus, recorder.Code)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("Expected code '%s', got '%s'", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestGetCart_Success(t *testing.T) {
	mock := &CartServiceMock{view: domain.CartView{
		Items: []domain.CartItemView{{Title: "Classic Tee", Price: 19.99, Quantity: 2, Subtotal: 39.98}},
		Total: 39.98,
	}}
	handler := NewCartHandler(mock, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/cart?session_id=s1", nil)

	handler.GetCart(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if mock.gotSession != "s1" {
		t.Errorf("Expected session 's1', got '%s'", mock.gotSession)
	}

	var view domain.CartView
	if err := json.NewDecoder(recorder.Body).Decode(&view); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if view.Total != 39.98 {
		t.Errorf("Expected total 39.98, got %f", view.Total)
	}
	if len(view.Items) != 1 || view.Items[0].Subtotal != 39.98 {
		t.Errorf("unexpected items: %+v", view.Items)
	}
}

func TestGetCart_MissingSession(t *testing.T) {
	handler := NewCartHandler(&CartServiceMock{}, 5*time.Second)
	recorder := httptest.NewRecorder()

	handler.GetCart(recorder, httptest.NewRequest("GET", "/api/cart", nil))

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestCleanup_ReturnsDeletedCount(t *testing.T) {
	handler := NewCartHandler(&CartServiceMock{deleted: 2}, 5*time.Second)
	recorder := httptest.NewRecorder()

	handler.Cleanup(recorder, httptest.NewRequest("DELETE", "/api/cart/cleanup?session_id=s1", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	var resp CleanupResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Deleted != 2 {
		t.Errorf("Expected deleted 2, got %d", resp.Deleted)
	}
}
