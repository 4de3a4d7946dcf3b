package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/hsa-claims-engine/internal/config"
	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
	"github.com/kirillkom/hsa-claims-engine/internal/core/ports"
)

type claimServiceFake struct {
	err error

	lastResolver ports.AccountResolver
	lastFilter   domain.ClaimFilter
	lastUpdate   domain.ClaimUpdate
}

func (f *claimServiceFake) Submit(_ context.Context, resolver ports.AccountResolver, submission domain.ClaimSubmission) (*domain.Claim, domain.Decision, error) {
	f.lastResolver = resolver
	if f.err != nil {
		return nil, domain.Decision{}, f.err
	}
	claim := &domain.Claim{
		ID:                 "claim-1",
		ServiceDescription: submission.ServiceDescription,
		Amount:             submission.Amount,
		Status:             domain.ClaimStatusPending,
		Channel:            resolver.Channel(),
	}
	return claim, domain.Decision{Status: claim.Status, Source: domain.DecisionSourceClassifier, Confidence: 40}, nil
}

func (f *claimServiceFake) GetAccount(_ context.Context, ownerID string) (*domain.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Account{ID: "acc-1", OwnerID: ownerID}, nil
}

func (f *claimServiceFake) ListClaims(_ context.Context, _ string, filter domain.ClaimFilter) ([]domain.Claim, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return nil, nil
}

func (f *claimServiceFake) GetClaim(_ context.Context, _, claimID string) (*domain.Claim, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Claim{ID: claimID, Status: domain.ClaimStatusPending}, nil
}

func (f *claimServiceFake) UpdateClaim(_ context.Context, _, claimID string, update domain.ClaimUpdate) (*domain.Claim, error) {
	f.lastUpdate = update
	if f.err != nil {
		return nil, f.err
	}
	claim := &domain.Claim{ID: claimID, Status: domain.ClaimStatusPending}
	if update.Status != nil {
		claim.Status = *update.Status
	}
	return claim, nil
}

type eligibilityFake struct {
	err error
}

func (f eligibilityFake) CheckEligibility(_ context.Context, service string) (*domain.EligibilityCheck, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.EligibilityCheck{Service: service, Eligible: true, Confidence: 100}, nil
}

func doJSON(t *testing.T, handler http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(userIDHeader, userID)
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func validClaimBody() map[string]any {
	return map[string]any{
		"provider_name": "Smile Dental",
		"service":       "Dental cleaning",
		"amount":        120.5,
	}
}

func TestSubmitClaimMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "submit", errors.New("bad")), http.StatusBadRequest},
		{"unauthorized", domain.WrapError(domain.ErrUnauthorized, "submit", errors.New("no user")), http.StatusUnauthorized},
		{"account not found", domain.WrapError(domain.ErrAccountNotFound, "submit", errors.New("owner=u")), http.StatusNotFound},
		{"temporary", domain.WrapError(domain.ErrTemporary, "submit", errors.New("lock busy")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewRouter(config.Config{}, &claimServiceFake{err: tc.err}, eligibilityFake{}).Handler()
			res := doJSON(t, handler, http.MethodPost, "/v1/claims", "user-1", validClaimBody())
			if res.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, res.Code, res.Body.String())
			}
		})
	}
}

func TestInternalErrorsDoNotLeakDetails(t *testing.T) {
	handler := NewRouter(config.Config{}, &claimServiceFake{err: errors.New("pq: password authentication failed")}, eligibilityFake{}).Handler()
	res := doJSON(t, handler, http.MethodGet, "/v1/claims/claim-1", "user-1", nil)
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	if strings.Contains(res.Body.String(), "password") {
		t.Fatalf("response leaks internal error: %s", res.Body.String())
	}
}

func TestGetClaimReturns404ForNotFound(t *testing.T) {
	handler := NewRouter(
		config.Config{},
		&claimServiceFake{err: domain.WrapError(domain.ErrClaimNotFound, "get", errors.New("id=missing"))},
		eligibilityFake{},
	).Handler()

	res := doJSON(t, handler, http.MethodGet, "/v1/claims/missing", "user-1", nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestCardTransactionReturns404ForInactiveCard(t *testing.T) {
	handler := NewRouter(
		config.Config{},
		&claimServiceFake{err: domain.WrapError(domain.ErrCardNotActive, "resolve card", errors.New("card=4111"))},
		eligibilityFake{},
	).Handler()

	body := validClaimBody()
	body["card_number"] = "4111 1111 1111 1111"
	res := doJSON(t, handler, http.MethodPost, "/v1/public/card-transactions", "", body)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestEligibilityCheckMapsInvalidInput(t *testing.T) {
	handler := NewRouter(
		config.Config{},
		&claimServiceFake{},
		eligibilityFake{err: domain.WrapError(domain.ErrInvalidInput, "check", errors.New("service is required"))},
	).Handler()

	res := doJSON(t, handler, http.MethodPost, "/v1/eligibility/check", "", map[string]any{"service": "   "})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}
