package httpadapter

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
	"github.com/kirillkom/hsa-claims-engine/internal/core/usecase"
)

type claimSubmissionRequest struct {
	ProviderName     string          `json:"provider_name"`
	Service          string          `json:"service"`
	Amount           decimal.Decimal `json:"amount"`
	Date             string          `json:"date"`
	HasDocumentation bool            `json:"has_documentation"`
	DocumentCount    int             `json:"document_count"`
}

func (req claimSubmissionRequest) toSubmission() (domain.ClaimSubmission, error) {
	date, err := parseServiceDate(req.Date)
	if err != nil {
		return domain.ClaimSubmission{}, err
	}
	return domain.ClaimSubmission{
		ProviderName:       req.ProviderName,
		ServiceDescription: req.Service,
		Amount:             req.Amount,
		Date:               date,
		HasDocumentation:   req.HasDocumentation,
		DocumentCount:      req.DocumentCount,
	}, nil
}

// parseServiceDate accepts a calendar date or a full RFC 3339 timestamp.
// Empty means "now" and is filled in during normalization.
func parseServiceDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domain.WrapError(domain.ErrInvalidInput, "parse service date", fmt.Errorf("date %q is not YYYY-MM-DD or RFC 3339", raw))
	}
	return t.UTC(), nil
}

type submitClaimResponse struct {
	Claim                 *domain.Claim         `json:"claim"`
	Status                domain.ClaimStatus    `json:"status"`
	Notes                 string                `json:"notes"`
	RequiresDocumentation bool                  `json:"requires_documentation"`
	DocumentationType     string                `json:"documentation_type"`
	DecisionSource        domain.DecisionSource `json:"decision_source"`
	Confidence            int                   `json:"confidence"`
}

type claimUpdateRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

func ownerID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(userIDHeader))
}

func (rt *Router) submitClaim(w http.ResponseWriter, r *http.Request) {
	var req claimSubmissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	submission, err := req.toSubmission()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	claim, decision, err := rt.claims.Submit(r.Context(), usecase.OwnerAccount{OwnerID: ownerID(r)}, submission)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, submitClaimResponse{
		Claim:                 claim,
		Status:                claim.Status,
		Notes:                 claim.Notes,
		RequiresDocumentation: claim.RequiresDocumentation,
		DocumentationType:     claim.DocumentationType,
		DecisionSource:        decision.Source,
		Confidence:            decision.Confidence,
	})
}

func (rt *Router) listClaims(w http.ResponseWriter, r *http.Request) {
	var (
		status string
		limit  int
	)
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "status", query, &status); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &limit); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := domain.ClaimFilter{Limit: limit}
	if status != "" {
		parsed, err := domain.ParseClaimStatus(status)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		filter.Status = parsed
	}

	claims, err := rt.claims.ListClaims(r.Context(), ownerID(r), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if claims == nil {
		claims = []domain.Claim{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"claims": claims})
}

func (rt *Router) getAccount(w http.ResponseWriter, r *http.Request) {
	account, err := rt.claims.GetAccount(r.Context(), ownerID(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"account": account})
}

func (rt *Router) getClaim(w http.ResponseWriter, r *http.Request) {
	claim, err := rt.claims.GetClaim(r.Context(), ownerID(r), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"claim": claim})
}

func (rt *Router) updateClaim(w http.ResponseWriter, r *http.Request) {
	var req claimUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var update domain.ClaimUpdate
	if req.Status != nil {
		status, err := domain.ParseClaimStatus(*req.Status)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		update.Status = &status
	}
	update.Notes = req.Notes
	if update.Empty() {
		writeDomainError(w, r, domain.WrapError(domain.ErrInvalidInput, "update claim", errors.New("status or notes is required")))
		return
	}

	claim, err := rt.claims.UpdateClaim(r.Context(), ownerID(r), r.PathValue("id"), update)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"claim": claim})
}
