package httpadapter

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
	"github.com/kirillkom/hsa-claims-engine/internal/core/usecase"
)

const messageTransactionProcessed = "Transaction processed successfully"

type cardTransactionRequest struct {
	claimSubmissionRequest
	CardNumber string `json:"card_number"`
}

type cardClaimSummary struct {
	ID      string             `json:"id"`
	Service string             `json:"service"`
	Amount  decimal.Decimal    `json:"amount"`
	Date    time.Time          `json:"date"`
	Status  domain.ClaimStatus `json:"status"`
}

type cardTransactionResponse struct {
	Message               string             `json:"message"`
	Status                domain.ClaimStatus `json:"status"`
	Notes                 string             `json:"notes"`
	RequiresDocumentation bool               `json:"requires_documentation"`
	DocumentationType     string             `json:"documentation_type"`
	Claim                 cardClaimSummary   `json:"claim"`
}

// submitCardTransaction is the card-present call site. It shares the
// adjudication path with submitClaim and only resolves the account differently.
func (rt *Router) submitCardTransaction(w http.ResponseWriter, r *http.Request) {
	var req cardTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	submission, err := req.toSubmission()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	claim, _, err := rt.claims.Submit(r.Context(), usecase.CardAccount{CardNumber: req.CardNumber}, submission)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, cardTransactionResponse{
		Message:               messageTransactionProcessed,
		Status:                claim.Status,
		Notes:                 claim.Notes,
		RequiresDocumentation: claim.RequiresDocumentation,
		DocumentationType:     claim.DocumentationType,
		Claim: cardClaimSummary{
			ID:      claim.ID,
			Service: claim.ServiceDescription,
			Amount:  claim.Amount,
			Date:    claim.Date,
			Status:  claim.Status,
		},
	})
}

func (rt *Router) checkEligibility(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Service string `json:"service"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	check, err := rt.eligibility.CheckEligibility(r.Context(), req.Service)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}
