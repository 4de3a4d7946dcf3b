package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kirillkom/hsa-claims-engine/internal/core/catalog"
	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
	"github.com/kirillkom/hsa-claims-engine/internal/core/ports"
)

type claimFixture struct {
	store     *ledgerStoreFake
	publisher *publisherFake
	recorder  *recorderFake
	uc        *ClaimUseCase
}

func newClaimFixture(classifier *classifierFake, accounts ...domain.Account) claimFixture {
	store := newLedgerStoreFake(accounts...)
	publisher := &publisherFake{}
	recorder := &recorderFake{}
	policy := NewAdjudicationPolicy(catalog.Default(), classifier)
	ledger := NewClaimLedger(store, newLockerFake(), recorder)
	return claimFixture{
		store:     store,
		publisher: publisher,
		recorder:  recorder,
		uc:        NewClaimUseCase(store, store, policy, ledger, publisher, recorder),
	}
}

func testAccount(balance string) domain.Account {
	return domain.Account{
		ID:         "acc-1",
		OwnerID:    "user-1",
		Balance:    decimal.RequireFromString(balance),
		CardNumber: "4111111111111111",
		CardIssued: true,
	}
}

func submission(service, amount string) domain.ClaimSubmission {
	return domain.ClaimSubmission{
		ProviderName:       "Main Street Clinic",
		ServiceDescription: service,
		Amount:             decimal.RequireFromString(amount),
	}
}

func TestSubmitCoveredClaimDebitsOwnerAccount(t *testing.T) {
	fx := newClaimFixture(&classifierFake{}, testAccount("500"))

	claim, decision, err := fx.uc.Submit(context.Background(), OwnerAccount{OwnerID: "user-1"}, submission("Dental Cleaning", "120"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if claim.Status != domain.ClaimStatusCovered || decision.Status != domain.ClaimStatusCovered {
		t.Fatalf("expected covered, got claim=%s decision=%s", claim.Status, decision.Status)
	}
	if claim.Channel != domain.ClaimChannelPortal || claim.Notes != "" {
		t.Fatalf("unexpected portal claim: %+v", claim)
	}
	if !fx.store.balance("acc-1").Equal(decimal.NewFromInt(380)) {
		t.Fatalf("expected balance 380, got %s", fx.store.balance("acc-1"))
	}
	if len(fx.publisher.events) != 1 || fx.publisher.events[0].Type != domain.ClaimEventCreated {
		t.Fatalf("expected created event, got %+v", fx.publisher.events)
	}
	if len(fx.recorder.decisions) != 1 || fx.recorder.decisions[0] != "catalog/covered" {
		t.Fatalf("unexpected recorded decisions: %v", fx.recorder.decisions)
	}
}

func TestSubmitInsufficientBalanceReportsLedgerDecision(t *testing.T) {
	fx := newClaimFixture(&classifierFake{}, testAccount("0"))

	claim, decision, err := fx.uc.Submit(context.Background(), OwnerAccount{OwnerID: "user-1"}, submission("Dental cleaning", "150"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if claim.Status != domain.ClaimStatusPending || claim.Notes != "Insufficient balance for automatic approval" {
		t.Fatalf("unexpected claim: %+v", claim)
	}
	if decision.Source != domain.DecisionSourceLedger || decision.Status != domain.ClaimStatusPending {
		t.Fatalf("unexpected decision: %+v", decision)
	}
	if !fx.store.balance("acc-1").IsZero() {
		t.Fatalf("balance must stay 0, got %s", fx.store.balance("acc-1"))
	}
}

func TestSubmitCardTransactionUsesDefaultNote(t *testing.T) {
	fx := newClaimFixture(&classifierFake{}, testAccount("100"))

	claim, _, err := fx.uc.Submit(context.Background(), CardAccount{CardNumber: "4111 1111 1111 1111"}, submission("Flu shot", "25"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if claim.Channel != domain.ClaimChannelCard {
		t.Fatalf("expected card channel, got %s", claim.Channel)
	}
	if claim.Status != domain.ClaimStatusCovered || claim.Notes != "Submitted via Transaction Submission portal" {
		t.Fatalf("unexpected card claim: %+v", claim)
	}
}

func TestSubmitBothCallSitesShareAdjudication(t *testing.T) {
	inputs := []string{"Gym membership", "Massage therapy", "Random Unavailable Service", "Eyeglasses"}
	classifier := &classifierFake{result: domain.ClassifierResult{Eligible: true, Confidence: 70, Explanation: "Maybe."}}

	for _, input := range inputs {
		portal := newClaimFixture(classifier, testAccount("1000"))
		card := newClaimFixture(classifier, testAccount("1000"))

		a, _, err := portal.uc.Submit(context.Background(), OwnerAccount{OwnerID: "user-1"}, submission(input, "10"))
		if err != nil {
			t.Fatalf("portal Submit(%s) error = %v", input, err)
		}
		b, _, err := card.uc.Submit(context.Background(), CardAccount{CardNumber: "4111111111111111"}, submission(input, "10"))
		if err != nil {
			t.Fatalf("card Submit(%s) error = %v", input, err)
		}
		if a.Status != b.Status || a.RequiresDocumentation != b.RequiresDocumentation || a.DocumentationType != b.DocumentationType {
			t.Fatalf("%s: call sites disagree: %+v vs %+v", input, a, b)
		}
	}
}

func TestSubmitWithDocumentationStaysPending(t *testing.T) {
	fx := newClaimFixture(&classifierFake{}, testAccount("500"))

	sub := submission("Dental cleaning", "80")
	sub.HasDocumentation = true
	sub.DocumentCount = 2
	claim, _, err := fx.uc.Submit(context.Background(), OwnerAccount{OwnerID: "user-1"}, sub)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if claim.Status != domain.ClaimStatusPending || claim.Notes != "Claim submitted with 2 document(s). Under review." {
		t.Fatalf("unexpected claim: %+v", claim)
	}
	if !claim.HasDocumentation || claim.DocumentCount != 2 {
		t.Fatalf("documentation facts not stored: %+v", claim)
	}
	if !fx.store.balance("acc-1").Equal(decimal.NewFromInt(500)) {
		t.Fatalf("pending claim must not debit")
	}
}

func TestSubmitRejectsInvalidInputBeforeAdjudication(t *testing.T) {
	classifier := &classifierFake{}
	fx := newClaimFixture(classifier, testAccount("500"))

	_, _, err := fx.uc.Submit(context.Background(), OwnerAccount{OwnerID: "user-1"}, submission("", "10"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if classifier.calls != 0 || fx.store.commits != 0 {
		t.Fatalf("invalid input must not reach adjudication")
	}
}

func TestSubmitRejectsSubCentAmount(t *testing.T) {
	fx := newClaimFixture(&classifierFake{}, testAccount("500"))

	_, _, err := fx.uc.Submit(context.Background(), OwnerAccount{OwnerID: "user-1"}, submission("Dental cleaning", "499.995"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if fx.store.commits != 0 || !fx.store.balance("acc-1").Equal(decimal.NewFromInt(500)) {
		t.Fatalf("sub-cent amount must not reach the ledger, balance %s", fx.store.balance("acc-1"))
	}

	claim, _, err := fx.uc.Submit(context.Background(), OwnerAccount{OwnerID: "user-1"}, submission("Dental cleaning", "499.990"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if claim.Amount.Exponent() != -2 || !fx.store.balance("acc-1").Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("unexpected amount %s or balance %s", claim.Amount, fx.store.balance("acc-1"))
	}
}

func TestGetAccountReflectsDebits(t *testing.T) {
	fx := newClaimFixture(&classifierFake{}, testAccount("200"))

	if _, _, err := fx.uc.Submit(context.Background(), OwnerAccount{OwnerID: "user-1"}, submission("Flu shot", "45.25")); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	account, err := fx.uc.GetAccount(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if account.ID != "acc-1" || !account.Balance.Equal(decimal.RequireFromString("154.75")) {
		t.Fatalf("unexpected account: %+v", account)
	}

	if _, err := fx.uc.GetAccount(context.Background(), ""); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := fx.uc.GetAccount(context.Background(), "user-2"); !domain.IsKind(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
}

func TestSubmitResolverErrors(t *testing.T) {
	notIssued := testAccount("100")
	notIssued.CardIssued = false
	fx := newClaimFixture(&classifierFake{}, notIssued)

	cases := []struct {
		name     string
		resolver ports.AccountResolver
		kind     error
	}{
		{name: "missing identity", resolver: OwnerAccount{}, kind: domain.ErrUnauthorized},
		{name: "unknown owner", resolver: OwnerAccount{OwnerID: "user-2"}, kind: domain.ErrAccountNotFound},
		{name: "card not issued", resolver: CardAccount{CardNumber: "4111111111111111"}, kind: domain.ErrCardNotActive},
		{name: "unknown card", resolver: CardAccount{CardNumber: "5500000000000004"}, kind: domain.ErrCardNotActive},
		{name: "empty card", resolver: CardAccount{CardNumber: " "}, kind: domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := fx.uc.Submit(context.Background(), tc.resolver, submission("Flu shot", "10"))
			if !domain.IsKind(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
		})
	}
}

func TestSubmitSurvivesPublishFailure(t *testing.T) {
	fx := newClaimFixture(&classifierFake{}, testAccount("100"))
	fx.publisher.err = errors.New("nats down")

	claim, _, err := fx.uc.Submit(context.Background(), OwnerAccount{OwnerID: "user-1"}, submission("Flu shot", "10"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if claim.Status != domain.ClaimStatusCovered {
		t.Fatalf("expected covered, got %s", claim.Status)
	}
}

func TestUpdateClaimAllowsAnyTransitionWithoutTouchingBalance(t *testing.T) {
	fx := newClaimFixture(&classifierFake{}, testAccount("100"))
	claim, _, err := fx.uc.Submit(context.Background(), OwnerAccount{OwnerID: "user-1"}, submission("Flu shot", "30"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	transitions := []domain.ClaimStatus{
		domain.ClaimStatusNotCovered,
		domain.ClaimStatusMoreInformationNeeded,
		domain.ClaimStatusCovered,
		domain.ClaimStatusPending,
	}
	for _, status := range transitions {
		next := status
		updated, err := fx.uc.UpdateClaim(context.Background(), "user-1", claim.ID, domain.ClaimUpdate{Status: &next})
		if err != nil {
			t.Fatalf("UpdateClaim(%s) error = %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("expected %s, got %s", status, updated.Status)
		}
	}
	if !fx.store.balance("acc-1").Equal(decimal.NewFromInt(70)) {
		t.Fatalf("updates must not move balance, got %s", fx.store.balance("acc-1"))
	}
	if got := len(fx.publisher.events); got != 1+len(transitions) {
		t.Fatalf("expected %d events, got %d", 1+len(transitions), got)
	}
}

func TestUpdateClaimNotesOnly(t *testing.T) {
	fx := newClaimFixture(&classifierFake{}, testAccount("100"))
	claim, _, _ := fx.uc.Submit(context.Background(), OwnerAccount{OwnerID: "user-1"}, submission("Gym membership", "30"))

	notes := "Letter received"
	updated, err := fx.uc.UpdateClaim(context.Background(), "user-1", claim.ID, domain.ClaimUpdate{Notes: &notes})
	if err != nil {
		t.Fatalf("UpdateClaim() error = %v", err)
	}
	if updated.Notes != notes || updated.Status != domain.ClaimStatusPending {
		t.Fatalf("unexpected claim: %+v", updated)
	}
}

func TestUpdateClaimValidation(t *testing.T) {
	fx := newClaimFixture(&classifierFake{}, testAccount("100"),
		domain.Account{ID: "acc-2", OwnerID: "user-2", Balance: decimal.Zero})
	claim, _, _ := fx.uc.Submit(context.Background(), OwnerAccount{OwnerID: "user-1"}, submission("Flu shot", "10"))

	if _, err := fx.uc.UpdateClaim(context.Background(), "user-1", claim.ID, domain.ClaimUpdate{}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty update, got %v", err)
	}

	bogus := domain.ClaimStatus("approved")
	if _, err := fx.uc.UpdateClaim(context.Background(), "user-1", claim.ID, domain.ClaimUpdate{Status: &bogus}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown status, got %v", err)
	}

	notes := "hijack"
	if _, err := fx.uc.UpdateClaim(context.Background(), "user-2", claim.ID, domain.ClaimUpdate{Notes: &notes}); !domain.IsKind(err, domain.ErrClaimNotFound) {
		t.Fatalf("expected other owner to get not found, got %v", err)
	}
}

func TestListClaimsFiltersByStatus(t *testing.T) {
	fx := newClaimFixture(&classifierFake{}, testAccount("1000"))
	for _, service := range []string{"Flu shot", "Gym membership", "Eyeglasses"} {
		if _, _, err := fx.uc.Submit(context.Background(), OwnerAccount{OwnerID: "user-1"}, submission(service, "10")); err != nil {
			t.Fatalf("Submit(%s) error = %v", service, err)
		}
	}

	all, err := fx.uc.ListClaims(context.Background(), "user-1", domain.ClaimFilter{})
	if err != nil {
		t.Fatalf("ListClaims() error = %v", err)
	}
	if len(all) != 3 || all[0].ServiceDescription != "Eyeglasses" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	pending, err := fx.uc.ListClaims(context.Background(), "user-1", domain.ClaimFilter{Status: domain.ClaimStatusPending})
	if err != nil {
		t.Fatalf("ListClaims(pending) error = %v", err)
	}
	if len(pending) != 1 || pending[0].ServiceDescription != "Gym membership" {
		t.Fatalf("unexpected pending claims: %+v", pending)
	}

	if _, err := fx.uc.ListClaims(context.Background(), "user-1", domain.ClaimFilter{Status: "bogus"}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
