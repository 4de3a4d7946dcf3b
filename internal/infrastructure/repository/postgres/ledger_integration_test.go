//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
	"github.com/kirillkom/hsa-claims-engine/internal/infrastructure/repository/postgres"
)

const (
	testPort     = 15433
	testDBName   = "hsatest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	pg := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDBName).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30 * time.Second),
	)
	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	dsn := fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable", testUser, testPassword, testPort, testDBName)
	db, err := postgres.OpenDB(dsn)
	if err == nil {
		err = postgres.EnsureSchema(context.Background(), db)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "prepare database: %v\n", err)
		_ = pg.Stop()
		os.Exit(1)
	}
	testDB = db

	code := m.Run()

	_ = db.Close()
	if err := pg.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}
	os.Exit(code)
}

func TestCommitClaimNeverOverdrawsUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	accounts := postgres.NewAccountRepository(testDB)
	claims := postgres.NewClaimRepository(testDB)

	now := time.Now().UTC()
	account := &domain.Account{
		ID:        uuid.NewString(),
		OwnerID:   "owner-" + uuid.NewString(),
		Balance:   decimal.NewFromInt(500),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := accounts.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	const workers = 10
	amount := decimal.NewFromInt(100)
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		debited      int
		insufficient int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claim := &domain.Claim{
				ID:                 uuid.NewString(),
				AccountID:          account.ID,
				ProviderName:       "Clinic",
				ServiceDescription: "Physical therapy",
				Amount:             amount,
				Date:               now,
				Status:             domain.ClaimStatusCovered,
				Channel:            domain.ClaimChannelPortal,
				CreatedAt:          now,
				UpdatedAt:          now,
			}
			_, err := claims.CommitClaim(ctx, claim, amount)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				debited++
			case domain.IsKind(err, domain.ErrInsufficientBalance):
				insufficient++
			default:
				t.Errorf("CommitClaim() unexpected error = %v", err)
			}
		}()
	}
	wg.Wait()

	if debited != 5 || insufficient != 5 {
		t.Fatalf("expected 5 debits and 5 rejections, got %d and %d", debited, insufficient)
	}
	stored, err := accounts.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if !stored.Balance.IsZero() {
		t.Fatalf("expected zero balance, got %s", stored.Balance)
	}

	list, err := claims.ListClaims(ctx, account.ID, domain.ClaimFilter{Limit: 50})
	if err != nil {
		t.Fatalf("ListClaims() error = %v", err)
	}
	if len(list) != 5 {
		t.Fatalf("rejected debits must not persist a claim, got %d claims", len(list))
	}
}
