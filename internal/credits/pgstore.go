package credits

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"luxelens/internal/infra"
	"luxelens/internal/sqlinline"
)

// DefaultAccount is the balance row used when no account is configured. The
// studio is single-tenant today; the account column keeps the schema ready
// for multi-tenant balances.
const DefaultAccount = "studio"

// PGStore persists the balance in Postgres through the inline-SQL runner.
type PGStore struct {
	sql     infra.SQLExecutor
	account string
}

// NewPGStore wires a store against the given executor and account name.
func NewPGStore(sql infra.SQLExecutor, account string) *PGStore {
	account = strings.TrimSpace(account)
	if account == "" {
		account = DefaultAccount
	}
	return &PGStore{sql: sql, account: account}
}

func (s *PGStore) Load(ctx context.Context) (int, bool, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectCreditBalance, s.account)
	var remaining int
	if err := row.Scan(&remaining); err != nil {
		if infra.IsNoRows(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("credits: select balance: %w", err)
	}
	return remaining, true, nil
}

func (s *PGStore) Save(ctx context.Context, remaining int) error {
	if remaining < 0 {
		return errors.New("credits: negative balance")
	}
	if _, err := s.sql.Exec(ctx, sqlinline.QUpsertCreditBalance, s.account, remaining); err != nil {
		return fmt.Errorf("credits: upsert balance: %w", err)
	}
	return nil
}

var _ Store = (*PGStore)(nil)
