package application

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

func validateAccount(account string) error {
	if account == "" {
		return fmt.Errorf("%w: missing account", ErrInvalidAccount)
	}
	if _, err := solana.PublicKeyFromBase58(account); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAccount, err)
	}
	return nil
}

func isAccount(value interface{}) error {
	account, _ := value.(string)
	return validateAccount(account)
}
