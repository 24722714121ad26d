package host

import (
	"errors"
	"fmt"
)

// InTransaction runs fn inside one transaction. The transaction is committed
// when fn returns nil and rolled back on error or panic, so it never stays open.
func InTransaction(tm TransactionManager, name string, fn func() error) (err error) {
	tx, err := tm.Begin(name)
	if err != nil {
		return fmt.Errorf("begin transaction %q: %w", name, err)
	}

	done := false
	defer func() {
		if done {
			return
		}
		if rbErr := tx.RollBack(); rbErr != nil && err != nil {
			err = errors.Join(err, fmt.Errorf("roll back %q: %w", name, rbErr))
		}
	}()

	if err := fn(); err != nil {
		return err
	}

	done = true
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction %q: %w", name, err)
	}
	return nil
}
