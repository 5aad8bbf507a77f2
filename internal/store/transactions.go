package store

import (
	"fmt"

	"taxledger/internal/models"
)

// Transactions returns a copy of the t ledger, newest first.
func (s *Store) Transactions(t models.TransactionType) ([]models.Transaction, error) {
	if err := checkType(t); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.transactions[t]
	out := make([]models.Transaction, len(src))
	for i, tx := range src {
		out[i] = tx.Clone()
	}
	return out, nil
}

// GetTransaction returns a copy of the transaction with the given id.
func (s *Store) GetTransaction(t models.TransactionType, id string) (models.Transaction, error) {
	if err := checkType(t); err != nil {
		return models.Transaction{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(t, id)
	if i < 0 {
		return models.Transaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	return s.transactions[t][i].Clone(), nil
}

// Claims maps each referenced receipt URI to the id of the transaction that
// holds it.
type Claims map[string]string

// OwnedByOther reports whether uri is held by a transaction other than id.
func (c Claims) OwnedByOther(uri, id string) bool {
	owner, ok := c[uri]
	return ok && owner != id
}

// AddTransaction stores a new transaction with a fresh id at the head of its
// ledger.
func (s *Store) AddTransaction(t models.TransactionType, in models.TransactionInput) (models.Transaction, error) {
	return s.AddTransactionChecked(t, in, nil)
}

// AddTransactionChecked is AddTransaction with a check that runs under the
// write lock against the current receipt claims. A non-nil error from check
// aborts the insert and is returned unchanged.
func (s *Store) AddTransactionChecked(t models.TransactionType, in models.TransactionInput, check func(Claims) error) (models.Transaction, error) {
	if err := checkType(t); err != nil {
		return models.Transaction{}, err
	}
	tx := fromInput(newID(), in)

	s.mu.Lock()
	defer s.mu.Unlock()

	if check != nil {
		if err := check(s.claimsLocked()); err != nil {
			return models.Transaction{}, err
		}
	}

	ledger := make([]models.Transaction, 0, len(s.transactions[t])+1)
	ledger = append(ledger, tx)
	ledger = append(ledger, s.transactions[t]...)
	s.transactions[t] = ledger
	s.enqueue(TransactionKey(t), ledger)
	return tx.Clone(), nil
}

// UpdateTransaction replaces every non-id field of a transaction and returns
// the previous and the new version.
func (s *Store) UpdateTransaction(t models.TransactionType, id string, in models.TransactionInput) (before, after models.Transaction, err error) {
	return s.ModifyTransaction(t, id, func(tx *models.Transaction, _ Claims) error {
		*tx = fromInput(tx.ID, in)
		return nil
	})
}

// ModifyTransaction applies fn to a copy of a transaction while holding the
// write lock, so the read, the checks in fn and the write are one step. The
// copy is stored only when fn returns nil; its id cannot be changed. fn must
// not call back into the Store.
func (s *Store) ModifyTransaction(t models.TransactionType, id string, fn func(tx *models.Transaction, claims Claims) error) (before, after models.Transaction, err error) {
	if err := checkType(t); err != nil {
		return before, after, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(t, id)
	if i < 0 {
		return before, after, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	before = s.transactions[t][i]
	after = before.Clone()
	if err := fn(&after, s.claimsLocked()); err != nil {
		return models.Transaction{}, models.Transaction{}, err
	}
	after.ID = id
	after = after.Clone()
	if len(after.Attachments) == 0 {
		after.Attachments = nil
	}

	ledger := append([]models.Transaction(nil), s.transactions[t]...)
	ledger[i] = after
	s.transactions[t] = ledger
	s.enqueue(TransactionKey(t), ledger)
	return before.Clone(), after.Clone(), nil
}

// DeleteTransaction removes a transaction and returns it so the caller can
// release its attachment files.
func (s *Store) DeleteTransaction(t models.TransactionType, id string) (models.Transaction, error) {
	if err := checkType(t); err != nil {
		return models.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(t, id)
	if i < 0 {
		return models.Transaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	src := s.transactions[t]
	removed := src[i]

	ledger := make([]models.Transaction, 0, len(src)-1)
	ledger = append(ledger, src[:i]...)
	ledger = append(ledger, src[i+1:]...)
	s.transactions[t] = ledger
	s.enqueue(TransactionKey(t), ledger)
	return removed.Clone(), nil
}

// AllAttachments lists the attachments of every transaction in both ledgers.
func (s *Store) AllAttachments() []models.Attachment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Attachment
	for _, t := range models.TransactionTypes {
		for _, tx := range s.transactions[t] {
			out = append(out, tx.Clone().Attachments...)
		}
	}
	return out
}

// claimsLocked must be called with mu held.
func (s *Store) claimsLocked() Claims {
	claims := make(Claims)
	for _, t := range models.TransactionTypes {
		for _, tx := range s.transactions[t] {
			for _, a := range tx.Attachments {
				claims[a.URI] = tx.ID
			}
		}
	}
	return claims
}

// indexOf must be called with mu held.
func (s *Store) indexOf(t models.TransactionType, id string) int {
	for i, tx := range s.transactions[t] {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

func fromInput(id string, in models.TransactionInput) models.Transaction {
	tx := models.Transaction{
		ID:          id,
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date,
		Category:    in.Category,
	}
	if len(in.Attachments) > 0 {
		tx.Attachments = in.Attachments
	}
	return tx.Clone()
}
