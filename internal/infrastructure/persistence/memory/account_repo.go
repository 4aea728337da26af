package memory

import (
	"context"
	"sync"

	"github.com/pathwise/pathwise-hub/internal/domain/account"
	"github.com/pathwise/pathwise-hub/internal/domain/shared"
)

// AccountRepository implements account.Repository.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[shared.Username]*account.Account
	order    []shared.Username
}

// NewAccountRepository creates an empty repository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[shared.Username]*account.Account)}
}

func (r *AccountRepository) Create(_ context.Context, acc *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[acc.Username]; ok {
		return shared.ErrUsernameTaken
	}
	r.accounts[acc.Username] = acc.Clone()
	r.order = append(r.order, acc.Username)
	return nil
}

func (r *AccountRepository) Get(_ context.Context, username shared.Username) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.accounts[username]
	if !ok {
		return nil, shared.ErrAccountNotFound
	}
	return acc.Clone(), nil
}

func (r *AccountRepository) Update(_ context.Context, acc *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[acc.Username]; !ok {
		return shared.ErrAccountNotFound
	}
	r.accounts[acc.Username] = acc.Clone()
	return nil
}

func (r *AccountRepository) List(_ context.Context) ([]*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*account.Account, 0, len(r.order))
	for _, u := range r.order {
		out = append(out, r.accounts[u].Clone())
	}
	return out, nil
}

func (r *AccountRepository) Exists(_ context.Context, username shared.Username) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.accounts[username]
	return ok, nil
}
