package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/samber/lo"

	"github.com/okian/supportxp/internal/domain/model"
)

const (
	defaultHistoryLimit = 100
	defaultAwardedLimit = 100000
)

// account is the running XP total of one user.
type account struct {
	total   int
	count   int
	history []model.Award // newest last, capped at historyLimit
}

// XPLedger is an in-memory record of XP awards per user. It remembers the
// most recent awardedLimit submission ids and awards each of them at most
// once; older ids are left to the intake deduper.
type XPLedger struct {
	mu           sync.RWMutex
	accounts     map[string]*account
	awarded      *simplelru.LRU[string, struct{}]
	awardedLimit int
	historyLimit int
	onRecord     func(users int)
}

// NewXPLedger creates an empty ledger.
func NewXPLedger(opts ...LedgerOption) *XPLedger {
	l := &XPLedger{
		accounts:     map[string]*account{},
		awardedLimit: defaultAwardedLimit,
		historyLimit: defaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(l)
	}
	// the limit is always positive, so construction cannot fail
	l.awarded, _ = simplelru.NewLRU[string, struct{}](l.awardedLimit, nil)
	return l
}

// Record adds a to the user's total. It returns false without changing
// anything when the submission was already recorded.
func (l *XPLedger) Record(_ context.Context, a model.Award) (bool, error) {
	if strings.TrimSpace(a.SubmissionID) == "" {
		return false, errors.Wrap(ErrEmptyID, "award submission id")
	}
	if strings.TrimSpace(a.UserID) == "" {
		return false, errors.Wrapf(ErrEmptyID, "award %s user id", a.SubmissionID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.awarded.Contains(a.SubmissionID) {
		return false, nil
	}
	l.awarded.Add(a.SubmissionID, struct{}{})

	acc, ok := l.accounts[a.UserID]
	if !ok {
		acc = &account{}
		l.accounts[a.UserID] = acc
	}
	acc.total += a.TotalXP
	acc.count++
	acc.history = append(acc.history, a)
	if over := len(acc.history) - l.historyLimit; over > 0 {
		acc.history = slices.Clone(acc.history[over:])
	}

	if l.onRecord != nil {
		l.onRecord(len(l.accounts))
	}
	return true, nil
}

// Standing returns the user's total and rank.
func (l *XPLedger) Standing(_ context.Context, userID string) (model.XPStanding, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.accounts[userID]; !ok {
		return model.XPStanding{}, errors.Wrapf(ErrUserNotFound, "user %s", userID)
	}
	for _, s := range l.ranked() {
		if s.UserID == userID {
			return s, nil
		}
	}
	return model.XPStanding{}, errors.Wrapf(ErrUserNotFound, "user %s", userID)
}

// TopN returns the n users with the most XP, highest first.
func (l *XPLedger) TopN(_ context.Context, n int) ([]model.XPStanding, error) {
	if n < 1 {
		return nil, errors.Wrapf(ErrInvalidLimit, "limit %d", n)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	all := l.ranked()
	if n < len(all) {
		all = all[:n]
	}
	return all, nil
}

// Awards returns the most recent awards of userID, oldest first.
func (l *XPLedger) Awards(_ context.Context, userID string) []model.Award {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acc, ok := l.accounts[userID]
	if !ok {
		return []model.Award{}
	}
	return slices.Clone(acc.history)
}

// Users returns the number of users holding XP.
func (l *XPLedger) Users() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.accounts)
}

// ranked orders every account by total desc then user id, assigning dense
// ranks: equal totals share a rank and the next total takes the next one.
// Must be called with mu held.
func (l *XPLedger) ranked() []model.XPStanding {
	out := lo.MapToSlice(l.accounts, func(id string, acc *account) model.XPStanding {
		return model.XPStanding{UserID: id, TotalXP: acc.total, Activities: acc.count}
	})
	slices.SortFunc(out, func(a, b model.XPStanding) int {
		if a.TotalXP != b.TotalXP {
			return b.TotalXP - a.TotalXP
		}
		return strings.Compare(a.UserID, b.UserID)
	})
	rank := 0
	for i := range out {
		if i == 0 || out[i].TotalXP != out[i-1].TotalXP {
			rank++
		}
		out[i].Rank = rank
	}
	return out
}
