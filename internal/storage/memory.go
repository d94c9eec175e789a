package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"subtrack/internal/core"
)

// MemoryStore keeps all records in process memory. It backs tests and the
// demo mode, and implements the same method set as SQLiteRepository.
type MemoryStore struct {
	mu sync.RWMutex

	subs     map[int64]core.Subscription
	logs     map[int64]core.UsageLog
	invs     map[int64]core.Investment
	usages   map[int64]core.InvestmentUsage
	activity []ActivityEntry

	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subs:   make(map[int64]core.Subscription),
		logs:   make(map[int64]core.UsageLog),
		invs:   make(map[int64]core.Investment),
		usages: make(map[int64]core.InvestmentUsage),
		nextID: 1,
	}
}

func (s *MemoryStore) newID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// --- subscriptions ---

func (s *MemoryStore) CreateSubscription(_ context.Context, sub core.Subscription) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub.ID = s.newID()
	sub.Active = true
	sub.CreatedAt = time.Now().UTC()
	s.subs[sub.ID] = sub
	return sub.ID, nil
}

func (s *MemoryStore) UpdateSubscription(_ context.Context, sub core.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.subs[sub.ID]
	if !ok || !cur.Active || cur.UserID != sub.UserID {
		return core.ErrNotFound
	}
	sub.Active = cur.Active
	sub.CreatedAt = cur.CreatedAt
	s.subs[sub.ID] = sub
	return nil
}

func (s *MemoryStore) SoftDeleteSubscription(_ context.Context, id int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[id]
	if !ok || !sub.Active || sub.UserID != userID {
		return core.ErrNotFound
	}
	sub.Active = false
	s.subs[id] = sub
	return nil
}

func (s *MemoryStore) GetSubscription(_ context.Context, id int64, userID string) (core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[id]
	if !ok || !sub.Active || sub.UserID != userID {
		return core.Subscription{}, core.ErrNotFound
	}
	return sub, nil
}

func (s *MemoryStore) ListActiveSubscriptions(_ context.Context, userID string) ([]core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listSubs(userID, func(core.Subscription) bool { return true }), nil
}

func (s *MemoryStore) ListCurrentSubscriptions(_ context.Context, userID string, today core.Date) ([]core.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listSubs(userID, func(sub core.Subscription) bool {
		return sub.EndDate.IsZero() || !sub.EndDate.Before(today)
	}), nil
}

func (s *MemoryStore) listSubs(userID string, keep func(core.Subscription) bool) []core.Subscription {
	var subs []core.Subscription
	for _, sub := range s.subs {
		if sub.Active && sub.UserID == userID && keep(sub) {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID > subs[j].ID })
	return subs
}

func (s *MemoryStore) SubscriptionNameExists(_ context.Context, userID, name string, excludeID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subs {
		if sub.Active && sub.UserID == userID && sub.ID != excludeID && strings.EqualFold(sub.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

// --- usage logs ---

func (s *MemoryStore) ToggleCheckIn(_ context.Context, subscriptionID int64, date core.Date) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, l := range s.logs {
		if l.SubscriptionID == subscriptionID && l.UsedAt.Equal(date) {
			delete(s.logs, id)
			return false, nil
		}
	}
	id := s.newID()
	s.logs[id] = core.UsageLog{ID: id, SubscriptionID: subscriptionID, UsedAt: date}
	return true, nil
}

func (s *MemoryStore) InsertCheckIn(_ context.Context, subscriptionID int64, date core.Date) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.logs {
		if l.SubscriptionID == subscriptionID && l.UsedAt.Equal(date) {
			return 0, core.ErrDuplicateCheckIn
		}
	}
	id := s.newID()
	s.logs[id] = core.UsageLog{ID: id, SubscriptionID: subscriptionID, UsedAt: date}
	return id, nil
}

func (s *MemoryStore) HasCheckIn(_ context.Context, subscriptionID int64, date core.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.logs {
		if l.SubscriptionID == subscriptionID && l.UsedAt.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) DeleteUsageLog(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.logs[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.logs, id)
	return nil
}

func (s *MemoryStore) ListUserUsageLogs(_ context.Context, userID string, from, to core.Date) ([]core.UsageLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var logs []core.UsageLog
	for _, l := range s.logs {
		sub, ok := s.subs[l.SubscriptionID]
		if !ok || !sub.Active || sub.UserID != userID {
			continue
		}
		if l.UsedAt.Before(from) || l.UsedAt.After(to) {
			continue
		}
		logs = append(logs, l)
	}
	sort.Slice(logs, func(i, j int) bool {
		if !logs[i].UsedAt.Equal(logs[j].UsedAt) {
			return logs[i].UsedAt.Before(logs[j].UsedAt)
		}
		return logs[i].ID < logs[j].ID
	})
	return logs, nil
}

func (s *MemoryStore) ListSubscriptionUsageLogs(_ context.Context, subscriptionID int64, limit int) ([]core.UsageLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var logs []core.UsageLog
	for _, l := range s.logs {
		if l.SubscriptionID == subscriptionID {
			logs = append(logs, l)
		}
	}
	sort.Slice(logs, func(i, j int) bool {
		if !logs[i].UsedAt.Equal(logs[j].UsedAt) {
			return logs[i].UsedAt.After(logs[j].UsedAt)
		}
		return logs[i].ID > logs[j].ID
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (s *MemoryStore) CountUsageLogs(_ context.Context, subscriptionID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, l := range s.logs {
		if l.SubscriptionID == subscriptionID {
			n++
		}
	}
	return n, nil
}

// --- investments ---

func (s *MemoryStore) CreateInvestment(_ context.Context, inv core.Investment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv.ID = s.newID()
	inv.Active = true
	inv.CreatedAt = time.Now().UTC()
	s.invs[inv.ID] = inv
	return inv.ID, nil
}

func (s *MemoryStore) UpdateInvestment(_ context.Context, inv core.Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.invs[inv.ID]
	if !ok || !cur.Active || cur.UserID != inv.UserID {
		return core.ErrNotFound
	}
	inv.Active = cur.Active
	inv.CreatedAt = cur.CreatedAt
	s.invs[inv.ID] = inv
	return nil
}

func (s *MemoryStore) SoftDeleteInvestment(_ context.Context, id int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invs[id]
	if !ok || !inv.Active || inv.UserID != userID {
		return core.ErrNotFound
	}
	inv.Active = false
	s.invs[id] = inv
	return nil
}

func (s *MemoryStore) GetInvestment(_ context.Context, id int64, userID string) (core.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invs[id]
	if !ok || !inv.Active || inv.UserID != userID {
		return core.Investment{}, core.ErrNotFound
	}
	return inv, nil
}

func (s *MemoryStore) ListActiveInvestments(_ context.Context, userID string) ([]core.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var invs []core.Investment
	for _, inv := range s.invs {
		if inv.Active && inv.UserID == userID {
			invs = append(invs, inv)
		}
	}
	sort.Slice(invs, func(i, j int) bool { return invs[i].ID > invs[j].ID })
	return invs, nil
}

// --- investment usages ---

func (s *MemoryStore) AddInvestmentUsage(_ context.Context, u core.InvestmentUsage) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.ID = s.newID()
	s.usages[u.ID] = u
	return u.ID, nil
}

func (s *MemoryStore) GetInvestmentUsage(_ context.Context, id int64) (core.InvestmentUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usages[id]
	if !ok {
		return core.InvestmentUsage{}, core.ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) DeleteInvestmentUsage(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usages[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.usages, id)
	return nil
}

func (s *MemoryStore) ListInvestmentUsages(_ context.Context, investmentID int64, limit int) ([]core.InvestmentUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var usages []core.InvestmentUsage
	for _, u := range s.usages {
		if u.InvestmentID == investmentID {
			usages = append(usages, u)
		}
	}
	sort.Slice(usages, func(i, j int) bool {
		if !usages[i].UsedAt.Equal(usages[j].UsedAt) {
			return usages[i].UsedAt.After(usages[j].UsedAt)
		}
		return usages[i].ID > usages[j].ID
	})
	if limit > 0 && len(usages) > limit {
		usages = usages[:limit]
	}
	return usages, nil
}

func (s *MemoryStore) ListUserInvestmentUsages(_ context.Context, userID string, from, to core.Date) ([]core.InvestmentUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var usages []core.InvestmentUsage
	for _, u := range s.usages {
		inv, ok := s.invs[u.InvestmentID]
		if !ok || !inv.Active || inv.UserID != userID {
			continue
		}
		if u.UsedAt.Before(from) || u.UsedAt.After(to) {
			continue
		}
		usages = append(usages, u)
	}
	sort.Slice(usages, func(i, j int) bool {
		if !usages[i].UsedAt.Equal(usages[j].UsedAt) {
			return usages[i].UsedAt.Before(usages[j].UsedAt)
		}
		return usages[i].ID < usages[j].ID
	})
	return usages, nil
}

// --- activity log ---

func (s *MemoryStore) AppendActivity(_ context.Context, e ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
	s.activity = append(s.activity, e)
	return nil
}

func (s *MemoryStore) PruneActivity(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.activity[:0]
	var removed int64
	for _, e := range s.activity {
		if e.RecordedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.activity = kept
	return removed, nil
}

func (s *MemoryStore) Activity() []ActivityEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ActivityEntry, len(s.activity))
	copy(out, s.activity)
	return out
}
