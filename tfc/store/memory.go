// Package store provides an in-memory Store implementation (for testing/dev).
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/brightkite/tfc-engine/tfc"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	children map[tfc.ChildID]tfc.Child
	payments map[tfc.ChildID][]tfc.Payment
}

func NewMemory() *Memory {
	return &Memory{
		children: make(map[tfc.ChildID]tfc.Child),
		payments: make(map[tfc.ChildID][]tfc.Payment),
	}
}

func (m *Memory) SaveChild(_ context.Context, c tfc.Child) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.children[c.ID]; ok {
		return tfc.ErrDuplicateID
	}
	m.children[c.ID] = c
	return nil
}

func (m *Memory) UpdateChild(_ context.Context, c tfc.Child) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.children[c.ID]; !ok {
		return tfc.ErrChildNotFound
	}
	m.children[c.ID] = c
	return nil
}

func (m *Memory) GetChild(_ context.Context, id tfc.ChildID) (*tfc.Child, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.children[id]
	if !ok {
		return nil, tfc.ErrChildNotFound
	}
	return &c, nil
}

func (m *Memory) ListChildren(_ context.Context) ([]tfc.Child, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]tfc.Child, 0, len(m.children))
	for _, c := range m.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteChild removes the child and cascades to its payments.
func (m *Memory) DeleteChild(_ context.Context, id tfc.ChildID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.children[id]; !ok {
		return tfc.ErrChildNotFound
	}
	delete(m.children, id)
	delete(m.payments, id)
	return nil
}

func (m *Memory) AppendPayment(_ context.Context, p tfc.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.children[p.ChildID]; !ok {
		return tfc.ErrChildNotFound
	}
	for _, existing := range m.payments[p.ChildID] {
		if existing.ID == p.ID {
			return tfc.ErrDuplicateID
		}
	}

	txs := m.payments[p.ChildID]

	// Insert sorted by date so reads come back chronological.
	i := sort.Search(len(txs), func(i int) bool {
		return txs[i].Date.After(p.Date)
	})
	txs = append(txs, tfc.Payment{})
	copy(txs[i+1:], txs[i:])
	txs[i] = p
	m.payments[p.ChildID] = txs
	return nil
}

func (m *Memory) DeletePayment(_ context.Context, childID tfc.ChildID, id tfc.PaymentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	txs := m.payments[childID]
	for i, p := range txs {
		if p.ID == id {
			m.payments[childID] = append(txs[:i:i], txs[i+1:]...)
			return nil
		}
	}
	return tfc.ErrPaymentNotFound
}

func (m *Memory) ListPayments(_ context.Context, childID tfc.ChildID) ([]tfc.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]tfc.Payment, len(m.payments[childID]))
	copy(result, m.payments[childID])
	return result, nil
}

// Compile-time check that Memory implements tfc.Store.
var _ tfc.Store = (*Memory)(nil)
