// SPDX-License-Identifier: MIT

// Package manager is the Engine Manager: it owns the registry of search
// backends, tracks each one's health, and decides which engines a given
// query is dispatched to. Parallel fan-out and result collection use a
// goroutine+channel pattern; health tracking and selection build on top.
package manager

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/search/engine"
)

// consecutiveFailureThreshold is the search-level quarantine trigger (K=3):
// coarser than BaseEngine's own transport-level circuit breaker (threshold
// 5), since an engine can fail three whole searches, each itself
// absorbing several retries, before the manager stops routing to it.
const consecutiveFailureThreshold = 3

// recoveryWindow is how long a quarantined engine stays excluded from
// selection before the manager lets a search try it again.
const recoveryWindow = 5 * time.Minute

// SelectionMode controls which engines a search is allowed to use.
type SelectionMode int

const (
	// SelectionGlobal uses every enabled, non-quarantined engine.
	SelectionGlobal SelectionMode = iota
	// SelectionCustom restricts the search to an explicit engine name list.
	SelectionCustom
)

// Manager is the registry of engines plus their mutable health state.
type Manager struct {
	mu sync.RWMutex
	engines map[string]engine.Engine
	states map[string]*model.EngineState
}

// New builds an empty Manager; call Register for each engine before use.
func New() *Manager {
	return &Manager{
		engines: make(map[string]engine.Engine),
		states: make(map[string]*model.EngineState),
	}
}

// Register adds an engine to the registry, enabled by default unless its
// static info already marks it Disabled (e.g. a missing API key).
func (m *Manager) Register(e engine.Engine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := e.Info().Name
	m.engines[name] = e
	m.states[name] = &model.EngineState{Enabled: !e.Info().Disabled}
}

// Get returns a single engine by name.
func (m *Manager) Get(name string) (engine.Engine, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.engines[name]
	return e, ok
}

// List returns the static info for every registered engine, used by the
// /api/engines route.
func (m *Manager) List() []model.EngineInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]model.EngineInfo, 0, len(m.engines))
	for _, e := range m.engines {
		infos = append(infos, e.Info())
	}
	return infos
}

// selected resolves which engines a search should use: SelectionCustom
// restricts to the named subset (ignoring unknown names), SelectionGlobal
// uses every registered engine that isn't disabled or quarantined, and an
// optional category filter narrows either set further.
func (m *Manager) selected(mode SelectionMode, names []string, category string) []engine.Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var candidates []string
	if mode == SelectionCustom {
		candidates = names
	} else {
		for name := range m.engines {
			candidates = append(candidates, name)
		}
	}

	var out []engine.Engine
	for _, name := range candidates {
		e, ok := m.engines[name]
		if !ok {
			continue
		}
		if !m.isAvailableLocked(name) {
			continue
		}
		if category != "" && !hasCategory(e.Info(), category) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func hasCategory(info model.EngineInfo, category string) bool {
	for _, c := range info.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// isAvailableLocked checks enabled + quarantine state; callers must hold
// at least a read lock. A quarantine past its recovery deadline is treated
// as available here but only actually cleared (lazily) by RecordResult.
func (m *Manager) isAvailableLocked(name string) bool {
	state, ok := m.states[name]
	if !ok || !state.Enabled {
		return false
	}
	if !state.TemporarilyDisabled {
		return true
	}
	return !time.Now().Before(state.RecoveryDeadline)
}

// RecordResult updates an engine's consecutive-failure counter after a
// search attempt. Three consecutive search-level failures quarantines the
// engine for recoveryWindow; any success clears the counter and lifts a
// quarantine immediately. Validation errors must not be passed here ,
// callers classify those before calling RecordResult.
func (m *Manager) RecordResult(name string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[name]
	if !ok {
		return
	}

	if success {
		state.ConsecutiveFailures = 0
		state.TemporarilyDisabled = false
		return
	}

	state.ConsecutiveFailures++
	state.LastFailureAt = time.Now()
	if state.ConsecutiveFailures >= consecutiveFailureThreshold {
		state.TemporarilyDisabled = true
		state.RecoveryDeadline = state.LastFailureAt.Add(recoveryWindow)
	}
}

// IsAvailable reports whether name is enabled and not currently
// quarantined (or has outlived its quarantine's recovery deadline).
func (m *Manager) IsAvailable(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isAvailableLocked(name)
}

// State returns a copy of an engine's current health record.
func (m *Manager) State(name string) (model.EngineState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[name]
	if !ok {
		return model.EngineState{}, false
	}
	return *state, true
}

// engineResult carries one engine's outcome back to the collector.
type engineResult struct {
	name string
	result model.SearchResult
	err error
}

// Dispatch fans a query out to the selected engines in parallel, bounded
// by the per-call deadline already set on ctx, and collects every
// response. Each engine's success/failure is recorded against its health
// state as results come in.
func (m *Manager) Dispatch(ctx context.Context, q model.SearchQuery, mode SelectionMode, names []string, category string) []model.SearchResult {
	engines := m.selected(mode, names, category)
	if len(engines) == 0 {
		return nil
	}

	resultsChan := make(chan engineResult, len(engines))
	var wg sync.WaitGroup
	for _, e := range engines {
		wg.Add(1)
		go func(e engine.Engine) {
			defer wg.Done()
			result, err := e.Search(ctx, q)
			resultsChan <- engineResult{name: e.Info().Name, result: result, err: err}
		}(e)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	var out []model.SearchResult
	for r := range resultsChan {
		if r.err != nil {
			if !isValidationError(r.err) {
				m.RecordResult(r.name, false)
			}
			continue
		}
		m.RecordResult(r.name, true)
		out = append(out, r.result)
	}
	return out
}

func isValidationError(err error) bool {
	return errors.Is(err, engine.ErrValidation)
}

// StreamResult is one engine's incremental contribution, used by the
// orchestrator's streaming search variant.
type StreamResult struct {
	Engine string
	Item model.SearchResultItem
	Err error
	Done bool
}

// DispatchStream behaves like Dispatch but pushes individual items onto a
// channel as each engine finishes, instead of waiting for every engine.
func (m *Manager) DispatchStream(ctx context.Context, q model.SearchQuery, mode SelectionMode, names []string, category string) <-chan StreamResult {
	out := make(chan StreamResult, 64)
	engines := m.selected(mode, names, category)

	go func() {
		defer close(out)
		var wg sync.WaitGroup
		for _, e := range engines {
			wg.Add(1)
			go func(e engine.Engine) {
				defer wg.Done()
				result, err := e.Search(ctx, q)
				name := e.Info().Name
				if err != nil {
					if !isValidationError(err) {
						m.RecordResult(name, false)
					}
					select {
					case out <- StreamResult{Engine: name, Err: err, Done: true}:
					case <-ctx.Done():
					}
					return
				}
				m.RecordResult(name, true)
				for _, item := range result.Items {
					select {
					case out <- StreamResult{Engine: name, Item: item}:
					case <-ctx.Done():
						return
					}
				}
				select {
				case out <- StreamResult{Engine: name, Done: true}:
				case <-ctx.Done():
				}
			}(e)
		}
		wg.Wait()
	}()

	return out
}
