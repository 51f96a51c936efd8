package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"houseclay-client/internal/contextkeys"
	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/core/port"
)

const (
	sliceAuth           = "auth"
	sliceUser           = "user"
	sliceShortlist      = "shortlist"
	slicePropertySearch = "propertySearch"
	sliceListProperty   = string(domain.DraftListProperty)
	sliceEditProperty   = string(domain.DraftEditProperty)
)

var persistedSlices = []string{sliceAuth, sliceUser, sliceShortlist, slicePropertySearch, sliceListProperty, sliceEditProperty}

// Listener получает предыдущий и новый снимки после каждого действия.
type Listener func(prev, next State)

// Store - единственный владелец состояния клиента. Действия применяются
// по одному, изменившиеся срезы сохраняются в persister.
type Store struct {
	mu        sync.Mutex
	state     State
	persister port.StatePersisterPort
	validator *sliceValidator
	saved     map[string][]byte

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// New создаёт хранилище. persister может быть nil - тогда состояние живёт только в памяти.
func New(persister port.StatePersisterPort) (*Store, error) {
	validator, err := newSliceValidator()
	if err != nil {
		return nil, err
	}
	return &Store{
		state:     InitialState(),
		persister: persister,
		validator: validator,
		saved:     make(map[string][]byte),
		listeners: make(map[int]Listener),
	}, nil
}

// State возвращает текущий снимок.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe регистрирует слушателя. Возвращает функцию отписки.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

// Dispatch применяет действие. Ошибка означает только сбой сохранения:
// состояние в памяти уже обновлено.
func (s *Store) Dispatch(ctx context.Context, a Action) error {
	log := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "Store",
		"action":    a.actionName(),
	})

	s.mu.Lock()
	prev := s.state
	next := reduce(prev, a)
	s.state = next
	err := s.persistLocked(ctx, next)
	s.mu.Unlock()

	if err != nil {
		log.Error("Failed to persist state", err, nil)
	} else {
		log.Debug("Action applied", nil)
	}

	s.notify(prev, next)
	return err
}

func (s *Store) notify(prev, next State) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenersMu.Unlock()

	for _, l := range listeners {
		l(prev, next)
	}
}

// encodeSlices сериализует сохраняемые срезы. nil означает "удалить".
func encodeSlices(st State) (map[string][]byte, error) {
	out := make(map[string][]byte, len(persistedSlices))
	var err error
	if out[sliceAuth], err = json.Marshal(st.Session); err != nil {
		return nil, err
	}
	if st.User != nil {
		if out[sliceUser], err = json.Marshal(st.User); err != nil {
			return nil, err
		}
	} else {
		out[sliceUser] = nil
	}
	if out[sliceShortlist], err = json.Marshal(st.Shortlist); err != nil {
		return nil, err
	}
	if out[slicePropertySearch], err = json.Marshal(st.Search); err != nil {
		return nil, err
	}
	for _, kind := range []domain.DraftKind{domain.DraftListProperty, domain.DraftEditProperty} {
		draft, ok := st.Drafts[kind]
		if !ok {
			out[string(kind)] = nil
			continue
		}
		if out[string(kind)], err = json.Marshal(draft); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// persistLocked пишет только изменившиеся срезы.
func (s *Store) persistLocked(ctx context.Context, st State) error {
	if s.persister == nil {
		return nil
	}
	payloads, err := encodeSlices(st)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	var errs []error
	for _, slice := range persistedSlices {
		payload := payloads[slice]
		prev, wasSaved := s.saved[slice]
		switch {
		case payload == nil && !wasSaved:
			continue
		case payload == nil:
			if err := s.persister.Delete(ctx, slice); err != nil {
				errs = append(errs, fmt.Errorf("delete %s: %w", slice, err))
				continue
			}
			delete(s.saved, slice)
		case wasSaved && bytes.Equal(prev, payload):
			continue
		default:
			if err := s.persister.Save(ctx, slice, payload); err != nil {
				errs = append(errs, fmt.Errorf("save %s: %w", slice, err))
				continue
			}
			s.saved[slice] = payload
		}
	}
	return errors.Join(errs...)
}

// Rehydrate восстанавливает состояние из persister. Срезы, не прошедшие
// проверку схемой, пропускаются.
func (s *Store) Rehydrate(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	log := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "Store", "method": "Rehydrate"})

	loaded, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load persisted state: %w", err)
	}

	s.mu.Lock()
	prev := s.state
	st := InitialState()
	restored := 0
	for _, slice := range persistedSlices {
		payload, ok := loaded[slice]
		if !ok {
			continue
		}
		if err := s.validator.validate(slice, payload); err != nil {
			log.Warn("Dropping invalid persisted slice", port.Fields{"slice": slice, "error": err.Error()})
			continue
		}
		if err := decodeSlice(&st, slice, payload); err != nil {
			log.Warn("Dropping undecodable persisted slice", port.Fields{"slice": slice, "error": err.Error()})
			continue
		}
		s.saved[slice] = payload
		restored++
	}
	st.Session = normalizeSession(st.Session)
	s.state = st
	s.mu.Unlock()

	log.Debug("State rehydrated", port.Fields{"slices": restored})
	s.notify(prev, st)
	return nil
}

func decodeSlice(st *State, slice string, payload []byte) error {
	switch slice {
	case sliceAuth:
		return json.Unmarshal(payload, &st.Session)
	case sliceUser:
		var profile domain.UserProfile
		if err := json.Unmarshal(payload, &profile); err != nil {
			return err
		}
		st.User = &profile
	case sliceShortlist:
		return json.Unmarshal(payload, &st.Shortlist)
	case slicePropertySearch:
		return json.Unmarshal(payload, &st.Search)
	case sliceListProperty, sliceEditProperty:
		var draft domain.ListingDraft
		if err := json.Unmarshal(payload, &draft); err != nil {
			return err
		}
		st.Drafts[domain.DraftKind(slice)] = draft
	}
	return nil
}
