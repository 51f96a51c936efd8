package domain

import "encoding/json"

// ShortlistSet - упорядоченное множество избранных объектов, уникальное
// по PropertyID. Значение неизменяемо: With/Without возвращают копию.
type ShortlistSet struct {
	items []PropertyListing
	index map[string]int
}

// NewShortlistSet строит множество, отбрасывая повторы.
func NewShortlistSet(items []PropertyListing) ShortlistSet {
	s := ShortlistSet{
		items: make([]PropertyListing, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, item := range items {
		if item.PropertyID == "" {
			continue
		}
		if pos, ok := s.index[item.PropertyID]; ok {
			s.items[pos] = item
			continue
		}
		s.index[item.PropertyID] = len(s.items)
		s.items = append(s.items, item)
	}
	return s
}

// Contains - проверка членства за O(1).
func (s ShortlistSet) Contains(propertyID string) bool {
	_, ok := s.index[propertyID]
	return ok
}

func (s ShortlistSet) Len() int { return len(s.items) }

// Items возвращает копию списка.
func (s ShortlistSet) Items() []PropertyListing {
	out := make([]PropertyListing, len(s.items))
	copy(out, s.items)
	return out
}

// With добавляет объект в конец. Если он уже есть, множество не меняется.
func (s ShortlistSet) With(item PropertyListing) ShortlistSet {
	if s.Contains(item.PropertyID) {
		return s
	}
	items := make([]PropertyListing, len(s.items), len(s.items)+1)
	copy(items, s.items)
	return NewShortlistSet(append(items, item))
}

// Without удаляет объект по id.
func (s ShortlistSet) Without(propertyID string) ShortlistSet {
	if !s.Contains(propertyID) {
		return s
	}
	items := make([]PropertyListing, 0, len(s.items)-1)
	for _, item := range s.items {
		if item.PropertyID != propertyID {
			items = append(items, item)
		}
	}
	return NewShortlistSet(items)
}

func (s ShortlistSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Items []PropertyListing `json:"items"`
	}{Items: s.Items()})
}

func (s *ShortlistSet) UnmarshalJSON(data []byte) error {
	var raw struct {
		Items []PropertyListing `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewShortlistSet(raw.Items)
	return nil
}
