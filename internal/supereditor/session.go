package supereditor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

var (
	ErrPreviewInactive = errors.New("no preview to accept or cancel")
	ErrIndex           = errors.New("index out of range")
)

// Store is the catalog as the session sees it: readable, and writable only
// through an all-or-nothing commit.
type Store interface {
	View
	Commit(items []domain.Item) error
}

type State int

const (
	Editing State = iota
	Previewing
)

func (s State) String() string {
	if s == Previewing {
		return "Previewing"
	}
	return "Editing"
}

// Preview holds edited copies of the items an accepted commit would change.
type Preview struct {
	Rule        Rule
	Matched     []domain.ID
	Changed     []domain.ID
	Modified    map[domain.ID]domain.Item
	Changes     map[domain.ID][]FieldChange
	Diagnostics []Diagnostic
}

// Items returns the modified copies in ascending id order.
func (p *Preview) Items() []domain.Item {
	out := make([]domain.Item, 0, len(p.Changed))
	for _, id := range p.Changed {
		out = append(out, p.Modified[id])
	}
	return out
}

// BuildPreview filters the store with rule, applies the rule's actions to copies
// of the matches and keeps the copies that differ from the originals.
func BuildPreview(store Store, rule Rule) *Preview {
	p := &Preview{
		Rule:     rule.Clone(),
		Modified: make(map[domain.ID]domain.Item),
		Changes:  make(map[domain.ID][]FieldChange),
	}
	var originals []domain.Item
	for _, it := range store.Items() {
		if Matches(it, rule, store) {
			p.Matched = append(p.Matched, it.ID)
			originals = append(originals, it)
		}
	}
	edited, diags := Apply(originals, rule.Actions)
	p.Diagnostics = diags
	for i, after := range edited {
		before := originals[i]
		if before.Equal(after) {
			continue
		}
		p.Changed = append(p.Changed, after.ID)
		p.Modified[after.ID] = after
		p.Changes[after.ID] = Diff(before, after)
	}
	return p
}

// Session is the bulk-edit state machine over one store.
type Session struct {
	store    Store
	rule     Rule
	state    State
	filtered []domain.ID
	stale    bool
	preview  *Preview
}

func NewSession(store Store) *Session {
	return &Session{store: store, rule: DefaultRule(), stale: true}
}

func (s *Session) State() State { return s.state }

// Rule returns a copy of the rule being edited.
func (s *Session) Rule() Rule { return s.rule.Clone() }

// Preview returns the active preview, nil while editing.
func (s *Session) Preview() *Preview { return s.preview }

// edited marks the filter stale and drops any preview built from the old rule.
func (s *Session) edited() {
	s.stale = true
	s.preview = nil
	s.state = Editing
}

// Invalidate tells the session the store changed underneath it. A preview
// built from the old store is dropped.
func (s *Session) Invalidate() {
	s.edited()
}

func (s *Session) SetRule(r Rule) {
	s.rule = r.Clone()
	s.edited()
}

func (s *Session) AddCondition(c Condition) {
	s.rule.Conditions = append(s.rule.Conditions, c)
	s.edited()
}

func (s *Session) UpdateCondition(i int, c Condition) error {
	if i < 0 || i >= len(s.rule.Conditions) {
		return fmt.Errorf("condition %d: %w", i, ErrIndex)
	}
	s.rule.Conditions[i] = c
	s.edited()
	return nil
}

func (s *Session) RemoveCondition(i int) error {
	if i < 0 || i >= len(s.rule.Conditions) {
		return fmt.Errorf("condition %d: %w", i, ErrIndex)
	}
	s.rule.Conditions = slices.Delete(s.rule.Conditions, i, i+1)
	s.edited()
	return nil
}

func (s *Session) AddAction(a Action) {
	s.rule.Actions = append(s.rule.Actions, a)
	s.edited()
}

func (s *Session) RemoveAction(i int) error {
	if i < 0 || i >= len(s.rule.Actions) {
		return fmt.Errorf("action %d: %w", i, ErrIndex)
	}
	s.rule.Actions = slices.Delete(s.rule.Actions, i, i+1)
	s.edited()
	return nil
}

// Filtered returns the ids the current conditions select, recomputed only after
// the rule or the store changed.
func (s *Session) Filtered() []domain.ID {
	if s.stale {
		s.filtered = Filter(s.store, s.rule)
		s.stale = false
	}
	return slices.Clone(s.filtered)
}

// PreviewChanges builds a fresh preview, replacing any earlier one.
func (s *Session) PreviewChanges() *Preview {
	s.preview = BuildPreview(s.store, s.rule)
	s.filtered = slices.Clone(s.preview.Matched)
	s.stale = false
	s.state = Previewing
	return s.preview
}

// AcceptChanges commits the previewed copies and resets the rule. When the
// commit is refused the session stays in the preview.
func (s *Session) AcceptChanges() ([]domain.ID, error) {
	if s.state != Previewing || s.preview == nil {
		return nil, ErrPreviewInactive
	}
	changed := slices.Clone(s.preview.Changed)
	if err := s.store.Commit(s.preview.Items()); err != nil {
		return nil, err
	}
	s.rule = DefaultRule()
	s.edited()
	return changed, nil
}

// CancelPreview discards the preview; the store is untouched.
func (s *Session) CancelPreview() error {
	if s.state != Previewing {
		return ErrPreviewInactive
	}
	s.preview = nil
	s.state = Editing
	return nil
}
