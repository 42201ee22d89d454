// Package session owns the per-chat conversation state: the completed
// profile, the in-progress onboarding draft, the day ledger, and the
// position of whichever state machine is currently running. A session is
// private to its chat; the per-session lock keeps two updates from the
// same chat from interleaving.
package session

import (
	"sync"
	"time"

	"fitguru-bot/internal/ledger"
	"fitguru-bot/internal/profile"
)

// State is the position of the active conversation flow.
type State int

const (
	StateIdle State = iota

	// Onboarding, strictly ordered.
	StateAwaitGender
	StateAwaitAge
	StateAwaitHeight
	StateAwaitWeight
	StateAwaitActivity
	StateAwaitGoal

	// Weight-update flow.
	StateAwaitWeightUpdate

	// Meal-logging flow.
	StateAwaitMealSlot
	StateAwaitMealText

	// Training flow.
	StateAwaitTrainLocation
)

// Onboarding reports whether s is one of the onboarding prompts.
func (s State) Onboarding() bool {
	return s >= StateAwaitGender && s <= StateAwaitGoal
}

// Session is the full conversation state for one chat.
type Session struct {
	mu sync.Mutex

	ChatID int64
	State  State

	// Profile is the completed profile; nil until onboarding finishes.
	// Draft accumulates onboarding answers and is discarded on cancel,
	// so cancelling never destroys a previously completed profile.
	Profile *profile.Profile
	Draft   *profile.Draft

	Ledger *ledger.DayLedger

	// PendingSlot is the meal slot chosen in the first step of the
	// meal-logging flow.
	PendingSlot ledger.MealSlot
}

// Lock serializes update processing for this chat.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the chat's update lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// HasProfile reports whether onboarding has completed for this chat.
func (s *Session) HasProfile() bool {
	return s.Profile != nil && s.Profile.Complete
}

// Reset ends any in-flight flow, discarding the onboarding draft and
// pending meal fields. The completed profile and the ledger survive.
func (s *Session) Reset() {
	s.State = StateIdle
	s.Draft = nil
	s.PendingSlot = ""
}

// Store keeps one session per chat, created on first interaction.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Get returns the chat's session, creating it on first use.
func (st *Store) Get(chatID int64, now time.Time) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[chatID]
	if !ok {
		s = &Session{
			ChatID: chatID,
			State:  StateIdle,
			Ledger: ledger.New(now),
		}
		st.sessions[chatID] = s
	}
	return s
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
