package session

import (
	"sync"
	"testing"
	"time"

	"fitguru-bot/internal/bodymetrics"
	"fitguru-bot/internal/profile"
)

func TestStoreGetCreatesOnce(t *testing.T) {
	store := NewStore()
	now := time.Now()

	a := store.Get(42, now)
	b := store.Get(42, now)
	if a != b {
		t.Error("expected the same session for the same chat")
	}
	if store.Get(43, now) == a {
		t.Error("expected distinct sessions for distinct chats")
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", store.Len())
	}
}

func TestStoreConcurrentGet(t *testing.T) {
	store := NewStore()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			store.Get(id%5, now)
		}(int64(i))
	}
	wg.Wait()

	if store.Len() != 5 {
		t.Errorf("expected 5 sessions, got %d", store.Len())
	}
}

func TestResetKeepsCompletedProfile(t *testing.T) {
	store := NewStore()
	s := store.Get(1, time.Now())

	s.Profile = &profile.Profile{Gender: bodymetrics.Male, Complete: true}
	s.Draft = &profile.Draft{}
	s.State = StateAwaitAge
	s.PendingSlot = "lunch"

	s.Reset()

	if s.State != StateIdle || s.Draft != nil || s.PendingSlot != "" {
		t.Errorf("expected in-flight state to be cleared: %+v", s)
	}
	if !s.HasProfile() {
		t.Error("reset must not discard a completed profile")
	}
}

func TestOnboardingStateRange(t *testing.T) {
	for _, s := range []State{StateAwaitGender, StateAwaitAge, StateAwaitHeight, StateAwaitWeight, StateAwaitActivity, StateAwaitGoal} {
		if !s.Onboarding() {
			t.Errorf("expected state %d to count as onboarding", s)
		}
	}
	for _, s := range []State{StateIdle, StateAwaitWeightUpdate, StateAwaitMealSlot, StateAwaitMealText, StateAwaitTrainLocation} {
		if s.Onboarding() {
			t.Errorf("expected state %d to not count as onboarding", s)
		}
	}
}
