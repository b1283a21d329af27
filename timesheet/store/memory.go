// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/vineops/timesheet-engine/timesheet"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	daysByID     map[timesheet.DayID]*timesheet.TimesheetDay
	daysByKey    map[string]timesheet.DayID
	entriesByID  map[timesheet.EntryID]*timesheet.TimeEntry
	entriesByDay map[timesheet.DayID][]timesheet.EntryID
}

func NewMemory() *Memory {
	return &Memory{
		daysByID:     make(map[timesheet.DayID]*timesheet.TimesheetDay),
		daysByKey:    make(map[string]timesheet.DayID),
		entriesByID:  make(map[timesheet.EntryID]*timesheet.TimeEntry),
		entriesByDay: make(map[timesheet.DayID][]timesheet.EntryID),
	}
}

func dayKey(userID timesheet.UserID, date timesheet.WorkDate) string {
	return string(userID) + "|" + date.String()
}

func (m *Memory) GetDay(_ context.Context, userID timesheet.UserID, date timesheet.WorkDate) (*timesheet.TimesheetDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.daysByKey[dayKey(userID, date)]
	if !ok {
		return nil, nil
	}
	return m.daysByID[id].Clone(), nil
}

func (m *Memory) GetDayByID(_ context.Context, id timesheet.DayID) (*timesheet.TimesheetDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	day, ok := m.daysByID[id]
	if !ok {
		return nil, nil
	}
	return day.Clone(), nil
}

func (m *Memory) SaveDay(_ context.Context, day *timesheet.TimesheetDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.daysByID[day.ID] = day.Clone()
	m.daysByKey[dayKey(day.UserID, day.WorkDate)] = day.ID
	return nil
}

func (m *Memory) ListDaysInRange(_ context.Context, userID timesheet.UserID, from, to timesheet.WorkDate) ([]*timesheet.TimesheetDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*timesheet.TimesheetDay
	for _, day := range m.daysByID {
		if day.UserID != userID {
			continue
		}
		if from.BeforeOrEqual(day.WorkDate) && day.WorkDate.BeforeOrEqual(to) {
			result = append(result, day.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].WorkDate.Before(result[j].WorkDate)
	})
	return result, nil
}

func (m *Memory) GetEntry(_ context.Context, id timesheet.EntryID) (*timesheet.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entriesByID[id]
	if !ok {
		return nil, nil
	}
	return entry.Clone(), nil
}

func (m *Memory) ListEntries(_ context.Context, dayID timesheet.DayID) ([]*timesheet.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.entriesByDay[dayID]
	result := make([]*timesheet.TimeEntry, 0, len(ids))
	for _, id := range ids {
		result = append(result, m.entriesByID[id].Clone())
	}
	return result, nil
}

// SaveDayWithEntry holds the write lock across both map updates, so the pair
// is atomic with respect to every other accessor.
func (m *Memory) SaveDayWithEntry(_ context.Context, day *timesheet.TimesheetDay, entry *timesheet.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.daysByID[day.ID] = day.Clone()
	m.daysByKey[dayKey(day.UserID, day.WorkDate)] = day.ID

	if _, exists := m.entriesByID[entry.ID]; !exists {
		m.entriesByDay[entry.DayID] = append(m.entriesByDay[entry.DayID], entry.ID)
	}
	m.entriesByID[entry.ID] = entry.Clone()
	return nil
}

func (m *Memory) DeleteEntryWithDay(_ context.Context, id timesheet.EntryID, day *timesheet.TimesheetDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entriesByID[id]
	if !ok {
		return &timesheet.NotFoundError{Kind: "entry", ID: string(id)}
	}
	delete(m.entriesByID, id)

	ids := m.entriesByDay[entry.DayID]
	for i, eid := range ids {
		if eid == id {
			m.entriesByDay[entry.DayID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}

	m.daysByID[day.ID] = day.Clone()
	m.daysByKey[dayKey(day.UserID, day.WorkDate)] = day.ID
	return nil
}
