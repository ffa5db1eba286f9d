package memory

import (
	"encoding/json"
	"fmt"

	"workledger/pkg/domain"
)

type memoryState struct {
	users         collection[domain.User]
	works         collection[domain.Work]
	steps         collection[domain.Step]
	expenses      collection[domain.Expense]
	materials     collection[domain.Material]
	photos        collection[domain.Photo]
	files         collection[domain.File]
	collaborators collection[domain.Collaborator]
	suppliers     collection[domain.Supplier]
	notifications collection[domain.Notification]
}

func newMemoryState() memoryState {
	return memoryState{
		users:         newCollection[domain.User](),
		works:         newCollection[domain.Work](),
		steps:         newCollection[domain.Step](),
		expenses:      newCollection[domain.Expense](),
		materials:     newCollection[domain.Material](),
		photos:        newCollection[domain.Photo](),
		files:         newCollection[domain.File](),
		collaborators: newCollection[domain.Collaborator](),
		suppliers:     newCollection[domain.Supplier](),
		notifications: newCollection[domain.Notification](),
	}
}

func (s memoryState) clone() memoryState {
	return memoryState{
		users:         s.users.clone(),
		works:         s.works.clone(),
		steps:         s.steps.clone(),
		expenses:      s.expenses.clone(),
		materials:     s.materials.clone(),
		photos:        s.photos.clone(),
		files:         s.files.clone(),
		collaborators: s.collaborators.clone(),
		suppliers:     s.suppliers.clone(),
		notifications: s.notifications.clone(),
	}
}

// Snapshot is the serialisable ledger document: one top-level key per
// collection plus the document version.
type Snapshot struct {
	Version       uint64                `json:"version"`
	Users         []domain.User         `json:"users"`
	Works         []domain.Work         `json:"works"`
	Steps         []domain.Step         `json:"steps"`
	Expenses      []domain.Expense      `json:"expenses"`
	Materials     []domain.Material     `json:"materials"`
	Photos        []domain.Photo        `json:"photos"`
	Files         []domain.File         `json:"files"`
	Collaborators []domain.Collaborator `json:"collaborators"`
	Suppliers     []domain.Supplier     `json:"suppliers"`
	Notifications []domain.Notification `json:"notifications"`
}

// Buckets lists the document keys in persistence order. Bucket-oriented
// backends store one row per key.
var Buckets = []string{
	"version",
	"users",
	"works",
	"steps",
	"expenses",
	"materials",
	"photos",
	"files",
	"collaborators",
	"suppliers",
	"notifications",
}

// BucketTargets maps every bucket name to a pointer into the snapshot, for
// use with json.Marshal and json.Unmarshal.
func (s *Snapshot) BucketTargets() map[string]any {
	return map[string]any{
		"version":       &s.Version,
		"users":         &s.Users,
		"works":         &s.Works,
		"steps":         &s.Steps,
		"expenses":      &s.Expenses,
		"materials":     &s.Materials,
		"photos":        &s.Photos,
		"files":         &s.Files,
		"collaborators": &s.Collaborators,
		"suppliers":     &s.Suppliers,
		"notifications": &s.Notifications,
	}
}

// EncodeSnapshot renders the snapshot as a single JSON document.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode ledger document: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a single JSON document. Empty input yields an empty snapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode ledger document: %w", err)
	}
	return s, nil
}

func snapshotFromMemoryState(state memoryState, version uint64) Snapshot {
	return Snapshot{
		Version:       version,
		Users:         state.users.list(nil),
		Works:         state.works.list(nil),
		Steps:         state.steps.list(nil),
		Expenses:      state.expenses.list(nil),
		Materials:     state.materials.list(nil),
		Photos:        state.photos.list(nil),
		Files:         state.files.list(nil),
		Collaborators: state.collaborators.list(nil),
		Suppliers:     state.suppliers.list(nil),
		Notifications: state.notifications.list(nil),
	}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	st := newMemoryState()
	for _, v := range s.Users {
		st.users.put(v.ID, v)
	}
	for _, v := range s.Works {
		st.works.put(v.ID, v)
	}
	for _, v := range s.Steps {
		if v.Phase == "" {
			if phase, _, ok := domain.StepPhaseFromName(v.Name); ok {
				v.Phase = phase
			}
		}
		st.steps.put(v.ID, v)
	}
	for _, v := range s.Expenses {
		st.expenses.put(v.ID, v)
	}
	for _, v := range s.Materials {
		st.materials.put(v.ID, v)
	}
	for _, v := range s.Photos {
		st.photos.put(v.ID, v)
	}
	for _, v := range s.Files {
		st.files.put(v.ID, v)
	}
	for _, v := range s.Collaborators {
		st.collaborators.put(v.ID, v)
	}
	for _, v := range s.Suppliers {
		st.suppliers.put(v.ID, v)
	}
	for _, v := range s.Notifications {
		st.notifications.put(v.ID, v)
	}
	return st
}
