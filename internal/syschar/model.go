package syschar

import (
	"fmt"
	"sort"

	"github.com/ovalkit/ovalkit/internal/defs"
)

// Flag describes the outcome of collecting one object.
type Flag string

const (
	// FlagComplete means every matching item was collected.
	FlagComplete Flag = "complete"
	// FlagIncomplete means collection stopped before exhausting matches.
	FlagIncomplete Flag = "incomplete"
	// FlagDoesNotExist means the object was probed and is absent.
	FlagDoesNotExist Flag = "does not exist"
	// FlagError means the probe failed for this object.
	FlagError Flag = "error"
	// FlagNotCollected means no probe ran for this object.
	FlagNotCollected Flag = "not collected"
	// FlagNotApplicable means the object cannot exist on this platform.
	FlagNotApplicable Flag = "not applicable"
)

// SysInfo is host/platform metadata attached to a characteristics model.
type SysInfo struct {
	OSName          string
	OSVersion       string
	Architecture    string
	PrimaryHostName string
	Interfaces      []Interface
}

// Interface is one network interface in the sysinfo block.
type Interface struct {
	Name       string
	IPAddress  string
	MACAddress string
}

// Item is one collected fact: a bag of named fields about a probed entity.
type Item struct {
	ID     int
	Fields []Field
}

// Field is a single named value inside an item.
type Field struct {
	Name  string
	Value string
}

// FieldValue returns the value of the named field and whether it exists.
func (it *Item) FieldValue(name string) (string, bool) {
	for _, f := range it.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// CollectedObject records the collection outcome for one definition object.
type CollectedObject struct {
	ObjectID string
	Flag     Flag
	ItemRefs []int
}

// Model is the System Characteristics Model: collection outcomes and items
// keyed by object identity, plus one-time sysinfo enrichment. Built once per
// run, either by live probing or by file import.
type Model struct {
	defs       *defs.Model
	sysinfo    *SysInfo
	collected  map[string]*CollectedObject
	order      []string
	items      map[int]*Item
	nextItemID int
}

// NewModel builds an empty characteristics model bound to a definition
// model.
func NewModel(definitions *defs.Model) (*Model, error) {
	if definitions == nil {
		return nil, fmt.Errorf("definition model is nil")
	}
	return &Model{
		defs:       definitions,
		collected:  make(map[string]*CollectedObject),
		items:      make(map[int]*Item),
		nextItemID: 1,
	}, nil
}

// Definitions returns the definition model this characteristics model was
// built from.
func (m *Model) Definitions() *defs.Model {
	return m.defs
}

// SetSysInfo attaches host metadata. The enrichment is one-time: the model
// is otherwise immutable after construction.
func (m *Model) SetSysInfo(si *SysInfo) error {
	if si == nil {
		return fmt.Errorf("sysinfo is nil")
	}
	if m.sysinfo != nil {
		return fmt.Errorf("sysinfo already set")
	}
	copied := *si
	copied.Interfaces = append([]Interface(nil), si.Interfaces...)
	m.sysinfo = &copied
	return nil
}

// SysInfo returns the attached host metadata, or nil before enrichment.
func (m *Model) SysInfo() *SysInfo {
	return m.sysinfo
}

// AddCollected records the collection outcome for an object together with
// its items. Item ids are assigned by the model.
func (m *Model) AddCollected(objectID string, flag Flag, items []Item) error {
	if objectID == "" {
		return fmt.Errorf("object id is empty")
	}
	if _, exists := m.collected[objectID]; exists {
		return fmt.Errorf("object %q already collected", objectID)
	}

	co := &CollectedObject{ObjectID: objectID, Flag: flag}
	for _, item := range items {
		id := m.nextItemID
		m.nextItemID++
		stored := Item{ID: id, Fields: append([]Field(nil), item.Fields...)}
		m.items[id] = &stored
		co.ItemRefs = append(co.ItemRefs, id)
	}

	m.collected[objectID] = co
	m.order = append(m.order, objectID)
	return nil
}

// Collected returns the collection record for an object.
func (m *Model) Collected(objectID string) (*CollectedObject, bool) {
	co, ok := m.collected[objectID]
	return co, ok
}

// CollectedObjects returns collection records in insertion order.
func (m *Model) CollectedObjects() []*CollectedObject {
	out := make([]*CollectedObject, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.collected[id])
	}
	return out
}

// ItemsFor resolves the items collected for an object, sorted by item id.
func (m *Model) ItemsFor(objectID string) []*Item {
	co, ok := m.collected[objectID]
	if !ok {
		return nil
	}
	refs := append([]int(nil), co.ItemRefs...)
	sort.Ints(refs)
	out := make([]*Item, 0, len(refs))
	for _, ref := range refs {
		if item, found := m.items[ref]; found {
			out = append(out, item)
		}
	}
	return out
}
