package channel

import (
	"github.com/google/btree"
	"perun.network/perun-btc-paychan/encoding"
)

// historyDegree is the btree degree of a History.
const historyDegree = 8

// Snapshot is an accepted payment as kept in the History.
type Snapshot struct {
	// Index is the acceptance order, assigned by History.Add.
	Index    uint64
	Sequence uint32
	Amount   int64
	Record   *encoding.PaymentRecord
}

func (s *Snapshot) Less(than btree.Item) bool {
	return s.Index < than.(*Snapshot).Index
}

// History keeps every accepted payment in acceptance order, so superseded
// payments remain available for audits and disputes. The payer chooses the
// sequence numbers, so they may repeat across fresh payments and are not
// used as keys. It is not safe for concurrent use, the Provider guards it.
type History struct {
	tree *btree.BTree
	next uint64
}

func NewHistory() *History {
	return &History{tree: btree.New(historyDegree)}
}

// Add appends s and sets its Index.
func (h *History) Add(s *Snapshot) {
	s.Index = h.next
	h.next++
	h.tree.ReplaceOrInsert(s)
}

// Get returns the snapshot with the given acceptance index, if any.
func (h *History) Get(index uint64) (*Snapshot, bool) {
	item := h.tree.Get(&Snapshot{Index: index})
	if item == nil {
		return nil, false
	}
	return item.(*Snapshot), true
}

// Latest returns the most recently accepted snapshot.
func (h *History) Latest() (*Snapshot, bool) {
	item := h.tree.Max()
	if item == nil {
		return nil, false
	}
	return item.(*Snapshot), true
}

func (h *History) Len() int {
	return h.tree.Len()
}

// Snapshots returns all snapshots in acceptance order.
func (h *History) Snapshots() []Snapshot {
	snapshots := make([]Snapshot, 0, h.tree.Len())
	h.tree.Ascend(func(item btree.Item) bool {
		snapshots = append(snapshots, *item.(*Snapshot))
		return true
	})
	return snapshots
}
