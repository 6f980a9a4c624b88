package state

import "sync"

// Store owns every delivery and robot record behind a single mutex.
// All reads and writes go through View and Update closures so each
// request observes and mutates the fleet atomically.
type Store struct {
	mu             sync.RWMutex
	deliveries     map[int]*Delivery
	robots         map[int]*Robot
	nextDeliveryID int
}

func NewStore() *Store {
	return &Store{
		deliveries: make(map[int]*Delivery),
		robots:     make(map[int]*Robot),
	}
}

// Tx is a handle into the store valid only for the duration of the
// View or Update closure it was passed to.
type Tx struct {
	store    *Store
	writable bool
}

// View runs fn under the read lock. The Tx must not escape fn.
func (s *Store) View(fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{store: s})
}

// Update runs fn under the write lock. Mutations made through the Tx
// become visible to other callers only after fn returns. fn must
// validate everything before mutating so a failed call leaves the
// store untouched.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{store: s, writable: true})
}

func (tx *Tx) assertWritable() {
	if !tx.writable {
		panic("state: write attempted in read-only transaction")
	}
}

// Delivery returns a copy of the record, or false when the id is
// unknown.
func (tx *Tx) Delivery(id int) (*Delivery, bool) {
	record, ok := tx.store.deliveries[id]
	if !ok {
		return nil, false
	}
	return record.Clone(), true
}

// Deliveries returns copies of every tracked delivery in no
// particular order.
func (tx *Tx) Deliveries() []*Delivery {
	all := make([]*Delivery, 0, len(tx.store.deliveries))
	for _, record := range tx.store.deliveries {
		all = append(all, record.Clone())
	}
	return all
}

// NextDeliveryID reserves the next sequential delivery id, starting
// at zero.
func (tx *Tx) NextDeliveryID() int {
	tx.assertWritable()
	id := tx.store.nextDeliveryID
	tx.store.nextDeliveryID++
	return id
}

// PutDelivery stores a copy of the record, inserting or replacing.
func (tx *Tx) PutDelivery(record *Delivery) {
	tx.assertWritable()
	tx.store.deliveries[record.ID] = record.Clone()
}

// DeleteDelivery removes the record. Unknown ids are a no-op.
func (tx *Tx) DeleteDelivery(id int) {
	tx.assertWritable()
	delete(tx.store.deliveries, id)
}

// Robot returns a copy of the robot record, or nil when the robot has
// never reported in.
func (tx *Tx) Robot(id int) *Robot {
	record, ok := tx.store.robots[id]
	if !ok {
		return nil
	}
	return record.Clone()
}

// EnsureRobot returns a copy of the robot record, creating an idle
// one on first contact.
func (tx *Tx) EnsureRobot(id int) *Robot {
	tx.assertWritable()
	record, ok := tx.store.robots[id]
	if !ok {
		record = &Robot{ID: id}
		tx.store.robots[id] = record
	}
	return record.Clone()
}

// PutRobot stores a copy of the robot record.
func (tx *Tx) PutRobot(record *Robot) {
	tx.assertWritable()
	tx.store.robots[record.ID] = record.Clone()
}

// DeliveryCount reports how many deliveries are tracked, terminal
// states included.
func (tx *Tx) DeliveryCount() int {
	return len(tx.store.deliveries)
}

// BusyRobotCount reports how many robots are assigned to a delivery.
func (tx *Tx) BusyRobotCount() int {
	busy := 0
	for _, robot := range tx.store.robots {
		if robot.Delivery != nil {
			busy++
		}
	}
	return busy
}
