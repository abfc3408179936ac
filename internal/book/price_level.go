package book

// priceLevel is the FIFO queue of resting orders at one price on one side.
// Orders link through their own prev/next pointers, so unlinking a filled
// or cancelled order is O(1) and never disturbs the queue order of the
// remaining entries.
type priceLevel struct {
	price    float64
	head     *Order
	tail     *Order
	totalQty int64
	count    int
}

func (l *priceLevel) enqueue(o *Order) {
	if l.head == nil {
		l.head = o
		l.tail = o
	} else {
		l.tail.next = o
		o.prev = l.tail
		l.tail = o
	}
	o.level = l
	l.totalQty += o.Quantity
	l.count++
}

// reduce adjusts the level total after an in-place partial fill.
func (l *priceLevel) reduce(qty int64) {
	l.totalQty -= qty
	if l.totalQty < 0 {
		l.totalQty = 0
	}
}

func (l *priceLevel) unlink(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	o.level = nil
	o.next = nil
	o.prev = nil
	l.totalQty -= o.Quantity
	if l.totalQty < 0 {
		l.totalQty = 0
	}
	l.count--
}
