package orders

type Status string

const (
	StatusPending   Status = "pendiente"
	StatusScheduled Status = "encargo"
	StatusEnRoute   Status = "en_camino"
	StatusDelivered Status = "entregado"
	StatusCancelled Status = "cancelado"
)

// Bucket splits statuses by whether the order's units are out of stock.
type Bucket int

const (
	Neutral   Bucket = iota // pendiente, encargo, cancelado
	Committed               // en_camino, entregado
)

var buckets = map[Status]Bucket{
	StatusPending:   Neutral,
	StatusScheduled: Neutral,
	StatusCancelled: Neutral,
	StatusEnRoute:   Committed,
	StatusDelivered: Committed,
}

func (s Status) Valid() bool {
	_, ok := buckets[s]
	return ok
}

func (s Status) Bucket() Bucket { return buckets[s] }

func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pendiente"
	case StatusScheduled:
		return "Encargo"
	case StatusEnRoute:
		return "En Camino"
	case StatusDelivered:
		return "Entregado"
	case StatusCancelled:
		return "Cancelado"
	}
	return string(s)
}

// Direction is the inventory effect of a transition.
type Direction int

const (
	Hold    Direction = iota // no stock change
	Take                     // units leave stock
	Restore                  // units return to stock
)

var stockEffect = map[[2]Bucket]Direction{
	{Neutral, Neutral}:     Hold,
	{Neutral, Committed}:   Take,
	{Committed, Neutral}:   Restore,
	{Committed, Committed}: Hold,
}

// Effect reports what moving an order from one status to another does to
// stock. Any status may move to any other.
func Effect(from, to Status) Direction {
	return stockEffect[[2]Bucket{from.Bucket(), to.Bucket()}]
}

// InitialStatus is the status a new order of the given kind starts in.
func InitialStatus(k Kind) Status {
	if k == KindScheduled {
		return StatusScheduled
	}
	return StatusPending
}
