package orders

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status.changed"
	TopicOrderDeleted       = "order.deleted"
)

// PartitionKey keeps every event of one order on the same partition, in order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
