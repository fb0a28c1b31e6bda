package rabbitmq

// NotificationsExchange обменник уведомлений участникам.
const NotificationsExchange = "notifications"

// Ключи маршрутизации событий.
const (
	RoutingJokerUsed       = "joker_used"
	RoutingJokerCancelled  = "joker_cancelled"
	RoutingPaymentsCreated = "payments_created"
)

// QueueConfig очередь и ключ, которым она привязана к обменнику уведомлений.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues очереди, которые читает рассыльщик писем.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notifications.joker_used", RoutingKey: RoutingJokerUsed},
		{QueueName: "notifications.joker_cancelled", RoutingKey: RoutingJokerCancelled},
		{QueueName: "notifications.payments_created", RoutingKey: RoutingPaymentsCreated},
	}
}
