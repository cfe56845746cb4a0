package eventbus

import (
	"context"

	"github.com/annel0/voxel-core/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог
// компонента "events". Функция неблокирующая.
func StartLoggingListener(ctx context.Context, bus EventBus) (Subscription, error) {
	log := logging.GetComponentLogger("events")
	sub, err := bus.Subscribe(ctx, Filter{}, func(ctx context.Context, ev *Envelope) {
		log.Debug("%s %s src=%s prio=%d size=%dB", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload))
	})
	if err != nil {
		return nil, err
	}
	log.Info("Подписка на все события активирована")
	return sub, nil
}
