package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	nats "github.com/nats-io/nats.go"
)

const (
	// SubjectPrefix - префикс subject событий генерации
	SubjectPrefix = "vcore.events"
	// DefaultStream - имя стрима по умолчанию
	DefaultStream = "VCORE"

	jetAckWait = 30 * time.Second
)

// JetStreamBus реализует EventBus поверх NATS JetStream.
// Событие типа T уходит в subject vcore.events.T, ID конверта служит
// ключом дедупликации стрима, поэтому повторная публикация того же
// конверта не создаёт второго сообщения.
type JetStreamBus struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	stream string
	prefix string

	mu     sync.Mutex
	subs   []*nats.Subscription
	closed atomic.Bool

	published atomic.Uint64
	consumed  atomic.Uint64
	dropped   atomic.Uint64
}

// NewJetStreamBus подключается к NATS и создаёт стрим, если его нет.
// retention - сколько хранить события; 0 - без ограничения.
func NewJetStreamBus(url, stream string, retention time.Duration) (*JetStreamBus, error) {
	return newJetStreamBus(url, stream, SubjectPrefix, retention)
}

func newJetStreamBus(url, stream, prefix string, retention time.Duration) (*JetStreamBus, error) {
	if stream == "" {
		stream = DefaultStream
	}

	nc, err := nats.Connect(url, nats.Name("vcore"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStream(js, stream, prefix, retention); err != nil {
		nc.Close()
		return nil, err
	}
	return &JetStreamBus{nc: nc, js: js, stream: stream, prefix: prefix}, nil
}

func ensureStream(js nats.JetStreamContext, stream, prefix string, retention time.Duration) error {
	if _, err := js.StreamInfo(stream); err == nil {
		return nil
	}
	_, err := js.AddStream(&nats.StreamConfig{
		Name:       stream,
		Subjects:   []string{prefix + ".*"},
		Retention:  nats.LimitsPolicy,
		MaxAge:     retention,
		Storage:    nats.FileStorage,
		Duplicates: time.Minute,
	})
	if err != nil {
		return fmt.Errorf("add stream %s: %w", stream, err)
	}
	return nil
}

// subjectFor - subject для типа события; пустой тип - все события
func (jb *JetStreamBus) subjectFor(eventType string) string {
	if eventType == "" {
		return jb.prefix + ".*"
	}
	return jb.prefix + "." + eventType
}

// Publish публикует конверт и ждёт подтверждения стрима
func (jb *JetStreamBus) Publish(ctx context.Context, ev *Envelope) error {
	if jb.closed.Load() {
		return fmt.Errorf("publish %s: %w", ev.EventType, ErrClosed)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.EventType, err)
	}

	_, err = jb.js.Publish(jb.subjectFor(ev.EventType), data, nats.Context(ctx), nats.MsgId(ev.ID))
	if err != nil {
		jb.dropped.Add(1)
		return fmt.Errorf("publish %s: %w", ev.EventType, err)
	}
	jb.published.Add(1)
	return nil
}

// Subscribe подписывается на новые события. Фильтр по одному типу
// сужается до subject, остальное отсеивает matchFilter. Событие, которое
// не удалось разобрать, снимается с доставки через Term.
func (jb *JetStreamBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	if jb.closed.Load() {
		return nil, ErrClosed
	}
	subj := jb.subjectFor("")
	if len(f.Types) == 1 {
		subj = jb.subjectFor(f.Types[0])
	}

	sub, err := jb.js.Subscribe(subj, func(msg *nats.Msg) {
		var ev Envelope
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			jb.dropped.Add(1)
			_ = msg.Term()
			return
		}
		if ctx.Err() == nil && matchFilter(&ev, f) {
			h(ctx, &ev)
			jb.consumed.Add(1)
		}
		_ = msg.Ack()
	}, nats.ManualAck(), nats.DeliverNew(), nats.AckWait(jetAckWait))
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subj, err)
	}

	jb.mu.Lock()
	jb.subs = append(jb.subs, sub)
	jb.mu.Unlock()
	return &jetSub{bus: jb, s: sub}, nil
}

type jetSub struct {
	bus *JetStreamBus
	s   *nats.Subscription
}

func (j *jetSub) Unsubscribe() {
	j.bus.forget(j.s)
	_ = j.s.Unsubscribe()
}

func (jb *JetStreamBus) forget(s *nats.Subscription) {
	jb.mu.Lock()
	defer jb.mu.Unlock()
	for i, sub := range jb.subs {
		if sub == s {
			jb.subs = append(jb.subs[:i], jb.subs[i+1:]...)
			return
		}
	}
}

// Metrics возвращает счётчики; InFlight - сообщения, полученные
// клиентом, но ещё не переданные подписчикам
func (jb *JetStreamBus) Metrics() Stats {
	st := Stats{
		Published: jb.published.Load(),
		Consumed:  jb.consumed.Load(),
		Dropped:   jb.dropped.Load(),
	}
	jb.mu.Lock()
	for _, sub := range jb.subs {
		if n, _, err := sub.Pending(); err == nil {
			st.InFlight += n
		}
	}
	jb.mu.Unlock()
	return st
}

// Close дожидается доставки принятых сообщений и закрывает соединение.
// Повторный вызов ничего не делает.
func (jb *JetStreamBus) Close() error {
	if !jb.closed.CompareAndSwap(false, true) {
		return nil
	}
	jb.mu.Lock()
	jb.subs = nil
	jb.mu.Unlock()
	return jb.nc.Drain()
}
