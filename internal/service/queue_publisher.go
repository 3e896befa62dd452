// Package queue_publisher relays seat_update events to RabbitMQ so that
// consumers outside the process (analytics, cache warmers, other venues'
// dashboards) can follow seat transitions without holding a WebSocket open.
// The relay is just another hub subscriber; broker trouble is logged and
// absorbed here and never reaches the lock path.
package queue_publisher

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/seat-lock-engine/internal/fanout"
	"github.com/iliyamo/seat-lock-engine/internal/model"
)

const seatUpdateQueue = "seat.updated"

// BrokerURL resolves the AMQP connection string from RABBITMQ_URL or
// AMQP_URL.  An empty result means no broker is configured and the relay
// should not start.
func BrokerURL() string {
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		return url
	}
	return os.Getenv("AMQP_URL")
}

// Relay bridges the fan-out hub to the seat.updated queue.
type Relay struct {
	url string
	hub *fanout.Hub

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewRelay builds a relay publishing to the broker at url.
func NewRelay(url string, hub *fanout.Hub) *Relay {
	return &Relay{url: url, hub: hub, stopCh: make(chan struct{})}
}

// Start subscribes to the hub and begins publishing in the background.
func (r *Relay) Start() {
	r.wg.Add(1)
	go r.run()
}

// Stop terminates the relay and waits for it to finish.  Events emitted
// after Stop are not relayed.
func (r *Relay) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}

// run keeps a subscription alive for the relay's lifetime.  If the hub
// drops the subscriber (the broker was slow enough to fill the buffer) the
// relay re-subscribes; intervening events are lost, which is acceptable for
// an out-of-process mirror of in-memory state.
func (r *Relay) run() {
	defer r.wg.Done()
	var (
		conn *amqp.Connection
		ch   *amqp.Channel
	)
	defer func() { closeBroker(conn, ch) }()

	for {
		sub := r.hub.Subscribe()
		if r.hub.Closed() {
			return
		}
	deliver:
		for {
			select {
			case <-r.stopCh:
				r.hub.Unsubscribe(sub)
				return
			case ev, ok := <-sub.C:
				if !ok {
					break deliver // dropped by the hub; re-subscribe
				}
				conn, ch = r.publish(conn, ch, ev)
			}
		}
		log.Printf("relay: subscription lost, re-subscribing")
	}
}

// publish sends one event, (re)dialing as needed.  On failure the event is
// logged and skipped; the connection is torn down so the next event redials.
func (r *Relay) publish(conn *amqp.Connection, ch *amqp.Channel, ev model.SeatUpdateEvent) (*amqp.Connection, *amqp.Channel) {
	if ch == nil {
		var err error
		conn, ch, err = dialBroker(r.url)
		if err != nil {
			log.Printf("relay: broker dial failed: %v", err)
			return nil, nil
		}
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("relay: marshal event failed: %v", err)
		return conn, ch
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.Publish("", seatUpdateQueue, false, false, pub); err != nil {
		log.Printf("relay: publish failed for seat %d v%d: %v", ev.SeatID, ev.Version, err)
		closeBroker(conn, ch)
		return nil, nil
	}
	return conn, ch
}

// dialBroker connects and declares the durable seat.updated queue
// (idempotent), so messages survive broker restarts.
func dialBroker(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	if _, err := ch.QueueDeclare(
		seatUpdateQueue, // name
		true,            // durable
		false,           // autoDelete
		false,           // exclusive
		false,           // noWait
		nil,             // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

func closeBroker(conn *amqp.Connection, ch *amqp.Channel) {
	if ch != nil {
		_ = ch.Close()
	}
	if conn != nil {
		_ = conn.Close()
	}
}
