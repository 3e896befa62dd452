// Package audit appends every seat transition to a MySQL table.  The seat
// record retains its holder after a sale precisely so disputes can be
// audited; this package is the durable half of that story.  It observes the
// fan-out hub like any other subscriber and has no authority over seat
// state — the service runs unchanged when no database is configured.
package audit

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/seat-lock-engine/internal/fanout"
)

const createTableStmt = `CREATE TABLE IF NOT EXISTS seat_audit (
    id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    seat_id     BIGINT UNSIGNED NOT NULL,
    status      VARCHAR(16)     NOT NULL,
    user_id     BIGINT UNSIGNED NOT NULL,
    version     BIGINT UNSIGNED NOT NULL,
    recorded_at DATETIME(3)     NOT NULL,
    KEY idx_seat_version (seat_id, version)
)`

// Recorder consumes seat_update events from the hub and writes one audit
// row per transition.
type Recorder struct {
	db  *sql.DB
	hub *fanout.Hub
	sub *fanout.Subscriber
	wg  sync.WaitGroup
}

// NewRecorder prepares a recorder over an open audit database.  It creates
// the seat_audit table when missing.
func NewRecorder(db *sql.DB, hub *fanout.Hub) (*Recorder, error) {
	if _, err := db.Exec(createTableStmt); err != nil {
		return nil, err
	}
	return &Recorder{db: db, hub: hub}, nil
}

// Start subscribes to the hub and begins appending rows in the background.
func (r *Recorder) Start() {
	r.sub = r.hub.Subscribe()
	r.wg.Add(1)
	go r.consume()
}

// Stop detaches from the hub and waits for the writer to drain.  The
// database handle is left open for the caller to close.
func (r *Recorder) Stop() {
	if r.sub == nil {
		return
	}
	r.hub.Unsubscribe(r.sub)
	r.wg.Wait()
}

func (r *Recorder) consume() {
	defer r.wg.Done()
	for ev := range r.sub.C {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO seat_audit (seat_id, status, user_id, version, recorded_at) VALUES (?, ?, ?, ?, ?)`,
			ev.SeatID, ev.Status, ev.UserID, ev.Version, time.Now().UTC(),
		)
		cancel()
		if err != nil {
			// A lost audit row must never ripple back into the lock path.
			log.Printf("audit: insert failed for seat %d v%d: %v", ev.SeatID, ev.Version, err)
		}
	}
}
