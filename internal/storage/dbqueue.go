package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrQueueClosed is returned for operations submitted after Close
var ErrQueueClosed = errors.New("db queue is closed")

const busyRetries = 3

// DBQueue serializes access to a SQLite database through a single worker
type DBQueue struct {
	db         *sql.DB
	queryQueue chan *dbRequest
	done       chan struct{}
	closeOnce  sync.Once
}

// dbRequest represents a database operation request
type dbRequest struct {
	ctx      context.Context
	query    func(context.Context, *sql.DB) error
	response chan error
}

// NewDBQueue creates a new DBQueue and starts its worker
func NewDBQueue(db *sql.DB) *DBQueue {
	q := &DBQueue{
		db:         db,
		queryQueue: make(chan *dbRequest, 100),
		done:       make(chan struct{}),
	}
	go q.processQueue()
	return q
}

// processQueue runs requests one at a time until Close
func (q *DBQueue) processQueue() {
	for {
		select {
		case req := <-q.queryQueue:
			req.response <- q.executeWithRetry(req.ctx, req.query)
		case <-q.done:
			return
		}
	}
}

// executeWithRetry retries SQLITE_BUSY failures with a linear backoff
func (q *DBQueue) executeWithRetry(ctx context.Context, query func(context.Context, *sql.DB) error) error {
	for i := 0; i < busyRetries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := query(ctx, q.db)
		if err == nil || !isBusyError(err) {
			return err
		}

		select {
		case <-time.After(time.Millisecond * time.Duration(100*(i+1))):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return errors.New("max retries exceeded for SQLITE_BUSY")
}

// isBusyError checks if the error is a SQLITE_BUSY error
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "SQLITE_BUSY")
}

// Execute runs query on the worker and waits for its result
func (q *DBQueue) Execute(ctx context.Context, query func(context.Context, *sql.DB) error) error {
	req := &dbRequest{
		ctx:      ctx,
		query:    query,
		response: make(chan error, 1),
	}

	select {
	case q.queryQueue <- req:
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.response:
		return err
	case <-q.done:
		return ErrQueueClosed
	}
}

// Close stops the worker. It is safe to call more than once.
func (q *DBQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}
