package store

import (
	"context"
)

// IsEventRecorded checks whether an order event has already been recorded
func (s *Store) IsEventRecorded(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM order_audit WHERE event_id = $1)", eventID)
	return exists, err
}

// RecordEvent stores an order event in the audit log
func (s *Store) RecordEvent(ctx context.Context, eventID, eventType string, orderID int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO order_audit (event_id, event_type, order_id) VALUES ($1, $2, $3) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType, orderID)
	return err
}
