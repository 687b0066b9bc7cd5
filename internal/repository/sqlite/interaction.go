package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/course-platform/internal/model"
	"github.com/sakif/course-platform/internal/repository"
)

// compile-time check that *DB implements repository.InteractionRepository
var _ repository.InteractionRepository = (*DB)(nil)

// CreateInteraction inserts a new interaction row, filling in the generated
// id and creation timestamp on the passed struct.
func (db *DB) CreateInteraction(ctx context.Context, interaction *model.UserInteraction) error {
	interaction.ID = xid.New().String()
	interaction.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_interactions (id, user_id, course_id, interaction_type, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		interaction.ID,
		interaction.UserID,
		interaction.CourseID,
		interaction.Type,
		interaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating interaction: %w", err)
	}

	return nil
}

// GetInteractionsByUserID lists a user's interactions in creation order.
func (db *DB) GetInteractionsByUserID(ctx context.Context, userID string) ([]model.UserInteraction, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, course_id, interaction_type, created_at
		 FROM user_interactions
		 WHERE user_id = ?
		 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing interactions for %s: %w", userID, err)
	}
	defer rows.Close()

	interactions := make([]model.UserInteraction, 0)

	for rows.Next() {
		var in model.UserInteraction
		if err := rows.Scan(
			&in.ID, &in.UserID, &in.CourseID, &in.Type, &in.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning interaction row: %w", err)
		}
		interactions = append(interactions, in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating interactions: %w", err)
	}

	return interactions, nil
}

// DeleteInteraction removes an interaction by id. The bool reports whether a
// row actually existed; deletion of an unknown id is not an error, the API
// treats the operation as idempotent.
func (db *DB) DeleteInteraction(ctx context.Context, id string) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM user_interactions WHERE id = ?`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting interaction %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
