package service_test

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/fixxhq/fixxcore/internal/domain"
)

// resetDatabase truncates all tables and reinserts the shared fixtures:
// one category, one client and two fixxers.
func resetDatabase(r *require.Assertions, pool *pgxpool.Pool) {
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		"TRUNCATE users, fixxer_profiles, categories, tasks, offers, bookings, task_timeline, fixbit_replenishments CASCADE")
	r.NoError(err, "failed to truncate tables")

	_, err = pool.Exec(ctx, `
		INSERT INTO categories (id, category_name, description, display_order)
		VALUES ('00000000-0000-0000-0000-000000000001', 'Plumbing', 'Leaks and pipe repairs', 1)
	`)
	r.NoError(err, "failed to create category")

	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, name, email, username, token, is_active)
		VALUES
			('00000000-0000-0000-0000-000000000011', 'Alice Client', 'alice@example.com', 'alice', 'token-client', true),
			('00000000-0000-0000-0000-000000000012', 'Bob Fixxer', 'bob@example.com', 'bob', 'token-fixxer', true),
			('00000000-0000-0000-0000-000000000013', 'Carol Fixxer', 'carol@example.com', 'carol', 'token-other', true)
	`)
	r.NoError(err, "failed to create users")
}

// createTask inserts a task owned by the fixture client and returns its id.
func createTask(r *require.Assertions, pool *pgxpool.Pool, status domain.TaskStatus, assignedFixxerID *string) string {
	ctx := context.Background()

	var taskID string
	err := pool.QueryRow(ctx, `
		INSERT INTO tasks (client_id, category_id, assigned_fixxer_id, task_title, task_description,
				location_x, location_y, budget, status)
		VALUES ($1, $2, $3, 'Fix my leaking kitchen sink', 'The pipe under the sink has been dripping for a week now.',
				24.1052, 56.9496, 50.00, $4)
		RETURNING id
	`, clientID, categoryID, assignedFixxerID, status).Scan(&taskID)
	r.NoError(err, "failed to create task")

	return taskID
}

// createOffer inserts a pending offer from the given fixxer and returns its id.
func createOffer(r *require.Assertions, pool *pgxpool.Pool, taskID, offerFixxerID, price string) string {
	ctx := context.Background()

	var offerID string
	err := pool.QueryRow(ctx, `
		INSERT INTO offers (task_id, fixxer_id, price, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id
	`, taskID, offerFixxerID, price).Scan(&offerID)
	r.NoError(err, "failed to create offer")

	_, err = pool.Exec(ctx, "UPDATE tasks SET offer_count = offer_count + 1 WHERE id = $1", taskID)
	r.NoError(err, "failed to bump offer count")

	return offerID
}

// createBooking inserts an in_progress booking for the task and returns its id.
func createBooking(r *require.Assertions, pool *pgxpool.Pool, taskID, bookedFixxerID string) string {
	ctx := context.Background()

	var bookingID string
	err := pool.QueryRow(ctx, `
		INSERT INTO bookings (task_id, client_id, fixxer_id, agreed_price, status, started_at)
		VALUES ($1, $2, $3, 50.00, 'in_progress', NOW())
		RETURNING id
	`, taskID, clientID, bookedFixxerID).Scan(&bookingID)
	r.NoError(err, "failed to create booking")

	return bookingID
}

// createProfile inserts a fixxer profile with the given balance and returns its id.
func createProfile(r *require.Assertions, pool *pgxpool.Pool, userID string, fixBits int) string {
	ctx := context.Background()

	var profileID string
	err := pool.QueryRow(ctx, `
		INSERT INTO fixxer_profiles (user_id, fix_bits)
		VALUES ($1, $2)
		RETURNING id
	`, userID, fixBits).Scan(&profileID)
	r.NoError(err, "failed to create fixxer profile")

	return profileID
}
