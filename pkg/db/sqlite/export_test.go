package sqlite

import "context"

// DeleteUser deletes a user record directly, for test fixtures.
func DeleteUser(ctx context.Context, s *Store, userId int64) error {
	_, err := s.sqlDB.ExecContext(ctx, `DELETE FROM "user" WHERE user_id = ?`, userId)
	return err
}
