package db

import "context"

// ProfileBody is the user editable part of a Profile.
type ProfileBody struct {
	FullName string
	Email    string
	Phone    string
	Comment  string
}

// Profile is a contact record owned by a User.
type Profile struct {
	Id     int64
	UserId int64
	ProfileBody
}

func (p Profile) Equal(o Profile) bool {
	return p.Id == o.Id && p.UserId == o.UserId && p.ProfileBody == o.ProfileBody
}

// ProfileInterface handles profiles.
//
// Every method takes the id of the owner. A profile owned by somebody else
// behaves exactly like a profile which does not exist.
type ProfileInterface interface {
	// Find returns all profiles owned by the user, ordered by id.
	Find(ctx context.Context, userId int64) ([]Profile, error)

	// Add creates a new profile owned by the user.
	Add(ctx context.Context, userId int64, body ProfileBody) (Profile, error)

	// Update overwrites the profile.
	//
	// # Returns
	//
	// - Profile: updated profile
	//
	// - error: ErrMissing when the user has no profile with the id.
	Update(ctx context.Context, userId int64, id int64, body ProfileBody) (Profile, error)

	// Delete removes the profile, or returns ErrMissing
	// when the user has no profile with the id.
	Delete(ctx context.Context, userId int64, id int64) error
}
