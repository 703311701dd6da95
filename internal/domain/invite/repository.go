package invite

import (
	"context"
	"time"
)

// InviteRepository is the durable invite store. Only the lifecycle service calls it.
// Methods join the transaction carried by ctx when there is one.
type InviteRepository interface {
	// Create inserts a pending invite and returns it with its assigned id.
	// Returns ErrInviteAlreadyExists when the (teacher, student, scheduledAt) triple is taken.
	Create(ctx context.Context, inv Invite) (Invite, error)

	// GetByID returns ErrInviteNotFound when no invite has the id.
	GetByID(ctx context.Context, id int64) (Invite, error)

	// GetByTriple finds the invite for the triple in any status, or ErrInviteNotFound.
	GetByTriple(ctx context.Context, teacherID, studentID int64, scheduledAt time.Time) (Invite, error)

	// FindFutureAccepted finds an accepted invite of the student scheduled strictly after now,
	// other than excludingID, or ErrInviteNotFound.
	FindFutureAccepted(ctx context.Context, studentID, excludingID int64, now time.Time) (Invite, error)

	// UpdateStatus sets the status and returns the updated invite.
	UpdateStatus(ctx context.Context, id int64, status Status, updatedAt time.Time) (Invite, error)

	// RejectSiblings rejects every other invite of the student for the same slot and returns their ids.
	RejectSiblings(ctx context.Context, studentID int64, scheduledAt time.Time, excludingID int64, updatedAt time.Time) ([]int64, error)

	// List returns invites matching filter, newest first (created_at DESC, id DESC).
	List(ctx context.Context, filter ListFilter) ([]Invite, error)

	// LockStudent serializes mutations of one student's invites until the transaction in ctx ends.
	LockStudent(ctx context.Context, studentID int64) error
}

// Transactor runs fn as one atomic unit. Repository calls made with the ctx passed to fn
// commit together or not at all.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
