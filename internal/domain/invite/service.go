package invite

import "context"

// InviteService defines the invite lifecycle operations
type InviteService interface {
	// CreateInvite records a pending invite from a teacher to a student
	CreateInvite(ctx context.Context, req CreateInviteRequest) (Invite, error)

	// RespondToInvite accepts or rejects an invite. Accepting auto-rejects same-slot siblings.
	RespondToInvite(ctx context.Context, req RespondRequest) (Invite, error)

	// ListInvites lists every invite, optionally restricted to one status
	ListInvites(ctx context.Context, status string) ([]InviteWithDetails, error)

	// ListInvitesForStudent lists one student's invites in all statuses unless status narrows it
	ListInvitesForStudent(ctx context.Context, studentID int64, status string) ([]InviteWithDetails, error)
}
