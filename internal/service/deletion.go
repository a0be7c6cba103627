package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/account-dashboard/internal/model"
	"github.com/iliyamo/account-dashboard/internal/queue"
	"github.com/iliyamo/account-dashboard/internal/repository"
	"github.com/iliyamo/account-dashboard/internal/storage"
)

// PurgeResult reports what a purge managed to remove.
type PurgeResult struct {
	BlobsDeleted    int
	ActivityDeleted int64
}

// RequestDeletion either records a pending deletion request (deferred mode)
// or purges the account immediately. The deferred request is picked up
// later by ProcessPendingDeletions.
func (s *AccountService) RequestDeletion(ctx context.Context, userID string, immediate bool) error {
	p, err := s.Profiles.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if immediate {
		s.Purge(ctx, userID, p.Email, true)
		return nil
	}

	if err := s.Deletions.Create(ctx, userID, p.Email); err != nil {
		if err == repository.ErrConflict {
			return nil // a request is already on file; nothing to do
		}
		return err
	}
	s.logActivity(ctx, userID, model.ActivityDeletionRequest, "account deletion requested", model.ActivityPending, nil)
	return nil
}

// Purge removes everything the system holds for a user. Each step is
// independently best-effort: a failure is logged and the purge moves on, so
// one broken store never blocks removal from the others. Dependent data
// (blobs, activity, request row) goes before the primary records (profile,
// credential) so a crash mid-purge leaves at most stale derived data, never
// a dangling profile referencing a deleted credential.
func (s *AccountService) Purge(ctx context.Context, userID, email string, immediate bool) PurgeResult {
	var res PurgeResult

	n, err := s.Blobs.DeletePrefix(ctx, storage.UserPrefix(userID))
	res.BlobsDeleted = n
	if err != nil {
		log.Printf("purge: blob delete for %s failed after %d objects: %v", userID, n, err)
	}

	deleted, err := s.Activity.DeleteAllForUser(ctx, userID, 500)
	res.ActivityDeleted = deleted
	if err != nil {
		log.Printf("purge: activity delete for %s failed after %d rows: %v", userID, deleted, err)
	}

	if err := s.Codes.DeleteAllForUser(ctx, userID); err != nil {
		log.Printf("purge: action code delete for %s failed: %v", userID, err)
	}
	if err := s.Tokens.DeleteAllForUser(ctx, userID); err != nil {
		log.Printf("purge: refresh token delete for %s failed: %v", userID, err)
	}
	if err := s.Deletions.Delete(ctx, userID); err != nil {
		log.Printf("purge: deletion request delete for %s failed: %v", userID, err)
	}
	if err := s.Profiles.Delete(ctx, userID); err != nil {
		log.Printf("purge: profile delete for %s failed: %v", userID, err)
	}
	if err := s.Credentials.Delete(ctx, userID); err != nil {
		log.Printf("purge: credential delete for %s failed: %v", userID, err)
	}
	// The request row was normally removed above; marking it completed only
	// matters when the delete failed and the row survived.
	if err := s.Deletions.MarkCompleted(ctx, userID); err != nil && err != repository.ErrNotFound {
		log.Printf("purge: marking request completed for %s failed: %v", userID, err)
	}

	if err := PublishAccountPurged(ctx, queue.AccountPurgedEvent{
		UserID:          userID,
		Email:           email,
		BlobsDeleted:    res.BlobsDeleted,
		ActivityDeleted: res.ActivityDeleted,
		Immediate:       immediate,
		PurgedAt:        time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("purge: publishing event for %s failed: %v", userID, err)
	}

	return res
}

// ProcessPendingDeletions runs the purge for every pending deletion
// request. The role check happens before any store is touched; only admins
// may trigger it. One record's failure does not halt the loop. Completed
// purges are recorded on the calling admin's audit trail, since the purged
// user's own log is gone by then.
func (s *AccountService) ProcessPendingDeletions(ctx context.Context, callerID, callerRole string) (processed, failed int, err error) {
	if callerRole != model.RoleAdmin {
		return 0, 0, repository.ErrForbidden
	}

	pending, err := s.Deletions.ListPending(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, req := range pending {
		res := s.Purge(ctx, req.UserID, req.Email, false)
		// A purge that could not remove the primary records counts as a
		// failure for the summary, but the loop continues regardless.
		if _, err := s.Profiles.GetByID(ctx, req.UserID); err != repository.ErrNotFound {
			failed++
			continue
		}
		processed++
		s.logActivity(ctx, callerID, model.ActivityDeletionCompleted, "account purge completed", model.ActivitySuccess,
			map[string]string{"user_id": req.UserID})
		log.Printf("pending-deletions: purged %s (blobs=%d activity=%d)", req.UserID, res.BlobsDeleted, res.ActivityDeleted)
	}
	return processed, failed, nil
}
