package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/proctoring-service/internal/models"
	"github.com/SAP-F-2025/proctoring-service/internal/repositories"
)

// isReviewer reports whether the user holds the reviewer or admin role.
func isReviewer(ctx context.Context, repo repositories.Repository, userID string) (bool, error) {
	user, err := repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to resolve user role: %w", err)
	}
	return user.IsReviewer(), nil
}

// requireReviewer guards reviewer-only operations.
func requireReviewer(ctx context.Context, repo repositories.Repository, userID, resource, action string) error {
	ok, err := isReviewer(ctx, repo, userID)
	if err != nil {
		return err
	}
	if !ok {
		return NewPermissionError(userID, 0, resource, action, "reviewer role required")
	}
	return nil
}

// canAccessSession allows the owning candidate and reviewers.
func canAccessSession(ctx context.Context, repo repositories.Repository, session *models.ProctoringSession, userID string) (bool, error) {
	if session.CandidateID == userID {
		return true, nil
	}
	return isReviewer(ctx, repo, userID)
}
