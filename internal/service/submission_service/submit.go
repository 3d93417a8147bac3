package submission_service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/events"
	"github.com/tcp_snm/arena/internal/models"
	"github.com/tcp_snm/arena/internal/service"
	"github.com/tcp_snm/arena/internal/service/judge_service"
)

// Submit evaluates code for a problem of a running battle and records the
// outcome. Validation and state errors are returned before anything is
// stored. Judge failures are stored as a submission with status Error.
func (s *SubmissionService) Submit(
	ctx context.Context,
	roomID uuid.UUID,
	req SubmissionRequest,
) (SubmissionResponse, error) {
	// get user from claims
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return SubmissionResponse{}, err
	}
	submittedAt := time.Now()

	// validate
	if err = service.ValidateInput(req); err != nil {
		return SubmissionResponse{}, err
	}
	if _, err = judge_service.LanguageID(req.Language); err != nil {
		return SubmissionResponse{}, err
	}

	// ask the room if the user can submit
	room, err := s.RoomService.CanSubmit(ctx, roomID, claims.UserId, req.ProblemID)
	if err != nil {
		return SubmissionResponse{}, err
	}
	solved, err := s.Submissions.HasSolved(ctx, room.ID, claims.UserId, req.ProblemID)
	if err != nil {
		return SubmissionResponse{}, err
	}
	if solved {
		s.logger.Warnf("user %s resubmitted solved problem %v in room %v", claims.UserName, req.ProblemID, room.ID)
		return SubmissionResponse{}, arena_errors.ErrAlreadySolved
	}

	problem, err := s.ProblemService.GetProblemByID(ctx, req.ProblemID)
	if err != nil {
		return SubmissionResponse{}, err
	}

	// a client hanging up must not abort a running evaluation
	detached := context.WithoutCancel(ctx)
	evalCtx, cancel := context.WithTimeout(detached, s.EvaluationTimeout)
	defer cancel()
	eval, err := s.Evaluator.Evaluate(evalCtx, req.Code, req.Language, problem.TestCases)
	if err != nil {
		return SubmissionResponse{}, err
	}

	// persist before anyone hears about it
	persistCtx, cancelPersist := context.WithTimeout(detached, persistTimeout)
	defer cancelPersist()
	sub, err := s.Submissions.InsertSubmission(persistCtx, models.Submission{
		ID:            uuid.New(),
		RoomID:        room.ID,
		UserID:        claims.UserId,
		ProblemID:     problem.ID,
		Code:          req.Code,
		Language:      req.Language,
		Status:        eval.Status,
		Results:       eval.Details,
		ExecutionTime: eval.ExecutionTime,
		SubmittedAt:   submittedAt,
	})
	if err != nil {
		return SubmissionResponse{}, err
	}
	s.logger.Infof(
		"submission %v of user %s for problem %v in room %v is %s",
		sub.ID,
		claims.UserName,
		problem.ID,
		room.ID,
		sub.Status,
	)

	s.Publisher.Publish(events.RoomTopic(room.ID), events.EventSubmissionUpdate, events.SubmissionUpdate{
		UserID:        sub.UserID,
		ProblemID:     sub.ProblemID,
		ProblemTitle:  problem.Title,
		SubmissionID:  sub.ID,
		Status:        sub.Status,
		Message:       eval.Message,
		Details:       sub.Results,
		ExecutionTime: sub.ExecutionTime,
	})

	// the submission stands even if completion bookkeeping fails
	if err := s.RoomService.OnSubmissionEvaluated(persistCtx, sub); err != nil {
		s.logger.Errorf("completion check of submission %v failed, %v", sub.ID, err)
	}

	return SubmissionResponse{
		SubmissionID:  sub.ID,
		ProblemID:     sub.ProblemID,
		Status:        sub.Status,
		Message:       eval.Message,
		Details:       sub.Results,
		TestCount:     eval.TestCount,
		PassedCount:   eval.PassedCount,
		ExecutionTime: sub.ExecutionTime,
	}, nil
}
