package room_service

import (
	"context"

	"github.com/tcp_snm/arena/internal/events"
	"github.com/tcp_snm/arena/internal/models"
	"github.com/tcp_snm/arena/internal/service/scoring_service"
)

// OnSubmissionEvaluated runs after a submission is stored. When a Solved
// submission completes the user's problem set it marks the user completed,
// announces it once and ends the battle if everybody is done. Runs inside
// the room's critical section.
func (r *RoomService) OnSubmissionEvaluated(ctx context.Context, sub models.Submission) error {
	if sub.Status != models.StatusSolved {
		return nil
	}

	room, release, err := r.lockRoom(ctx, sub.RoomID)
	if err != nil {
		if errorsIsNotFound(err) {
			return nil
		}
		return err
	}
	defer release()

	if room.Status != models.RoomActive {
		r.logger.Infof("submission %v evaluated after room %v left active state", sub.ID, room.ID)
		return nil
	}
	if room.HasCompleted(sub.UserID) {
		// a previous call may have failed between marking and ending
		if room.AllCompleted() {
			_, err = r.endAndRelease(ctx, room, release)
			return err
		}
		return nil
	}

	solved, err := r.Submissions.CountSolvedProblems(ctx, room.ID, sub.UserID)
	if err != nil {
		return err
	}
	if solved < len(room.Problems) {
		return nil
	}

	// every read happens before the guarded write so a failure leaves no trace
	scoreboard, err := r.computeScoreboard(ctx, room)
	if err != nil {
		return err
	}
	room, err = r.Rooms.AddCompletedParticipant(ctx, room.ID, sub.UserID)
	if err != nil {
		return err
	}

	entry, _ := scoring_service.EntryFor(scoreboard, sub.UserID)
	r.logger.Infof("user %v completed every problem of room %v", sub.UserID, room.ID)
	r.Publisher.Publish(events.RoomTopic(room.ID), events.EventUserCompletedBattle, events.UserCompletedBattle{
		UserID:         sub.UserID,
		UserName:       entry.UserName,
		SolvedCount:    entry.SolvedProblems,
		CompletionTime: entry.TimeTaken,
		Score:          entry.Score,
	})

	if room.AllCompleted() {
		_, err = r.endAndRelease(ctx, room, release)
		return err
	}

	r.Publisher.Publish(events.RoomTopic(room.ID), events.EventScoreboardUpdate, events.ScoreboardUpdate{
		RoomID:     room.ID,
		Scoreboard: scoreboard,
	})
	return nil
}
