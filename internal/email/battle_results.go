package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/tcp_snm/arena/internal/models"
)

// SendBattleResults mails the final standings to every recipient.
func (e *EmailService) SendBattleResults(
	ctx context.Context,
	roomName string,
	scoreboard []models.ScoreEntry,
	recipients []string,
) error {
	return e.NewMail(ctx, EmailRequest{
		To:       recipients,
		Subject:  fmt.Sprintf("Battle results: %s", roomName),
		Body:     battleResultsBody(roomName, scoreboard),
		BodyType: KeyEmailBodyPlain,
		Purpose:  PurposeBattleResults,
	})
}

func battleResultsBody(roomName string, scoreboard []models.ScoreEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The battle %q has ended. Final standings:\n\n", roomName)
	for i, entry := range scoreboard {
		fmt.Fprintf(
			&b,
			"%d. %s - %d solved, %d points, %ds\n",
			i+1,
			entry.UserName,
			entry.SolvedProblems,
			entry.Score,
			entry.TimeTaken,
		)
	}
	return b.String()
}
