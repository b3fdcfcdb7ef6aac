package mailclient

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/guard-rota/pkg/core/model"
)

// PartialAlert mails the manager when a saved schedule has unfilled slots
type PartialAlert struct {
	client *Client
}

// NewPartialAlert wraps a client as a result hook
func NewPartialAlert(client *Client) *PartialAlert {
	return &PartialAlert{client: client}
}

func (a *PartialAlert) Name() string { return "mail" }

// HandleResult sends the alert for partial schedules. Full schedules and
// managers without an address are skipped.
func (a *PartialAlert) HandleResult(ctx context.Context, manager *model.Manager, doc *model.ResultDocument) error {
	if doc.Status != model.StatusPartial {
		return nil
	}
	if manager == nil || manager.Email == "" {
		a.client.logger.Info("Manager has no email address, skipping partial schedule alert", zap.String("hotel", doc.HotelName))
		return nil
	}

	subject, body := BuildPartialAlert(manager, doc)
	if err := a.client.SendEmail(ctx, manager.Email, subject, body); err != nil {
		return err
	}
	a.client.logger.Info("Sent partial schedule alert", zap.String("hotel", doc.HotelName), zap.Int("unfilled", len(doc.Notes)))
	return nil
}

// BuildPartialAlert renders the subject and body of a partial schedule alert
func BuildPartialAlert(manager *model.Manager, doc *model.ResultDocument) (string, string) {
	subject := fmt.Sprintf("%s: %d unfilled slot(s) for the week of %s", doc.HotelName, len(doc.Notes), doc.RelevantWeekStartDate)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", manager.Name)
	fmt.Fprintf(&b, "The schedule for %s starting %s could not be fully staffed.\n", doc.HotelName, doc.RelevantWeekStartDate)
	b.WriteString("The following slots are unfilled:\n\n")
	for _, note := range doc.Notes {
		weapon := "no weapon"
		if note.Weapon {
			weapon = "weapon"
		}
		fmt.Fprintf(&b, "  - %s, %s (%s)\n", note.Shift, note.Position, weapon)
	}
	fmt.Fprintf(&b, "\nSchedule id: %s\n", doc.ID)

	return subject, b.String()
}
