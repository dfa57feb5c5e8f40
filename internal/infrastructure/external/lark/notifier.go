package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/akhil1198/ER/internal/application/port"
)

// Notifier posts a card to a group chat when a report is created
type Notifier struct {
	sender messageSender
	chatID string
	logger *zap.Logger
}

var _ port.Notifier = (*Notifier)(nil)

// NewNotifier creates a Notifier posting to cfg.ChatID
func NewNotifier(cfg Config, logger *zap.Logger) *Notifier {
	return &Notifier{
		sender: NewSDKClient(cfg, logger),
		chatID: cfg.ChatID,
		logger: logger,
	}
}

func (n *Notifier) NotifyReportCreated(ctx context.Context, notice port.ReportNotice) error {
	card, err := json.Marshal(reportCard(notice))
	if err != nil {
		return fmt.Errorf("failed to marshal card content: %w", err)
	}

	messageID, err := n.sender.Send(ctx, "chat_id", n.chatID, "interactive", string(card))
	if err != nil {
		return err
	}

	n.logger.Info("Report notification sent",
		zap.String("report_id", notice.ReportID),
		zap.String("message_id", messageID))
	return nil
}

func reportCard(notice port.ReportNotice) map[string]interface{} {
	lines := []string{
		fmt.Sprintf("**Report:** %s", notice.ReportName),
		fmt.Sprintf("**ID:** %s", notice.ReportID),
	}
	if notice.Purpose != "" {
		lines = append(lines, fmt.Sprintf("**Purpose:** %s", notice.Purpose))
	}

	template := "blue"
	if notice.EntryCreated {
		template = "green"
		lines = append(lines, fmt.Sprintf("**First expense:** %s, %s %s", notice.Vendor, notice.Amount, notice.Currency))
	} else {
		lines = append(lines, "No expense was attached.")
	}

	return map[string]interface{}{
		"config": map[string]interface{}{"wide_screen_mode": true},
		"header": map[string]interface{}{
			"template": template,
			"title": map[string]interface{}{
				"tag":     "plain_text",
				"content": "Expense report created",
			},
		},
		"elements": []interface{}{
			map[string]interface{}{
				"tag": "div",
				"text": map[string]interface{}{
					"tag":     "lark_md",
					"content": strings.Join(lines, "\n"),
				},
			},
		},
	}
}
