package lark

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akhil1198/ER/internal/application/port"
)

type fakeSender struct {
	receiveIDType string
	receiveID     string
	msgType       string
	content       string
	err           error
}

func (f *fakeSender) Send(ctx context.Context, receiveIDType, receiveID, msgType, content string) (string, error) {
	f.receiveIDType = receiveIDType
	f.receiveID = receiveID
	f.msgType = msgType
	f.content = content
	return "om_1", f.err
}

func TestNotifier_NotifyReportCreated(t *testing.T) {
	sender := &fakeSender{}
	n := &Notifier{sender: sender, chatID: "oc_123", logger: zap.NewNop()}

	err := n.NotifyReportCreated(context.Background(), port.ReportNotice{
		ReportID:     "R1",
		ReportName:   "Q1 Travel",
		Purpose:      "Conference",
		EntryCreated: true,
		Vendor:       "Hertz",
		Amount:       "99.99",
		Currency:     "USD",
	})
	require.NoError(t, err)

	assert.Equal(t, "chat_id", sender.receiveIDType)
	assert.Equal(t, "oc_123", sender.receiveID)
	assert.Equal(t, "interactive", sender.msgType)

	var card map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(sender.content), &card))
	header := card["header"].(map[string]interface{})
	assert.Equal(t, "green", header["template"])
	assert.Contains(t, sender.content, "Hertz, 99.99 USD")
	assert.Contains(t, sender.content, "Q1 Travel")
}

func TestNotifier_WithoutEntry(t *testing.T) {
	sender := &fakeSender{}
	n := &Notifier{sender: sender, chatID: "oc_123", logger: zap.NewNop()}

	require.NoError(t, n.NotifyReportCreated(context.Background(), port.ReportNotice{ReportID: "R2", ReportName: "Empty"}))
	assert.Contains(t, sender.content, "No expense was attached.")
	assert.Contains(t, sender.content, `"template":"blue"`)
}

func TestNotifier_SendError(t *testing.T) {
	sender := &fakeSender{err: errors.New("API error: code=99991663")}
	n := &Notifier{sender: sender, chatID: "oc_123", logger: zap.NewNop()}

	assert.Error(t, n.NotifyReportCreated(context.Background(), port.ReportNotice{ReportID: "R1"}))
}

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.False(t, Config{AppID: "a", AppSecret: "b"}.Enabled())
	assert.True(t, Config{AppID: "a", AppSecret: "b", ChatID: "c"}.Enabled())
}
