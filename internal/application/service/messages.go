package service

import (
	"fmt"
	"strings"

	"github.com/akhil1198/ER/internal/domain/expense"
	"github.com/akhil1198/ER/internal/domain/report"
)

const (
	msgWelcome = "👋 **Welcome to the Expense Assistant!**\n\n" +
		"• **📷 Upload receipts** and I'll extract the expense details\n" +
		"• **📋 Manage reports**: type 'show reports' to view your expense reports\n" +
		"• **💬 Get help**: type 'help' to see all available commands"

	msgHelp = "🤖 **Here's what I can help you with:**\n\n" +
		"📷 **Upload Receipt**: attach a receipt image or PDF\n" +
		"📋 **View Reports**: type 'show my reports'\n" +
		"➕ **Create Report**: upload a receipt, then choose **1**\n" +
		"🔗 **Add to Existing**: upload a receipt, then choose **2**"

	msgChoosePrompt = "What would you like to do?\n\n" +
		"**1** - Create a new expense report\n" +
		"**2** - Add to an existing report"

	msgChooseOneOrTwo = "Please choose **1** for a new report or **2** for an existing report."

	msgAskReportDetails = "Great! Let's create a new expense report.\n\n" +
		"Please provide:\n```\nReport Name: July 2024 Office Supplies\nBusiness Purpose: Monthly office supplies purchase\n```\n" +
		"Or tell me in your own words, e.g. call it \"Boston Trip\" for \"client kickoff\"."

	msgReportDetailsUnclear = "I couldn't understand the report details. Please provide:\n```\nReport Name: July Office Supplies\nBusiness Purpose: Monthly office supplies\n```"

	msgComplianceRequired = "Please confirm the policy certifications, e.g.\n```\nGift Policy Compliance: ✓\nIRS Tax Policy Compliance: ✓\n```\nor type **\"I agree to both policies\"**."

	msgNoReportsForChoice = "❌ No existing reports found. Would you like to create a new report instead?\n\nType **1** to create a new report."

	msgNoReports = "📋 **No Reports Found**\n\nYou don't have any expense reports yet. Upload a receipt to create one."

	msgSessionExpired = "❌ Session expired. Please start over by uploading your receipt again."

	msgGenericFailure = "❌ Something went wrong while handling your message. Your session has been reset; please upload your receipt again."

	msgExtractionWarning = "⚠️ I couldn't read this receipt automatically, so I've filled in placeholder values. Please review them before submitting."
)

func complianceQuestion(d report.Draft) string {
	return fmt.Sprintf("Perfect! I have your report details:\n\n"+
		"📊 **Report Information:**\n• **Name**: %s\n• **Purpose**: %s\n\n"+
		"🏛️ **Tax & Policy Compliance Required**\n\n"+
		"☐ **Gift Policy Compliance Certification**: this expense complies with company gift policy guidelines\n"+
		"☐ **IRS T&E Tax Policy Certification**: this expense complies with IRS Travel & Entertainment tax policies\n\n%s",
		d.Name, d.BusinessPurpose, msgComplianceRequired)
}

func selectionRange(n int) string {
	return fmt.Sprintf("❌ Please enter a number between 1 and %d to select a report.", n)
}

func reportChoiceList(reports []report.Summary) string {
	var b strings.Builder
	b.WriteString("📋 **Here are your existing expense reports:**\n\n")
	for i, r := range reports {
		writeReportLine(&b, i+1, r)
		b.WriteString("\n")
	}
	b.WriteString("Please type the **number** of the report you'd like to add the expense to.")
	return b.String()
}

func reportSummaryList(reports []report.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 **Your Expense Reports** (%d found)\n\n", len(reports))
	for i, r := range reports {
		writeReportLine(&b, i+1, r)
		created := "Unknown"
		if r.CreatedAt != nil {
			created = r.CreatedAt.Format("01/02/2006")
		}
		fmt.Fprintf(&b, "   • Created: %s\n   • ID: %s\n\n", created, r.ID)
	}
	b.WriteString("💡 Upload a receipt and I'll help you add it to one of these reports!")
	return b.String()
}

func writeReportLine(b *strings.Builder, n int, r report.Summary) {
	purpose := r.Purpose
	if purpose == "" {
		purpose = "Not specified"
	}
	fmt.Fprintf(b, "**%d.** %s **%s**\n", n, report.StatusIcon(r.Status), r.Name)
	fmt.Fprintf(b, "   • Purpose: %s\n", purpose)
	fmt.Fprintf(b, "   • Total: %s %s\n", r.Total.StringFixed(2), r.Currency)
	fmt.Fprintf(b, "   • Status: %s\n", r.Status)
}

func expenseSummary(rec *expense.Record, result *expense.MappingResult) string {
	var b strings.Builder
	b.WriteString("🧾 **Expense details:**\n\n")
	if result.TypeInfo != nil {
		fmt.Fprintf(&b, "• **Type**: %s (%s)\n", result.TypeInfo.Name, result.Payload.ExpenseTypeCode)
	}
	fmt.Fprintf(&b, "• **Vendor**: %s\n", orDash(result.Payload.VendorDescription))
	fmt.Fprintf(&b, "• **Date**: %s\n", result.Payload.TransactionDate)
	fmt.Fprintf(&b, "• **Amount**: %s %s\n", result.Payload.TransactionAmount.StringFixed(2), result.Payload.TransactionCurrencyCode)
	if rec != nil && rec.PaymentType != "" {
		fmt.Fprintf(&b, "• **Payment**: %s\n", rec.PaymentType)
	}
	if !result.Valid() {
		b.WriteString("\n⚠️ **Needs attention:**\n")
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "• %s\n", e.Message)
		}
	}
	b.WriteString("\n")
	b.WriteString(msgChoosePrompt)
	return b.String()
}

func reportCreatedMessage(d report.Draft, reportID string, entry entryOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ **Expense report created!**\n\n• **Name**: %s\n• **Purpose**: %s\n• **Report ID**: %s\n\n",
		d.Name, d.BusinessPurpose, reportID)
	b.WriteString(entry.message())
	return b.String()
}

func entryAddedMessage(r report.Summary, entry entryOutcome) string {
	return fmt.Sprintf("📎 **Report: %s**\n\n%s", r.Name, entry.message())
}

// entryOutcome is the result of attaching the pending expense to a report
type entryOutcome struct {
	attempted bool
	entryID   string
	errors    expense.ValidationResult
	err       error
}

func (o entryOutcome) ok() bool {
	return o.attempted && o.err == nil && o.errors.OK()
}

func (o entryOutcome) message() string {
	switch {
	case !o.attempted && o.errors.OK():
		return "No expense was pending, so the report is empty for now."
	case !o.errors.OK():
		return "⚠️ The expense was not added because some fields need attention: " + o.errors.String()
	case o.err != nil:
		return fmt.Sprintf("⚠️ The expense entry could not be created: %v", o.err)
	default:
		return fmt.Sprintf("🧾 Expense entry added (ID: %s).", o.entryID)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
