package compose

import "html/template"

import "renewradar/internal/types"

const (
	dateLayoutLong  = "Monday, January 2, 2006"
	dateLayoutShort = "Jan 2, 2006"
)

// obligationTemplate holds the per-type wording. label must read naturally
// after "your" ("your city sticker"); action is a short imperative sentence;
// spokenAction is the voice-call variant without URLs or abbreviations.
type obligationTemplate struct {
	label        string
	action       string
	spokenAction string
}

var obligationTemplates = map[types.ObligationType]obligationTemplate{
	types.ObligationCitySticker: {
		label:        "city sticker",
		action:       "Renew online or at any city clerk office before the deadline.",
		spokenAction: "You can renew online, or at any city clerk office, before the deadline.",
	},
	types.ObligationLicensePlate: {
		label:        "license plate registration",
		action:       "Renew with the Secretary of State to keep your registration current.",
		spokenAction: "Please renew with the Secretary of State to keep your registration current.",
	},
	types.ObligationEmissions: {
		label:        "emissions test",
		action:       "Schedule a test at an approved testing station.",
		spokenAction: "Please schedule a test at an approved testing station.",
	},
	types.ObligationStreetCleaning: {
		label:        "street cleaning day",
		action:       "Move your vehicle before cleaning begins to avoid a ticket.",
		spokenAction: "Please move your vehicle before cleaning begins, to avoid a ticket.",
	},
	types.ObligationPermit: {
		label:        "residential permit",
		action:       "Renew your permit to keep it valid.",
		spokenAction: "Please renew your permit to keep it valid.",
	},
}

// fallbackTemplate covers types added to the enum before wording lands here.
// Composition must never fail just because copy is missing.
var fallbackTemplate = obligationTemplate{
	label:        "renewal",
	action:       "Renew before the deadline to stay compliant.",
	spokenAction: "Please renew before the deadline to stay compliant.",
}

func templateFor(ot types.ObligationType) obligationTemplate {
	if t, ok := obligationTemplates[ot]; ok {
		return t
	}
	return fallbackTemplate
}

// voice holds the per-tier tone applied on top of the per-type wording.
type voice struct {
	subjectPrefix string
	headline      string
}

var tierVoices = map[types.UrgencyTier]voice{
	types.TierReminder: {
		subjectPrefix: "Upcoming: ",
		headline:      "A renewal is coming up",
	},
	types.TierImportant: {
		subjectPrefix: "Reminder: ",
		headline:      "Your renewal deadline is approaching",
	},
	types.TierUrgent: {
		subjectPrefix: "Action needed: ",
		headline:      "Your renewal deadline is only days away",
	},
	types.TierCritical: {
		subjectPrefix: "URGENT: ",
		headline:      "Act now to avoid late fees",
	},
}

func tierVoice(tier types.UrgencyTier) voice {
	if v, ok := tierVoices[tier]; ok {
		return v
	}
	return tierVoices[types.TierReminder]
}

type emailData struct {
	Headline string
	Label    string
	DueDate  string
	Action   string
	Link     string
	Critical bool
}

// emailLayout is the single HTML shell for all reminder emails. Inline styles
// only; email clients strip <style> blocks.
var emailLayout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4f4f7;font-family:Helvetica,Arial,sans-serif;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0">
    <tr><td align="center" style="padding:24px;">
      <table role="presentation" width="560" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;">
        <tr><td style="padding:32px 40px 8px 40px;">
          <h1 style="margin:0;font-size:20px;color:{{if .Critical}}#b91c1c{{else}}#1f2937{{end}};">{{.Headline}}</h1>
        </td></tr>
        <tr><td style="padding:8px 40px;">
          <p style="margin:0;font-size:15px;line-height:1.6;color:#374151;">
            Your <strong>{{.Label}}</strong> is due on <strong>{{.DueDate}}</strong>.
          </p>
          <p style="margin:12px 0 0 0;font-size:15px;line-height:1.6;color:#374151;">{{.Action}}</p>
        </td></tr>
        <tr><td style="padding:24px 40px 32px 40px;">
          <a href="{{.Link}}" style="display:inline-block;padding:12px 24px;background-color:{{if .Critical}}#b91c1c{{else}}#2563eb{{end}};color:#ffffff;border-radius:6px;text-decoration:none;font-size:15px;">Manage renewals</a>
        </td></tr>
      </table>
      <p style="margin:16px 0 0 0;font-size:12px;color:#9ca3af;">Sent by RenewRadar. Manage notification settings from your dashboard.</p>
    </td></tr>
  </table>
</body>
</html>
`))
