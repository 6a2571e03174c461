package notifications

import "fmt"

var defaultMetadata = map[Kind]Metadata{
	KindApplicationSubmitted: {Type: TypeApplication, Category: "Applications", Priority: PriorityMedium, Icon: "file-text", Sound: SoundNotification},
	KindApplicationApproved:  {Type: TypeApproval, Category: "Applications", Priority: PriorityHigh, Icon: "check-circle", Sound: SoundSuccess},
	KindApplicationRejected:  {Type: TypeRejection, Category: "Applications", Priority: PriorityHigh, Icon: "x-circle", Sound: SoundError},
	KindInterviewScheduled:   {Type: TypeInterview, Category: "Interviews", Priority: PriorityHigh, Icon: "calendar", Sound: SoundAlert},
	KindInterviewReminder:    {Type: TypeReminder, Category: "Interviews", Priority: PriorityMedium, Icon: "clock", Sound: SoundAlert},
	KindOfferReceived:        {Type: TypeApproval, Category: "Offers", Priority: PriorityHigh, Icon: "briefcase", Sound: SoundSuccess},
	KindCertificateGenerated: {Type: TypeCertificate, Category: "Certificates", Priority: PriorityMedium, Icon: "award", Sound: SoundSuccess},
	KindAISuggestion:         {Type: TypeAISuggestion, Category: "Insights", Priority: PriorityLow, Icon: "sparkles", Sound: SoundNotification},
	KindDeadlineReminder:     {Type: TypeReminder, Category: "Reminders", Priority: PriorityMedium, Icon: "alarm-clock", Sound: SoundAlert},
	KindSeatAlert:            {Type: TypeUpdate, Category: "Placement", Priority: PriorityHigh, Icon: "alert-triangle", Sound: SoundAlert},
	KindStatusUpdate:         {Type: TypeUpdate, Category: "Updates", Priority: PriorityLow, Icon: "info", Sound: SoundNotification},
	KindMentorFeedback:       {Type: TypeUpdate, Category: "Feedback", Priority: PriorityMedium, Icon: "message-square", Sound: SoundNotification},
}

var defaultTemplates = Templates{
	RoleStudent: {
		KindApplicationSubmitted: func(d Data) Content {
			return Content{
				Title:      "Application submitted",
				Message:    fmt.Sprintf("Your application for %s at %s has been submitted.", position(d), company(d)),
				ActionURL:  "/student/applications",
				ActionText: "View applications",
			}
		},
		KindApplicationApproved: func(d Data) Content {
			return Content{
				Title:      "Application approved",
				Message:    fmt.Sprintf("Congratulations! Your application for %s at %s was approved.", position(d), company(d)),
				ActionURL:  applicationURL("/student/applications", d),
				ActionText: "View details",
			}
		},
		KindApplicationRejected: func(d Data) Content {
			msg := fmt.Sprintf("Your application for %s at %s was not selected.", position(d), company(d))
			if reason := d.String("reason"); reason != "" {
				msg += " Reason: " + reason
			}
			return Content{
				Title:      "Application update",
				Message:    msg,
				ActionURL:  applicationURL("/student/applications", d),
				ActionText: "View details",
			}
		},
		KindInterviewScheduled: func(d Data) Content {
			return Content{
				Title:      "Interview scheduled",
				Message:    fmt.Sprintf("Your interview with %s is scheduled for %s.", company(d), when(d)),
				ActionURL:  "/student/interviews",
				ActionText: "View interview",
			}
		},
		KindInterviewReminder: func(d Data) Content {
			return Content{
				Title:      "Interview reminder",
				Message:    fmt.Sprintf("Reminder: your interview with %s is on %s.", company(d), when(d)),
				ActionURL:  "/student/interviews",
				ActionText: "Prepare",
			}
		},
		KindOfferReceived: func(d Data) Content {
			return Content{
				Title:      "Offer received",
				Message:    fmt.Sprintf("You received an offer from %s for %s.", company(d), position(d)),
				ActionURL:  "/student/offers",
				ActionText: "Review offer",
			}
		},
		KindCertificateGenerated: func(d Data) Content {
			return Content{
				Title:      "Certificate ready",
				Message:    fmt.Sprintf("Your internship certificate for %s is ready to download.", company(d)),
				ActionURL:  "/student/certificates",
				ActionText: "View certificate",
			}
		},
		KindAISuggestion: func(d Data) Content {
			return Content{
				Title:      "Suggestion for you",
				Message:    d.StringOr("suggestion", "We found new internships that match your profile."),
				ActionURL:  "/student/recommendations",
				ActionText: "Explore",
			}
		},
		KindDeadlineReminder: func(d Data) Content {
			return Content{
				Title:      "Deadline approaching",
				Message:    fmt.Sprintf("%s is due on %s.", d.StringOr("title", "An application"), d.StringOr("deadline", "soon")),
				ActionURL:  "/student/applications",
				ActionText: "Open",
			}
		},
		KindStatusUpdate: func(d Data) Content {
			return Content{
				Title:     "Status update",
				Message:   fmt.Sprintf("Your application at %s is now %s.", company(d), d.StringOr("status", "updated")),
				ActionURL: applicationURL("/student/applications", d),
			}
		},
		KindMentorFeedback: func(d Data) Content {
			return Content{
				Title:      "New feedback from your mentor",
				Message:    fmt.Sprintf("%s left feedback: %s", d.StringOr("mentorName", "Your mentor"), d.StringOr("feedback", "open to read")),
				ActionURL:  "/student/feedback",
				ActionText: "Read feedback",
			}
		},
	},
	RoleMentor: {
		KindApplicationSubmitted: func(d Data) Content {
			return Content{
				Title:      "New application to review",
				Message:    fmt.Sprintf("%s applied for %s at %s.", student(d), position(d), company(d)),
				ActionURL:  applicationURL("/mentor/applications", d),
				ActionText: "Review",
			}
		},
		KindApplicationApproved: func(d Data) Content {
			return Content{
				Title:     "Mentee application approved",
				Message:   fmt.Sprintf("%s's application at %s was approved.", student(d), company(d)),
				ActionURL: "/mentor/students",
			}
		},
		KindInterviewScheduled: func(d Data) Content {
			return Content{
				Title:      "Mentee interview scheduled",
				Message:    fmt.Sprintf("%s has an interview with %s on %s.", student(d), company(d), when(d)),
				ActionURL:  "/mentor/students",
				ActionText: "View mentee",
			}
		},
		KindCertificateGenerated: func(d Data) Content {
			return Content{
				Title:     "Certificate issued",
				Message:   fmt.Sprintf("A completion certificate was issued to %s.", student(d)),
				ActionURL: "/mentor/students",
			}
		},
		KindDeadlineReminder: func(d Data) Content {
			return Content{
				Title:      "Review deadline",
				Message:    fmt.Sprintf("%s must be reviewed by %s.", d.StringOr("title", "A pending application"), d.StringOr("deadline", "soon")),
				ActionURL:  "/mentor/applications",
				ActionText: "Review now",
			}
		},
		KindAISuggestion: func(d Data) Content {
			return Content{
				Title:     "Mentoring insight",
				Message:   d.StringOr("suggestion", "Some of your mentees may need attention."),
				ActionURL: "/mentor/insights",
			}
		},
	},
	RolePlacement: {
		KindApplicationSubmitted: func(d Data) Content {
			return Content{
				Title:      "New application",
				Message:    fmt.Sprintf("%s applied for %s at %s.", student(d), position(d), company(d)),
				ActionURL:  applicationURL("/placement/applications", d),
				ActionText: "Open",
			}
		},
		KindOfferReceived: func(d Data) Content {
			return Content{
				Title:      "Offer recorded",
				Message:    fmt.Sprintf("%s received an offer from %s.", student(d), company(d)),
				ActionURL:  "/placement/offers",
				ActionText: "View offers",
			}
		},
		KindSeatAlert: func(d Data) Content {
			return Content{
				Title:      "Seats running low",
				Message:    fmt.Sprintf("Only %s seats left for %s at %s.", d.StringOr("seatsLeft", "a few"), d.StringOr("driveName", position(d)), company(d)),
				ActionURL:  "/placement/drives",
				ActionText: "Manage drive",
			}
		},
		KindCertificateGenerated: func(d Data) Content {
			return Content{
				Title:     "Certificate generated",
				Message:   fmt.Sprintf("Certificate generated for %s (%s).", student(d), company(d)),
				ActionURL: "/placement/certificates",
			}
		},
		KindStatusUpdate: func(d Data) Content {
			return Content{
				Title:     "Application status changed",
				Message:   fmt.Sprintf("%s's application at %s is now %s.", student(d), company(d), d.StringOr("status", "updated")),
				ActionURL: applicationURL("/placement/applications", d),
			}
		},
	},
	RoleAdmin: {
		KindSeatAlert: func(d Data) Content {
			return Content{
				Title:      "Seat capacity alert",
				Message:    fmt.Sprintf("%s at %s has %s seats left.", d.StringOr("driveName", position(d)), company(d), d.StringOr("seatsLeft", "few")),
				ActionURL:  "/admin/drives",
				ActionText: "Review",
			}
		},
		KindCertificateGenerated: func(d Data) Content {
			return Content{
				Title:     "Certificate generated",
				Message:   fmt.Sprintf("Certificate generated for application %s.", d.StringOr("applicationId", "unknown")),
				ActionURL: "/admin/certificates",
			}
		},
	},
}

func company(d Data) string  { return d.StringOr("companyName", "the company") }
func position(d Data) string { return d.StringOr("position", "the internship") }
func student(d Data) string  { return d.StringOr("studentName", "A student") }

func when(d Data) string {
	date := d.StringOr("interviewDate", "the scheduled date")
	if t := d.String("interviewTime"); t != "" {
		return date + " at " + t
	}
	return date
}

func applicationURL(base string, d Data) string {
	if id := d.String("applicationId"); id != "" {
		return base + "/" + id
	}
	return base
}
