package workflow

import (
	"strconv"
	"time"

	"github.com/dmitrymomot/internhub/pkg/notifications"
)

// Application identifies an internship application and the parties to it.
type Application struct {
	ID          string
	StudentID   string
	StudentName string
	CompanyName string
	Position    string
}

func (a Application) data() notifications.Data {
	d := notifications.Data{}
	set(d, "applicationId", a.ID)
	set(d, "studentName", a.StudentName)
	set(d, "companyName", a.CompanyName)
	set(d, "position", a.Position)
	return d
}

// Decision is the outcome of an application review.
type Decision struct {
	Approved bool
	Reason   string
}

// Interview is a scheduled interview slot.
type Interview struct {
	At       time.Time
	Location string
}

// Drive is a placement drive whose seats are tracked.
type Drive struct {
	Name        string
	CompanyName string
	SeatsLeft   int
}

func (d Drive) data() notifications.Data {
	out := notifications.Data{"seatsLeft": strconv.Itoa(d.SeatsLeft)}
	set(out, "driveName", d.Name)
	set(out, "companyName", d.CompanyName)
	return out
}

// Recipient is a user addressed by a bulk notification.
type Recipient struct {
	UserID string
	Role   notifications.Role
}

func set(d notifications.Data, key, value string) {
	if value != "" {
		d[key] = value
	}
}
