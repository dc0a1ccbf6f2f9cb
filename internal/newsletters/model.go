package newsletters

import (
	"strings"
	"time"

	"realestate-backend/internal/store"
)

type Subscriber struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Email     string    `bson:"email" json:"email"`
	IsActive  bool      `bson:"isActive" json:"isActive"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// StatusRequest sets isActive when present and flips it otherwise.
type StatusRequest struct {
	IsActive *bool `json:"isActive"`
}

// ExportRow is the projection handed to mailing tools.
type ExportRow struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Stats struct {
	TotalSubscribers     int64              `json:"totalSubscribers"`
	ActiveSubscribers    int64              `json:"activeSubscribers"`
	InactiveSubscribers  int64              `json:"inactiveSubscribers"`
	SubscribersThisMonth int64              `json:"subscribersThisMonth"`
	SubscriptionTrends   []store.MonthCount `json:"subscriptionTrends"`
}

const (
	csvHeader    = "Email,Subscription Date"
	isoMillis    = "2006-01-02T15:04:05.000Z"
	CSVFilename  = "newsletter_subscribers.csv"
	CSVMediaType = "text/csv"
)

// EncodeCSV renders rows as "email,timestamp" lines under a header, with the
// timestamp in UTC ISO-8601 with milliseconds.
func EncodeCSV(rows []ExportRow) []byte {
	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteByte('\n')
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(row.Email)
		b.WriteByte(',')
		b.WriteString(row.CreatedAt.UTC().Format(isoMillis))
	}
	return []byte(b.String())
}
