package worksession

import "time"

// WorkSession is an in-progress time-clock entry. It lives in session storage
// only while the user is clocked in and is discarded at logout.
type WorkSession struct {
	CompanyID string    `json:"empresaId"`
	StartedAt time.Time `json:"inicio"`
}
