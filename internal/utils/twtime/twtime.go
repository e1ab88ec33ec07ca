package twtime

import "time"

// Layout is the timestamp format used in logs and reports
const Layout = "2006-01-02 15:04:05"

// Location is Taiwan standard time (UTC+8, no daylight saving)
var Location = time.FixedZone("CST", 8*60*60)

// Format renders t in Taiwan time
func Format(t time.Time) string {
	return t.In(Location).Format(Layout)
}
