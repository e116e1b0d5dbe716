package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Jakarta")
	if err != nil {
		panic(err)
	}
}

// force timezone to be WIB because simaster renders every
// schedule in Jakarta local time, so date math based on
// <time.Time>.Year()/Month()/Day()/Hour()/... must happen there
// no matter where the process runs
func Now() time.Time {
	return time.Now().In(Location)
}
