package util

import "time"

// shanghai is the exchange time zone for A-share markets. A fixed UTC+8
// offset is used when tzdata is unavailable; China has no daylight saving.
var shanghai = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Shanghai"); err == nil {
		return loc
	}
	return time.FixedZone("CST", 8*3600)
}()

// session is one continuous trading window, in minutes after midnight.
type session struct{ open, close int }

// A-share continuous trading: 09:30-11:30 and 13:00-15:00 CST.
var aShareSessions = []session{
	{9*60 + 30, 11*60 + 30},
	{13 * 60, 15 * 60},
}

// TradingCalendar provides market-hours awareness for the A-share market.
// Exchange holidays are not modelled; a holiday weekday reports open.
type TradingCalendar struct {
	loc      *time.Location
	sessions []session
}

// NewTradingCalendar creates a TradingCalendar for the A-share market.
func NewTradingCalendar() *TradingCalendar {
	return &TradingCalendar{loc: shanghai, sessions: aShareSessions}
}

// IsMarketOpen returns whether the market is open at time t.
func (tc *TradingCalendar) IsMarketOpen(t time.Time) bool {
	local := t.In(tc.loc)
	if !isWeekday(local) {
		return false
	}
	m := local.Hour()*60 + local.Minute()
	for _, s := range tc.sessions {
		if m >= s.open && m < s.close {
			return true
		}
	}
	return false
}

// NextOpen returns the next market open time at or after t. If the market is
// open at t, t is returned.
func (tc *TradingCalendar) NextOpen(t time.Time) time.Time {
	if tc.IsMarketOpen(t) {
		return t
	}
	local := t.In(tc.loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tc.loc)
	for i := 0; i < 8; i++ {
		d := day.AddDate(0, 0, i)
		if !isWeekday(d) {
			continue
		}
		for _, s := range tc.sessions {
			open := d.Add(time.Duration(s.open) * time.Minute)
			if !open.Before(local) {
				return open
			}
		}
	}
	return time.Time{}
}

// NextClose returns the end of the session open at t, or of the next session
// when the market is closed at t.
func (tc *TradingCalendar) NextClose(t time.Time) time.Time {
	open := tc.NextOpen(t).In(tc.loc)
	if open.IsZero() {
		return open
	}
	day := time.Date(open.Year(), open.Month(), open.Day(), 0, 0, 0, 0, tc.loc)
	m := open.Hour()*60 + open.Minute()
	for _, s := range tc.sessions {
		if m >= s.open && m < s.close {
			return day.Add(time.Duration(s.close) * time.Minute)
		}
	}
	return time.Time{}
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
