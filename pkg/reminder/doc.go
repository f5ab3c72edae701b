// Package reminder dispatches interview reminders.
// A fixed-cadence ticker scans the schedule for records entering their
// notification window and notifies each interviewee at most once.
package reminder
