package app

import "time"

// ToastMsg shows a temporary status message.
type ToastMsg struct {
	Message  string
	Duration time.Duration
	IsError  bool
}

// FileChangedMsg is sent when the watched file settles after a change.
type FileChangedMsg struct{}

// toastExpiredMsg clears the toast if it has expired.
type toastExpiredMsg struct{}
