package logging

import (
	"fmt"

	"github.com/golang/glog"
)

// Glog forwards messages to github.com/golang/glog.
// Debug and Info are verbose levels 2 and 1, enable them with -v.
type Glog struct{}

// Logf implements Logger.
func (Glog) Logf(sev Severity, format string, args ...interface{}) {
	switch sev {
	case Debug:
		if glog.V(2) {
			glog.InfoDepth(1, fmt.Sprintf(format, args...))
		}
	case Info:
		if glog.V(1) {
			glog.InfoDepth(1, fmt.Sprintf(format, args...))
		}
	case Warn:
		glog.WarningDepth(1, fmt.Sprintf(format, args...))
	case Error, Critical:
		glog.ErrorDepth(1, fmt.Sprintf(format, args...))
	default:
		glog.InfoDepth(1, fmt.Sprintf(format, args...))
	}
}
