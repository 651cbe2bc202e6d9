// Package alert defines regression alerts and the sinks that receive them.
package alert
