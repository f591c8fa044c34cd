// Package notify publishes digest and new-release notifications through an
// ntfy topic. When no topic is configured a noop service is returned, so
// callers never branch on notification availability.
package notify
