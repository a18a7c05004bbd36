// Package notify delivers queue and session notices via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and degrades to a no-op when unconfigured. Delivery is strictly
// best effort: the admission queue and session manager log failures and move
// on, because a dead notification channel must never stall the queue.
package notify
